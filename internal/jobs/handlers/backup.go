package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/lovemenu-bot/internal/backup"
	"github.com/Proton-105/lovemenu-bot/internal/jobs"
)

// Backuper writes a backup directory under dir.
type Backuper interface {
	Create(ctx context.Context, dir string) (string, *backup.Manifest, error)
}

type BackupHandler struct {
	backups    Backuper
	defaultDir string
	log        *slog.Logger
}

func NewBackupHandler(backups Backuper, defaultDir string, log *slog.Logger) *BackupHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BackupHandler{backups: backups, defaultDir: defaultDir, log: log}
}

func (h *BackupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.BackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}

	dir := payload.Dir
	if dir == "" {
		dir = h.defaultDir
	}

	path, manifest, err := h.backups.Create(ctx, dir)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	h.log.InfoContext(ctx, "backup created",
		slog.String("path", path),
		slog.Int("records", manifest.TotalRecords),
		slog.Int("tables", len(manifest.Collections)),
	)
	return nil
}
