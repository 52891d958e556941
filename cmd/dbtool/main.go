// Command dbtool seeds, backs up and restores the love menu database.
//
//	dbtool seed
//	dbtool backup [--dir backups]
//	dbtool restore <path>
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/lib/pq"
	flag "github.com/spf13/pflag"

	"github.com/Proton-105/lovemenu-bot/internal/backup"
	"github.com/Proton-105/lovemenu-bot/internal/database"
	"github.com/Proton-105/lovemenu-bot/pkg/config"
	"github.com/Proton-105/lovemenu-bot/pkg/logger"
)

var errUsage = errors.New("usage: dbtool seed | backup [--dir DIR] | restore PATH")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dbtool: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, _, err := config.Load()
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.Logger, false)
	if err != nil {
		return err
	}
	defer lg.Close()
	log := lg.Logger.With(slog.String("command", args[0]))

	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	backups := backup.NewService(backup.NewPostgresStore(db), log)

	switch args[0] {
	case "seed":
		if err := database.NewMigrator(db, log).ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		n, err := database.Seed(ctx, db, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d items\n", n)
		return nil

	case "backup":
		fs := flag.NewFlagSet("backup", flag.ContinueOnError)
		dir := fs.String("dir", cfg.Jobs.BackupDir, "directory that receives backup_<timestamp>/")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		path, manifest, err := backups.Create(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "backup written to %s (%d records in %d tables)\n", path, manifest.TotalRecords, len(manifest.Collections))
		return nil

	case "restore":
		if len(args) != 2 {
			return errUsage
		}
		result, err := backups.Restore(ctx, args[1])
		if err != nil {
			return err
		}
		printRestore(out, result)
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d tables failed to restore", len(result.Failed))
		}
		return nil
	}

	return errUsage
}

func printRestore(out io.Writer, result *backup.Result) {
	if m := result.Manifest; m != nil {
		fmt.Fprintf(out, "backup of %q taken %s: %d records\n", m.Database, m.Timestamp.Format("2006-01-02 15:04:05"), m.TotalRecords)
	}

	for _, table := range backup.Tables {
		if n, ok := result.Restored[table.Name]; ok {
			fmt.Fprintf(out, "  %-18s %d restored\n", table.Name, n)
		}
	}
	for _, name := range result.Skipped {
		fmt.Fprintf(out, "  %-18s skipped (no data)\n", name)
	}

	failed := make([]string, 0, len(result.Failed))
	for name := range result.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		fmt.Fprintf(out, "  %-18s FAILED: %v\n", name, result.Failed[name])
	}

	fmt.Fprintf(out, "restored %d records\n", result.Total)
}
