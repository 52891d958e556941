package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeSpecialMenuBroadcast = "special_menu:broadcast"
	TaskTypeBackupCreate         = "backup:create"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Queues is the weighted queue set served by the worker.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

type SpecialMenuBroadcastPayload struct {
	MenuID  int64 `json:"menu_id"`
	AdminID int64 `json:"admin_id"`
}

type BackupPayload struct {
	Dir string `json:"dir"`
}

// NewSpecialMenuBroadcastTask is never retried: a partial run already reached some users.
func NewSpecialMenuBroadcastTask(menuID, adminID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(SpecialMenuBroadcastPayload{MenuID: menuID, AdminID: adminID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeSpecialMenuBroadcast, payload, asynq.Queue(QueueCritical), asynq.MaxRetry(0)), nil
}

func NewBackupTask(dir string) (*asynq.Task, error) {
	payload, err := json.Marshal(BackupPayload{Dir: dir})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeBackupCreate, payload, asynq.Queue(QueueLow)), nil
}
