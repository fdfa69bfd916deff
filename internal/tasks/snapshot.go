package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeSnapshotExport = "snapshot:export"
)

// SnapshotExportPayload 描述一次快照导出请求。
type SnapshotExportPayload struct {
	SnapshotID    string    `json:"snapshot_id"`
	CorrelationID string    `json:"correlation_id"`
	RequestedAt   time.Time `json:"requested_at"`
}

// NewSnapshotExportTask 构造一个新的快照导出任务。
func NewSnapshotExportTask(snapshotID, correlationID string, requestedAt time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(SnapshotExportPayload{
		SnapshotID:    snapshotID,
		CorrelationID: correlationID,
		RequestedAt:   requestedAt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSnapshotExport, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}
