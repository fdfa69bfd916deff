package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SnapshotChannel 是快照通知使用的 Redis Pub/Sub 频道，/admin/ws 订阅同一频道。
const SnapshotChannel = "snapshot_notify"

// 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给运维端）。
type SnapshotNotifyMessage struct {
	Status        string           `json:"status"`
	SnapshotID    string           `json:"snapshot_id"`
	CorrelationID string           `json:"correlation_id"`
	ObjectKey     string           `json:"object_key,omitempty"`
	DownloadURL   string           `json:"download_url,omitempty"`
	Counts        map[string]int64 `json:"counts,omitempty"`
	ErrorCode     string           `json:"error_code,omitempty"`
	ErrorMessage  string           `json:"error_message,omitempty"`
}

// Notifier 发布快照任务的结果。
type Notifier interface {
	Notify(ctx context.Context, msg SnapshotNotifyMessage) error
}

// RedisNotifier publishes notifications on SnapshotChannel.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(ctx context.Context, msg SnapshotNotifyMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := n.client.Publish(ctx, SnapshotChannel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", SnapshotChannel, err)
	}
	return nil
}
