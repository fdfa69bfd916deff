package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"talentflow/internal/errcode"
	"talentflow/internal/persistence"
	"talentflow/internal/storage"
	"talentflow/internal/tasks"
)

const downloadURLTTL = 24 * time.Hour

// SnapshotSource 提供导出的全量数据。
type SnapshotSource interface {
	Export(ctx context.Context) (*persistence.Snapshot, error)
}

// ObjectStore 是快照上传所需的对象存储能力，由 storage.Client 实现。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// SnapshotTaskHandler 负责消费快照导出任务：导出 -> 上传 MinIO -> 发布通知。
type SnapshotTaskHandler struct {
	source   SnapshotSource
	objects  ObjectStore
	notifier Notifier
	logger   *slog.Logger
}

// NewSnapshotTaskHandler 创建任务处理器。
func NewSnapshotTaskHandler(source SnapshotSource, objects ObjectStore, notifier Notifier, logger *slog.Logger) *SnapshotTaskHandler {
	return &SnapshotTaskHandler{
		source:   source,
		objects:  objects,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *SnapshotTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.SnapshotExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		// 载荷损坏时重试没有意义
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("snapshot_id", payload.SnapshotID),
	)
	log.Info("starting snapshot export")

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := SnapshotNotifyMessage{
			Status:        "error",
			SnapshotID:    payload.SnapshotID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.StorageFailure,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.notifier.Notify(ctx, notify); err != nil {
			log.Error("publish snapshot error notification failed", slog.Any("error", err))
		}
	}()

	snap, err := h.source.Export(ctx)
	if err != nil {
		log.Error("export snapshot failed", slog.Any("error", err))
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	requestedAt := payload.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now()
	}
	objectKey := storage.SnapshotKey(requestedAt, payload.SnapshotID)
	if _, err := h.objects.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		log.Error("upload snapshot to minio failed", slog.Any("error", err))
		return err
	}

	downloadURL, err := h.objects.GeneratePresignedURL(ctx, objectKey, downloadURLTTL)
	if err != nil {
		// 链接只是便利信息，不影响快照本身
		log.Warn("generate snapshot download url failed", slog.Any("error", err))
	}

	notify := SnapshotNotifyMessage{
		Status:        "completed",
		SnapshotID:    payload.SnapshotID,
		CorrelationID: payload.CorrelationID,
		ObjectKey:     objectKey,
		DownloadURL:   downloadURL,
		Counts: map[string]int64{
			"jobs":                int64(len(snap.Jobs)),
			"candidates":          int64(len(snap.Candidates)),
			"candidateNotes":      int64(len(snap.CandidateNotes)),
			"candidateTimeline":   int64(len(snap.CandidateTimeline)),
			"assessments":         int64(len(snap.Assessments)),
			"assessmentResponses": int64(len(snap.AssessmentResponses)),
		},
	}
	if err := h.notifier.Notify(ctx, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("snapshot export completed",
		slog.String("object_key", objectKey),
		slog.Int("records", snap.Total()),
		slog.Int("bytes", len(data)),
	)
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
