package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/internal/database"
	"talentflow/internal/persistence"
	"talentflow/internal/tasks"
)

type fakeSource struct {
	snap *persistence.Snapshot
	err  error
}

func (f *fakeSource) Export(context.Context) (*persistence.Snapshot, error) {
	return f.snap, f.err
}

type fakeObjects struct {
	key         string
	contentType string
	body        []byte
	uploadErr   error
}

func (f *fakeObjects) UploadFile(_ context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != size {
		return nil, errors.New("size mismatch")
	}
	f.key, f.contentType, f.body = objectName, contentType, data
	return &minio.UploadInfo{Key: objectName, Size: size}, nil
}

func (f *fakeObjects) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "http://minio.local/" + objectKey, nil
}

type fakeNotifier struct {
	messages []SnapshotNotifyMessage
}

func (f *fakeNotifier) Notify(_ context.Context, msg SnapshotNotifyMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func newTask(t *testing.T) *asynq.Task {
	t.Helper()
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	task, err := tasks.NewSnapshotExportTask("snap-1", "corr-1", at)
	require.NoError(t, err)
	return task
}

func TestSnapshotTaskUploadsAndNotifies(t *testing.T) {
	source := &fakeSource{snap: &persistence.Snapshot{
		Jobs:       []database.Job{{ID: "j1", Title: "Backend"}},
		Candidates: []database.Candidate{{ID: "c1", JobID: "j1"}, {ID: "c2", JobID: "j1"}},
	}}
	objects := &fakeObjects{}
	notifier := &fakeNotifier{}
	h := NewSnapshotTaskHandler(source, objects, notifier, slog.New(slog.DiscardHandler))

	require.NoError(t, h.ProcessTask(context.Background(), newTask(t)))

	assert.Equal(t, "snapshots/20240501T083000Z-snap-1.json", objects.key)
	assert.Equal(t, "application/json", objects.contentType)

	var uploaded persistence.Snapshot
	require.NoError(t, json.Unmarshal(objects.body, &uploaded))
	assert.Len(t, uploaded.Candidates, 2)

	require.Len(t, notifier.messages, 1)
	msg := notifier.messages[0]
	assert.Equal(t, "completed", msg.Status)
	assert.Equal(t, "snap-1", msg.SnapshotID)
	assert.Equal(t, "corr-1", msg.CorrelationID)
	assert.Equal(t, objects.key, msg.ObjectKey)
	assert.Equal(t, "http://minio.local/"+objects.key, msg.DownloadURL)
	assert.Equal(t, int64(1), msg.Counts["jobs"])
	assert.Equal(t, int64(2), msg.Counts["candidates"])
}

func TestSnapshotTaskRejectsBadPayload(t *testing.T) {
	h := NewSnapshotTaskHandler(&fakeSource{}, &fakeObjects{}, &fakeNotifier{}, slog.New(slog.DiscardHandler))

	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeSnapshotExport, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSnapshotTaskFailureWithoutRetryInfoDoesNotNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewSnapshotTaskHandler(
		&fakeSource{snap: &persistence.Snapshot{}},
		&fakeObjects{uploadErr: errors.New("bucket offline")},
		notifier,
		slog.New(slog.DiscardHandler),
	)

	err := h.ProcessTask(context.Background(), newTask(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bucket offline"))
	// 非 asynq 上下文拿不到重试次数，视为非最后一次
	assert.Empty(t, notifier.messages)
}
