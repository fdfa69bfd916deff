package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"talentflow/internal/api/middleware"
	"talentflow/internal/chaos"
	"talentflow/internal/persistence"
	"talentflow/internal/storage"
	"talentflow/internal/tasks"
)

const defaultSnapshotListLimit = 50

// TaskEnqueuer 由 *asynq.Client 实现。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SnapshotLister 由 *storage.Client 实现。
type SnapshotLister interface {
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
}

var (
	adminReadFailure  = chaos.Failure{Message: "Failed to read data"}
	adminWriteFailure = chaos.Failure{Message: "Failed to write data"}
)

// AdminHandler 提供运维接口：统计、导入导出、清空、重置与快照。
// enqueuer 与 lister 为 nil 时快照功能返回 503。
type AdminHandler struct {
	svc      *persistence.Service
	enqueuer TaskEnqueuer
	lister   SnapshotLister
}

func NewAdminHandler(svc *persistence.Service, enqueuer TaskEnqueuer, lister SnapshotLister) *AdminHandler {
	return &AdminHandler{
		svc:      svc,
		enqueuer: enqueuer,
		lister:   lister,
	}
}

// Counts GET /admin/counts
func (h *AdminHandler) Counts(c *gin.Context) {
	counts, err := h.svc.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err, "", adminReadFailure)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Export GET /admin/export
func (h *AdminHandler) Export(c *gin.Context) {
	snap, err := h.svc.Export(c.Request.Context())
	if err != nil {
		respondError(c, err, "", adminReadFailure)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Import POST /admin/import
func (h *AdminHandler) Import(c *gin.Context) {
	var snap persistence.Snapshot
	if !decodeBody(c, &snap) {
		return
	}
	if err := h.svc.Import(c.Request.Context(), &snap); err != nil {
		respondError(c, err, "", adminWriteFailure)
		return
	}
	middleware.LoggerFromContext(c).Info("snapshot imported", slog.Int("records", snap.Total()))
	h.respondCounts(c, gin.H{"imported": snap.Total()})
}

// Clear POST /admin/clear
func (h *AdminHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err, "", adminWriteFailure)
		return
	}
	middleware.LoggerFromContext(c).Info("all collections cleared")
	h.respondCounts(c, gin.H{"success": true})
}

// Reset POST /admin/reset
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.svc.Reseed(c.Request.Context()); err != nil {
		respondError(c, err, "", adminWriteFailure)
		return
	}
	middleware.LoggerFromContext(c).Info("store reseeded")
	h.respondCounts(c, gin.H{"success": true})
}

func (h *AdminHandler) respondCounts(c *gin.Context, body gin.H) {
	counts, err := h.svc.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err, "", adminReadFailure)
		return
	}
	body["counts"] = counts
	c.JSON(http.StatusOK, body)
}

// CreateSnapshot POST /admin/snapshots，异步导出到对象存储。
func (h *AdminHandler) CreateSnapshot(c *gin.Context) {
	if h.enqueuer == nil {
		Unavailable(c, "snapshots are disabled")
		return
	}

	snapshotID := uuid.NewString()
	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewSnapshotExportTask(snapshotID, correlationID, time.Now().UTC())
	if err != nil {
		middleware.LoggerFromContext(c).Error("create snapshot task failed", slog.Any("error", err))
		respondError(c, err, "", adminWriteFailure)
		return
	}

	info, err := h.enqueuer.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue snapshot task failed", slog.Any("error", err))
		Unavailable(c, "failed to enqueue snapshot task")
		return
	}

	middleware.LoggerFromContext(c).Info("snapshot task enqueued",
		slog.String("snapshot_id", snapshotID),
		slog.String("task_id", info.ID),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"snapshotId":    snapshotID,
		"taskId":        info.ID,
		"correlationId": correlationID,
	})
}

// ListSnapshots GET /admin/snapshots
func (h *AdminHandler) ListSnapshots(c *gin.Context) {
	if h.lister == nil {
		Unavailable(c, "snapshots are disabled")
		return
	}
	limit := defaultSnapshotListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	objects, err := h.lister.ListObjects(c.Request.Context(), storage.SnapshotPrefix, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list snapshots failed", slog.Any("error", err))
		Unavailable(c, "failed to list snapshots")
		return
	}
	c.JSON(http.StatusOK, objects)
}
