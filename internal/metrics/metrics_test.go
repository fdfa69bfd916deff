package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/jobs/:id", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/abc", nil))

	after := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/jobs/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestChaosCollectors(t *testing.T) {
	before := testutil.ToFloat64(chaosFailures.WithLabelValues("POST /jobs", "CREATE_JOB_FAILED"))
	IncChaosFailure("POST /jobs", "CREATE_JOB_FAILED")
	ObserveChaosDelay("POST /jobs", 300*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(chaosFailures.WithLabelValues("POST /jobs", "CREATE_JOB_FAILED")))
}

func TestAsynqMiddlewareOutcomes(t *testing.T) {
	handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(_ context.Context, task *asynq.Task) error {
		switch string(task.Payload()) {
		case "bad":
			return fmt.Errorf("decode: %w", asynq.SkipRetry)
		case "flaky":
			return errors.New("minio unavailable")
		}
		return nil
	}))

	const typ = "snapshot:test"
	for _, payload := range []string{"ok", "ok", "bad", "flaky"} {
		_ = handler.ProcessTask(context.Background(), asynq.NewTask(typ, []byte(payload)))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(taskProcessed.WithLabelValues(typ, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(taskProcessed.WithLabelValues(typ, outcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(taskProcessed.WithLabelValues(typ, outcomeRetry)))
	assert.Zero(t, testutil.ToFloat64(taskInProgress.WithLabelValues(typ)))
}
