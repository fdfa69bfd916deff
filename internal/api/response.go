package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"talentflow/internal/api/middleware"
	"talentflow/internal/chaos"
	"talentflow/internal/errcode"
	"talentflow/internal/persistence"
	"talentflow/internal/store"
)

// Error 以 {message, code} 返回错误。
func Error(c *gin.Context, status int, message, code string) {
	middleware.SetFailureCode(c, code)
	c.JSON(status, chaos.Failure{Message: message, Code: code})
}

func BadRequest(c *gin.Context, msg string)     { Error(c, http.StatusBadRequest, msg, errcode.InvalidRequest) }
func NotFound(c *gin.Context, msg, code string) { Error(c, http.StatusNotFound, msg, code) }
func Unavailable(c *gin.Context, msg string)    { Error(c, http.StatusServiceUnavailable, msg, errcode.Unavailable) }

// respondError 将存储与业务错误映射为 HTTP 状态码。
// notFound 是该路由资源不存在时使用的错误码；failure 是路由的失败描述，
// 存储介质错误以其 message 返回 STORAGE_FAILURE，其余未识别错误返回 INTERNAL_ERROR。
func respondError(c *gin.Context, err error, notFound string, failure chaos.Failure) {
	switch {
	case errors.Is(err, persistence.ErrNoAssessment):
		NotFound(c, err.Error(), errcode.AssessmentNotFound)
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, err.Error(), notFound)
	case errors.Is(err, persistence.ErrReorderConflict):
		Error(c, http.StatusConflict, err.Error(), errcode.ReorderConflict)
	case errors.Is(err, errInvalidBody), errors.Is(err, persistence.ErrOrderOutOfRange), errors.Is(err, store.ErrInvalidRecord):
		BadRequest(c, err.Error())
	case errors.Is(err, store.ErrDanglingReference):
		Error(c, http.StatusBadRequest, err.Error(), errcode.InvalidReference)
	case store.IsStorageFailure(err):
		middleware.LoggerFromContext(c).Error("storage operation failed", slog.Any("error", err))
		Error(c, http.StatusInternalServerError, failure.Message, errcode.StorageFailure)
	default:
		middleware.LoggerFromContext(c).Error("unexpected error", slog.Any("error", err))
		Error(c, http.StatusInternalServerError, failure.Message, errcode.InternalError)
	}
}
