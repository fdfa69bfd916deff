package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talentflow/internal/api/middleware"
	"talentflow/internal/chaos"
)

// Route 是模拟网关路由表的一项：每条路由都挂在同一个 chaos 阶段之后。
type Route struct {
	Method  string
	Path    string
	Failure chaos.Failure
	Handler gin.HandlerFunc
}

// Routes 返回模拟网关的路由表，路径不含 base_path。
func (h *Handler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/jobs", fetchJobsFailure, h.ListJobs},
		{http.MethodPost, "/jobs", createJobFailure, h.CreateJob},
		{http.MethodPatch, "/jobs/:id", updateJobFailure, h.UpdateJob},
		{http.MethodPatch, "/jobs/:id/reorder", reorderJobsFailure, h.ReorderJob},

		{http.MethodGet, "/candidates", fetchCandidatesFailure, h.ListCandidates},
		{http.MethodPost, "/candidates", createCandidateFailure, h.CreateCandidate},
		{http.MethodPatch, "/candidates/:id", updateCandidateFailure, h.UpdateCandidate},
		{http.MethodGet, "/candidates/:id/timeline", fetchTimelineFailure, h.CandidateTimeline},
		{http.MethodGet, "/candidates/:id/notes", fetchNotesFailure, h.CandidateNotes},
		{http.MethodPost, "/candidates/:id/notes", createNoteFailure, h.AddCandidateNote},

		{http.MethodGet, "/assessments/:jobId", fetchAssessmentFailure, h.GetAssessment},
		{http.MethodPut, "/assessments/:jobId", saveAssessmentFailure, h.SaveAssessment},
		{http.MethodPost, "/assessments/:jobId/submit", submitAssessmentFailure, h.SubmitAssessment},
	}
}

// RegisterRoutes 注册模拟网关路由，每条路由前插入 chaos 中间件。
func RegisterRoutes(group gin.IRoutes, routes []Route, injector *chaos.Injector) {
	for _, rt := range routes {
		label := rt.Method + " " + rt.Path
		group.Handle(rt.Method, rt.Path, middleware.ChaosMiddleware(injector, label, rt.Failure), rt.Handler)
	}
}

// RegisterAdminRoutes 注册运维接口，不经过 chaos 阶段。
func RegisterAdminRoutes(group *gin.RouterGroup, admin *AdminHandler, ws *WsHandler) {
	group.GET("/counts", admin.Counts)
	group.GET("/export", admin.Export)
	group.POST("/import", admin.Import)
	group.POST("/clear", admin.Clear)
	group.POST("/reset", admin.Reset)
	group.POST("/snapshots", admin.CreateSnapshot)
	group.GET("/snapshots", admin.ListSnapshots)
	group.GET("/ws", ws.HandleConnection)
}
