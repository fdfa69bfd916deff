package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talentflow/internal/chaos"
	"talentflow/internal/database"
	"talentflow/internal/errcode"
	"talentflow/internal/recruit"
)

var (
	fetchAssessmentFailure  = chaos.Failure{Message: "Failed to fetch assessment", Code: errcode.FetchAssessmentFailed}
	saveAssessmentFailure   = chaos.Failure{Message: "Failed to save assessment", Code: errcode.SaveAssessmentFailed}
	submitAssessmentFailure = chaos.Failure{Message: "Failed to submit assessment", Code: errcode.SubmitAssessmentFailed}
)

// GetAssessment GET /assessments/:jobId，没有测评时返回 null。
func (h *Handler) GetAssessment(c *gin.Context) {
	a, err := h.svc.AssessmentByJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondError(c, err, errcode.AssessmentNotFound, fetchAssessmentFailure)
		return
	}
	if a == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, a)
}

// SaveAssessment PUT /assessments/:jobId
func (h *Handler) SaveAssessment(c *gin.Context) {
	a := database.Assessment{IsActive: true}
	if !decodeBody(c, &a) {
		return
	}
	if a.Sections == nil {
		a.Sections = []recruit.AssessmentSection{}
	}
	if err := h.svc.UpsertAssessment(c.Request.Context(), c.Param("jobId"), &a); err != nil {
		respondError(c, err, errcode.JobNotFound, saveAssessmentFailure)
		return
	}
	c.JSON(http.StatusOK, a)
}

type submitRequest struct {
	CandidateID  string                     `json:"candidateId"`
	AssessmentID string                     `json:"assessmentId"`
	Responses    []recruit.QuestionResponse `json:"responses"`
	Score        *float64                   `json:"score"`
}

// SubmitAssessment POST /assessments/:jobId/submit
func (h *Handler) SubmitAssessment(c *gin.Context) {
	var req submitRequest
	if !decodeBody(c, &req) {
		return
	}
	r := database.AssessmentResponse{
		CandidateID:  req.CandidateID,
		AssessmentID: req.AssessmentID,
		Responses:    req.Responses,
		Score:        req.Score,
	}
	if err := h.svc.SubmitAssessment(c.Request.Context(), c.Param("jobId"), &r); err != nil {
		respondError(c, err, errcode.AssessmentNotFound, submitAssessmentFailure)
		return
	}
	c.JSON(http.StatusCreated, r)
}
