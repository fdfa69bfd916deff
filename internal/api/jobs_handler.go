package api

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"talentflow/internal/chaos"
	"talentflow/internal/database"
	"talentflow/internal/errcode"
)

var (
	fetchJobsFailure   = chaos.Failure{Message: "Failed to fetch jobs", Code: errcode.FetchJobsFailed}
	createJobFailure   = chaos.Failure{Message: "Failed to create job", Code: errcode.CreateJobFailed}
	updateJobFailure   = chaos.Failure{Message: "Failed to update job", Code: errcode.UpdateJobFailed}
	reorderJobsFailure = chaos.Failure{Message: "Failed to reorder jobs", Code: errcode.ReorderJobsFailed}
)

var jobSorters = map[string]func(a, b database.Job) int{
	"order": func(a, b database.Job) int { return cmp.Compare(a.Order, b.Order) },
	"title": func(a, b database.Job) int { return compareFold(a.Title, b.Title) },
	"createdAt": func(a, b database.Job) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
}

// ListJobs GET /jobs
func (h *Handler) ListJobs(c *gin.Context) {
	p, err := parsePagination(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	order, err := parseOrder(c, jobSorters, "order", false)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	jobs, err := h.svc.Jobs(c.Request.Context())
	if err != nil {
		respondError(c, err, errcode.JobNotFound, fetchJobsFailure)
		return
	}

	search, status, tags := c.Query("search"), c.Query("status"), splitList(c.Query("tags"))
	jobs = filterItems(jobs,
		func(j *database.Job) bool { return search == "" || containsFold(j.Title, search) },
		func(j *database.Job) bool { return status == "" || string(j.Status) == status },
		func(j *database.Job) bool {
			for _, tag := range tags {
				if !slices.Contains(j.Tags, tag) {
					return false
				}
			}
			return true
		},
	)
	sortItems(jobs, order)
	c.JSON(http.StatusOK, paginate(jobs, p))
}

// CreateJob POST /jobs
func (h *Handler) CreateJob(c *gin.Context) {
	var job database.Job
	if !decodeBody(c, &job) {
		return
	}
	if err := h.svc.CreateJob(c.Request.Context(), &job); err != nil {
		respondError(c, err, errcode.JobNotFound, createJobFailure)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// UpdateJob PATCH /jobs/:id
func (h *Handler) UpdateJob(c *gin.Context) {
	patch, ok := readPatch(c)
	if !ok {
		return
	}
	job, err := h.svc.UpdateJob(c.Request.Context(), c.Param("id"), func(j *database.Job) error {
		return mergePatch(j, patch, "order", "slug")
	})
	if err != nil {
		respondError(c, err, errcode.JobNotFound, updateJobFailure)
		return
	}
	c.JSON(http.StatusOK, job)
}

type reorderRequest struct {
	FromOrder *int `json:"fromOrder"`
	ToOrder   *int `json:"toOrder"`
}

// ReorderJob PATCH /jobs/:id/reorder
func (h *Handler) ReorderJob(c *gin.Context) {
	var req reorderRequest
	if !decodeBody(c, &req) {
		return
	}
	if req.ToOrder == nil {
		BadRequest(c, "toOrder is required")
		return
	}

	result, err := h.svc.ReorderJob(c.Request.Context(), c.Param("id"), req.FromOrder, *req.ToOrder)
	if err != nil {
		respondError(c, err, errcode.JobNotFound, reorderJobsFailure)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"jobId":     result.JobID,
		"fromOrder": result.FromOrder,
		"toOrder":   result.ToOrder,
	})
}

// decodeBody 解码可选的 JSON 请求体（空 body 视为 {}），失败时已写回 400。
func decodeBody(c *gin.Context, v any) bool {
	body, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "read request body failed")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		BadRequest(c, errInvalidBody.Error()+": "+err.Error())
		return false
	}
	return true
}

// readPatch 读取 PATCH 请求体，失败时已写回 400。
func readPatch(c *gin.Context) (map[string]json.RawMessage, bool) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "read request body failed")
		return nil, false
	}
	patch, err := decodeObject(body)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}
	return patch, true
}
