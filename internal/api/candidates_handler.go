package api

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"talentflow/internal/chaos"
	"talentflow/internal/database"
	"talentflow/internal/errcode"
	"talentflow/internal/recruit"
)

var (
	fetchCandidatesFailure = chaos.Failure{Message: "Failed to fetch candidates", Code: errcode.FetchCandidatesFailed}
	createCandidateFailure = chaos.Failure{Message: "Failed to create candidate", Code: errcode.CreateCandidateFailed}
	updateCandidateFailure = chaos.Failure{Message: "Failed to update candidate", Code: errcode.UpdateCandidateFailed}
	fetchTimelineFailure   = chaos.Failure{Message: "Failed to fetch timeline", Code: errcode.FetchTimelineFailed}
	fetchNotesFailure      = chaos.Failure{Message: "Failed to fetch notes", Code: errcode.FetchNotesFailed}
	createNoteFailure      = chaos.Failure{Message: "Failed to create note", Code: errcode.CreateNoteFailed}
)

// stage 按招聘流程顺序排序，而不是字母序
var candidateSorters = map[string]func(a, b database.Candidate) int{
	"createdAt": func(a, b database.Candidate) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"name":      func(a, b database.Candidate) int { return compareFold(a.Name, b.Name) },
	"stage": func(a, b database.Candidate) int {
		return cmp.Compare(slices.Index(recruit.Stages, a.Stage), slices.Index(recruit.Stages, b.Stage))
	},
}

// ListCandidates GET /candidates
func (h *Handler) ListCandidates(c *gin.Context) {
	p, err := parsePagination(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	order, err := parseOrder(c, candidateSorters, "createdAt", true)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	candidates, err := h.svc.Candidates(c.Request.Context())
	if err != nil {
		respondError(c, err, errcode.CandidateNotFound, fetchCandidatesFailure)
		return
	}

	search, stage, jobID := c.Query("search"), c.Query("stage"), c.Query("jobId")
	candidates = filterItems(candidates,
		func(x *database.Candidate) bool {
			return search == "" || containsFold(x.Name, search) || containsFold(x.Email, search)
		},
		func(x *database.Candidate) bool { return stage == "" || string(x.Stage) == stage },
		func(x *database.Candidate) bool { return jobID == "" || x.JobID == jobID },
	)
	sortItems(candidates, order)
	c.JSON(http.StatusOK, paginate(candidates, p))
}

// CreateCandidate POST /candidates
func (h *Handler) CreateCandidate(c *gin.Context) {
	var candidate database.Candidate
	if !decodeBody(c, &candidate) {
		return
	}
	if err := h.svc.CreateCandidate(c.Request.Context(), &candidate); err != nil {
		respondError(c, err, errcode.CandidateNotFound, createCandidateFailure)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

// UpdateCandidate PATCH /candidates/:id
func (h *Handler) UpdateCandidate(c *gin.Context) {
	patch, ok := readPatch(c)
	if !ok {
		return
	}
	candidate, err := h.svc.UpdateCandidate(c.Request.Context(), c.Param("id"), func(x *database.Candidate) error {
		return mergePatch(x, patch)
	})
	if err != nil {
		respondError(c, err, errcode.CandidateNotFound, updateCandidateFailure)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// CandidateTimeline GET /candidates/:id/timeline
func (h *Handler) CandidateTimeline(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.svc.Candidate(ctx, id); err != nil {
		respondError(c, err, errcode.CandidateNotFound, fetchTimelineFailure)
		return
	}
	events, err := h.svc.CandidateTimeline(ctx, id)
	if err != nil {
		respondError(c, err, errcode.CandidateNotFound, fetchTimelineFailure)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CandidateNotes GET /candidates/:id/notes
func (h *Handler) CandidateNotes(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.svc.Candidate(ctx, id); err != nil {
		respondError(c, err, errcode.CandidateNotFound, fetchNotesFailure)
		return
	}
	notes, err := h.svc.CandidateNotes(ctx, id)
	if err != nil {
		respondError(c, err, errcode.CandidateNotFound, fetchNotesFailure)
		return
	}
	c.JSON(http.StatusOK, notes)
}

type noteRequest struct {
	Content  string   `json:"content"`
	Author   string   `json:"author"`
	Mentions []string `json:"mentions"`
}

// AddCandidateNote POST /candidates/:id/notes
func (h *Handler) AddCandidateNote(c *gin.Context) {
	var req noteRequest
	if !decodeBody(c, &req) {
		return
	}
	note := database.CandidateNote{
		Content:  req.Content,
		Author:   req.Author,
		Mentions: req.Mentions,
	}
	if err := h.svc.AddCandidateNote(c.Request.Context(), c.Param("id"), &note); err != nil {
		respondError(c, err, errcode.CandidateNotFound, createNoteFailure)
		return
	}
	c.JSON(http.StatusCreated, note)
}
