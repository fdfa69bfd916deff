// Package errcode 定义网关响应体 {message, code} 中使用的错误码。
package errcode

// 模拟失败：每条路由在随机失败时返回的错误码。
const (
	FetchJobsFailed        = "FETCH_JOBS_FAILED"
	CreateJobFailed        = "CREATE_JOB_FAILED"
	UpdateJobFailed        = "UPDATE_JOB_FAILED"
	ReorderJobsFailed      = "REORDER_JOBS_FAILED"
	FetchCandidatesFailed  = "FETCH_CANDIDATES_FAILED"
	CreateCandidateFailed  = "CREATE_CANDIDATE_FAILED"
	UpdateCandidateFailed  = "UPDATE_CANDIDATE_FAILED"
	FetchTimelineFailed    = "FETCH_TIMELINE_FAILED"
	FetchNotesFailed       = "FETCH_NOTES_FAILED"
	CreateNoteFailed       = "CREATE_NOTE_FAILED"
	FetchAssessmentFailed  = "FETCH_ASSESSMENT_FAILED"
	SaveAssessmentFailed   = "SAVE_ASSESSMENT_FAILED"
	SubmitAssessmentFailed = "SUBMIT_ASSESSMENT_FAILED"
)

// 业务错误。
const (
	JobNotFound        = "JOB_NOT_FOUND"
	CandidateNotFound  = "CANDIDATE_NOT_FOUND"
	AssessmentNotFound = "ASSESSMENT_NOT_FOUND"
	NotFound           = "NOT_FOUND"
	InvalidRequest     = "INVALID_REQUEST"
	InvalidReference   = "INVALID_REFERENCE"
	ReorderConflict    = "REORDER_CONFLICT"
	StorageFailure     = "STORAGE_FAILURE"
	InternalError      = "INTERNAL_ERROR"
	Unauthorized       = "UNAUTHORIZED"
	Unavailable        = "SERVICE_UNAVAILABLE"
)
