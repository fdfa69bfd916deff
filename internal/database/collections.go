package database

import "talentflow/internal/store"

// 六个具名集合及其二级索引（字段名 -> 列名）。
var (
	Jobs = store.Collection{
		Name:  "jobs",
		Table: "jobs",
		Model: &Job{},
		Indexes: map[string]string{
			"slug":   "slug",
			"status": "status",
			"order":  "position",
		},
	}
	Candidates = store.Collection{
		Name:  "candidates",
		Table: "candidates",
		Model: &Candidate{},
		Indexes: map[string]string{
			"jobId": "job_id",
			"stage": "stage",
			"email": "email",
		},
	}
	CandidateNotes = store.Collection{
		Name:    "candidateNotes",
		Table:   "candidate_notes",
		Model:   &CandidateNote{},
		Indexes: map[string]string{"candidateId": "candidate_id"},
	}
	CandidateTimeline = store.Collection{
		Name:  "candidateTimeline",
		Table: "candidate_timeline",
		Model: &CandidateTimelineEvent{},
		Indexes: map[string]string{
			"candidateId": "candidate_id",
			"type":        "type",
		},
	}
	Assessments = store.Collection{
		Name:    "assessments",
		Table:   "assessments",
		Model:   &Assessment{},
		Indexes: map[string]string{"jobId": "job_id"},
	}
	AssessmentResponses = store.Collection{
		Name:  "assessmentResponses",
		Table: "assessment_responses",
		Model: &AssessmentResponse{},
		Indexes: map[string]string{
			"candidateId":  "candidate_id",
			"assessmentId": "assessment_id",
			"jobId":        "job_id",
		},
	}
)

// AllCollections returns the collections in reference order: a collection only
// points at collections listed before it.
func AllCollections() []store.Collection {
	return []store.Collection{Jobs, Candidates, CandidateNotes, CandidateTimeline, Assessments, AssessmentResponses}
}
