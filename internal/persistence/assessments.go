package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
	"talentflow/internal/store"
)

// AssessmentByJob returns the first assessment of the job, or nil when none exists.
func (s *Service) AssessmentByJob(ctx context.Context, jobID string) (*database.Assessment, error) {
	return assessmentByJob(ctx, s.engine, jobID)
}

func assessmentByJob(ctx context.Context, e *store.Engine, jobID string) (*database.Assessment, error) {
	found, err := store.QueryByField[database.Assessment](ctx, e, database.Assessments, "jobId", jobID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Service) SaveAssessment(ctx context.Context, a *database.Assessment) error {
	return Save(ctx, s, database.Assessments, a)
}

func (s *Service) SaveAssessmentResponse(ctx context.Context, r *database.AssessmentResponse) error {
	return Save(ctx, s, database.AssessmentResponses, r)
}

// UpsertAssessment 以职位为键写入测评：已存在时保留 id 与 createdAt，
// 内嵌分组、题目与选项统一补齐 id、父级 id、顺序和时间戳。
func (s *Service) UpsertAssessment(ctx context.Context, jobID string, a *database.Assessment) error {
	return s.engine.Transaction(ctx, []store.Collection{database.Assessments}, func(tx *store.Engine) error {
		existing, err := assessmentByJob(ctx, tx, jobID)
		if err != nil {
			return err
		}

		now := s.Now()
		if existing != nil {
			a.ID, a.CreatedAt = existing.ID, existing.CreatedAt
		} else {
			a.ID, a.CreatedAt = s.newID(), now
		}
		a.JobID = jobID
		a.UpdatedAt = now
		if a.UpdatedAt.Before(a.CreatedAt) {
			a.UpdatedAt = a.CreatedAt
		}
		a.Sections = recruit.NormalizeSections(a.ID, a.Sections, now, s.newID)
		return store.Put(ctx, tx, database.Assessments, a)
	})
}

// SubmitAssessment persists a response and appends an assessment_completed
// event. An empty AssessmentID defaults to the job's assessment.
func (s *Service) SubmitAssessment(ctx context.Context, jobID string, r *database.AssessmentResponse) error {
	scope := []store.Collection{database.Assessments, database.AssessmentResponses, database.CandidateTimeline}
	return s.engine.Transaction(ctx, scope, func(tx *store.Engine) error {
		if r.AssessmentID == "" {
			a, err := assessmentByJob(ctx, tx, jobID)
			if err != nil {
				return err
			}
			if a == nil {
				return fmt.Errorf("job %q: %w", jobID, ErrNoAssessment)
			}
			r.AssessmentID = a.ID
		} else {
			a, err := store.Get[database.Assessment](ctx, tx, database.Assessments, r.AssessmentID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				return fmt.Errorf("assessment %q: %w", r.AssessmentID, store.ErrDanglingReference)
			case err != nil:
				return err
			case a.JobID != jobID:
				return fmt.Errorf("assessment %q belongs to job %q, not %q: %w", r.AssessmentID, a.JobID, jobID, store.ErrInvalidRecord)
			}
		}

		now := s.Now()
		r.ID = s.newID()
		r.JobID = jobID
		r.CompletedAt = &now
		r.CreatedAt, r.UpdatedAt = now, now
		if r.Responses == nil {
			r.Responses = []recruit.QuestionResponse{}
		}
		if err := store.Put(ctx, tx, database.AssessmentResponses, r); err != nil {
			return err
		}

		meta := datatypes.JSONMap{"assessmentId": r.AssessmentID, "responseId": r.ID}
		if r.Score != nil {
			meta["score"] = *r.Score
		}
		event := &database.CandidateTimelineEvent{
			ID:          s.newID(),
			CandidateID: r.CandidateID,
			Type:        recruit.TimelineAssessmentCompleted,
			Description: "Assessment submitted",
			Metadata:    meta,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return store.Put(ctx, tx, database.CandidateTimeline, event)
	})
}
