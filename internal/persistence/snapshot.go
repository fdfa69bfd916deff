package persistence

import (
	"context"
	"fmt"

	"talentflow/internal/database"
	"talentflow/internal/store"
)

// Snapshot 是六个集合的批量导入导出格式；导入时缺省的数组会被跳过。
type Snapshot struct {
	Jobs                []database.Job                    `json:"jobs"`
	Candidates          []database.Candidate              `json:"candidates"`
	CandidateNotes      []database.CandidateNote          `json:"candidateNotes"`
	CandidateTimeline   []database.CandidateTimelineEvent `json:"candidateTimeline"`
	Assessments         []database.Assessment             `json:"assessments"`
	AssessmentResponses []database.AssessmentResponse     `json:"assessmentResponses"`
}

// Export reads every collection inside one transaction.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.engine.Transaction(ctx, database.AllCollections(), func(tx *store.Engine) error {
		var err error
		if snap.Jobs, err = store.All[database.Job](ctx, tx, database.Jobs); err != nil {
			return err
		}
		if snap.Candidates, err = store.All[database.Candidate](ctx, tx, database.Candidates); err != nil {
			return err
		}
		if snap.CandidateNotes, err = store.All[database.CandidateNote](ctx, tx, database.CandidateNotes); err != nil {
			return err
		}
		if snap.CandidateTimeline, err = store.All[database.CandidateTimelineEvent](ctx, tx, database.CandidateTimeline); err != nil {
			return err
		}
		if snap.Assessments, err = store.All[database.Assessment](ctx, tx, database.Assessments); err != nil {
			return err
		}
		snap.AssessmentResponses, err = store.All[database.AssessmentResponse](ctx, tx, database.AssessmentResponses)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return snap, nil
}

// Import upserts the present arrays in reference order inside one transaction.
func (s *Service) Import(ctx context.Context, snap *Snapshot) error {
	err := s.engine.Transaction(ctx, database.AllCollections(), func(tx *store.Engine) error {
		if err := store.BulkPut(ctx, tx, database.Jobs, snap.Jobs); err != nil {
			return err
		}
		if err := store.BulkPut(ctx, tx, database.Candidates, snap.Candidates); err != nil {
			return err
		}
		if err := store.BulkPut(ctx, tx, database.CandidateNotes, snap.CandidateNotes); err != nil {
			return err
		}
		if err := store.BulkPut(ctx, tx, database.CandidateTimeline, snap.CandidateTimeline); err != nil {
			return err
		}
		if err := store.BulkPut(ctx, tx, database.Assessments, snap.Assessments); err != nil {
			return err
		}
		return store.BulkPut(ctx, tx, database.AssessmentResponses, snap.AssessmentResponses)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// Total returns the number of records across all collections.
func (s *Snapshot) Total() int {
	return len(s.Jobs) + len(s.Candidates) + len(s.CandidateNotes) +
		len(s.CandidateTimeline) + len(s.Assessments) + len(s.AssessmentResponses)
}
