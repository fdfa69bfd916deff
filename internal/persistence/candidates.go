package persistence

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
	"talentflow/internal/store"
)

func (s *Service) Candidates(ctx context.Context) ([]database.Candidate, error) {
	return GetAll[database.Candidate](ctx, s, database.Candidates)
}

func (s *Service) Candidate(ctx context.Context, id string) (*database.Candidate, error) {
	return store.Get[database.Candidate](ctx, s.engine, database.Candidates, id)
}

// CandidateNotes returns the notes of a candidate, oldest first.
func (s *Service) CandidateNotes(ctx context.Context, candidateID string) ([]database.CandidateNote, error) {
	return GetByParent[database.CandidateNote](ctx, s, database.CandidateNotes, "candidateId", candidateID)
}

// CandidateTimeline returns the timeline of a candidate, oldest first.
func (s *Service) CandidateTimeline(ctx context.Context, candidateID string) ([]database.CandidateTimelineEvent, error) {
	return GetByParent[database.CandidateTimelineEvent](ctx, s, database.CandidateTimeline, "candidateId", candidateID)
}

func (s *Service) SaveCandidate(ctx context.Context, c *database.Candidate) error {
	return Save(ctx, s, database.Candidates, c)
}

func (s *Service) SaveCandidateNote(ctx context.Context, n *database.CandidateNote) error {
	return Save(ctx, s, database.CandidateNotes, n)
}

func (s *Service) SaveCandidateTimelineEvent(ctx context.Context, e *database.CandidateTimelineEvent) error {
	return Save(ctx, s, database.CandidateTimeline, e)
}

// CreateCandidate 写入新候选人：服务端分配 id，阶段固定为 applied。
func (s *Service) CreateCandidate(ctx context.Context, c *database.Candidate) error {
	now := s.Now()
	c.ID = s.newID()
	c.Stage = recruit.StageApplied
	c.CreatedAt, c.UpdatedAt = now, now
	return s.SaveCandidate(ctx, c)
}

// UpdateCandidate loads the candidate, applies the change and writes it back.
// A stage change appends a stage_change timeline event in the same transaction.
func (s *Service) UpdateCandidate(ctx context.Context, id string, apply func(*database.Candidate) error) (*database.Candidate, error) {
	var out *database.Candidate
	scope := []store.Collection{database.Candidates, database.CandidateTimeline}
	err := s.engine.Transaction(ctx, scope, func(tx *store.Engine) error {
		c, err := store.Get[database.Candidate](ctx, tx, database.Candidates, id)
		if err != nil {
			return err
		}
		createdAt, previous := c.CreatedAt, c.Stage
		if err := apply(c); err != nil {
			return err
		}

		now := s.Now()
		c.ID, c.CreatedAt = id, createdAt
		c.UpdatedAt = now
		if c.UpdatedAt.Before(c.CreatedAt) {
			c.UpdatedAt = c.CreatedAt
		}
		if err := store.Put(ctx, tx, database.Candidates, c); err != nil {
			return err
		}

		if c.Stage != previous {
			event := &database.CandidateTimelineEvent{
				ID:          s.newID(),
				CandidateID: id,
				Type:        recruit.TimelineStageChange,
				Description: fmt.Sprintf("Moved from %s to %s", previous, c.Stage),
				Metadata: datatypes.JSONMap{
					"previousStage": string(previous),
					"newStage":      string(c.Stage),
				},
				CreatedAt: c.UpdatedAt,
				UpdatedAt: c.UpdatedAt,
			}
			if err := store.Put(ctx, tx, database.CandidateTimeline, event); err != nil {
				return err
			}
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddCandidateNote 写入备注并追加 note_added 事件；候选人不存在时返回 ErrNotFound。
func (s *Service) AddCandidateNote(ctx context.Context, candidateID string, note *database.CandidateNote) error {
	scope := []store.Collection{database.Candidates, database.CandidateNotes, database.CandidateTimeline}
	return s.engine.Transaction(ctx, scope, func(tx *store.Engine) error {
		if _, err := store.Get[database.Candidate](ctx, tx, database.Candidates, candidateID); err != nil {
			return err
		}

		now := s.Now()
		note.ID = s.newID()
		note.CandidateID = candidateID
		if note.Mentions == nil {
			note.Mentions = []string{}
		}
		note.CreatedAt, note.UpdatedAt = now, now
		if err := store.Put(ctx, tx, database.CandidateNotes, note); err != nil {
			return err
		}

		description := "Note added"
		if note.Author != "" {
			description = "Note added by " + note.Author
		}
		event := &database.CandidateTimelineEvent{
			ID:          s.newID(),
			CandidateID: candidateID,
			Type:        recruit.TimelineNoteAdded,
			Description: description,
			Metadata:    datatypes.JSONMap{"noteId": note.ID, "author": note.Author},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return store.Put(ctx, tx, database.CandidateTimeline, event)
	})
}
