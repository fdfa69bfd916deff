package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
	"talentflow/internal/seed"
	"talentflow/internal/store"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type countingGenerator struct {
	inner DatasetGenerator
	calls atomic.Int32
}

func (g *countingGenerator) Generate() (*seed.Dataset, error) {
	g.calls.Add(1)
	return g.inner.Generate()
}

type fakeGenerator struct {
	ds  *seed.Dataset
	err error
}

func (g fakeGenerator) Generate() (*seed.Dataset, error) { return g.ds, g.err }

func newEngine(t *testing.T) *store.Engine {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	e := store.New(db)
	require.NoError(t, e.Migrate(context.Background(), database.AllCollections()...))
	return e
}

func smallGenerator() *seed.Generator {
	return seed.New(
		seed.WithSeed(11),
		seed.WithClock(func() time.Time { return testNow }),
		seed.WithCounts(seed.Counts{Jobs: 5, Candidates: 30, Assessments: 2}),
	)
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%04d", n.Add(1)) }
}

func newService(t *testing.T, gen DatasetGenerator) *Service {
	t.Helper()
	return NewService(newEngine(t), gen,
		WithClock(func() time.Time { return testNow.Add(time.Hour) }),
		WithIDGenerator(sequentialIDs()),
	)
}

func TestInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{inner: smallGenerator()}
	svc := newService(t, gen)

	seeded, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, int32(1), gen.calls.Load())

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts["jobs"])
	assert.Equal(t, int64(30), counts["candidates"])
	assert.Equal(t, int64(2), counts["assessments"])
}

func TestInitializeConcurrentCallsGenerateOnce(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{inner: smallGenerator()}
	svc := newService(t, gen)

	var wg sync.WaitGroup
	var seededCount atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seeded, err := svc.Initialize(ctx)
			assert.NoError(t, err)
			if seeded {
				seededCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, int32(1), seededCount.Load())
}

func TestInitializeSkipsWhenDataPresent(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{inner: smallGenerator()}
	svc := newService(t, gen)

	job := &database.Job{Title: "Existing"}
	require.NoError(t, svc.CreateJob(ctx, job))

	seeded, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Zero(t, gen.calls.Load())
	assert.True(t, svc.Initialized())
}

func TestInitializeFailureLeavesStoreEmptyAndAllowsRetry(t *testing.T) {
	ctx := context.Background()
	ds, err := smallGenerator().Generate()
	require.NoError(t, err)
	// 悬空引用使整个种子事务回滚
	ds.Candidates[len(ds.Candidates)-1].JobID = "missing"

	gen := &fakeGenerator{ds: ds}
	svc := NewService(newEngine(t), gen)

	_, err = svc.Initialize(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDanglingReference)
	assert.False(t, svc.Initialized())

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	for name, n := range counts {
		assert.Zero(t, n, name)
	}

	gen.err = errors.New("generator down")
	_, err = svc.Initialize(ctx)
	assert.Error(t, err)

	good, err := smallGenerator().Generate()
	require.NoError(t, err)
	gen.ds, gen.err = good, nil
	seeded, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
}

func TestClearAllThenInitializeDoesNotReseed(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, smallGenerator())

	_, err := svc.Initialize(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.ClearAll(ctx))

	seeded, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	for name, n := range counts {
		assert.Zero(t, n, name)
	}

	require.NoError(t, svc.Reseed(ctx))
	counts, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts["jobs"])
}

func TestCreateJobAssignsSlugAndOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	first := &database.Job{Title: "Go Developer"}
	require.NoError(t, svc.CreateJob(ctx, first))
	second := &database.Job{Title: "Go Developer", Status: recruit.JobArchived}
	require.NoError(t, svc.CreateJob(ctx, second))

	assert.Equal(t, "go-developer", first.Slug)
	assert.Equal(t, "go-developer-2", second.Slug)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, recruit.JobActive, first.Status)
	assert.Equal(t, recruit.JobArchived, second.Status)
	assert.NotNil(t, first.Tags)
}

func TestUpdateJobKeepsServerOwnedFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := &database.Job{Title: "Original"}
	require.NoError(t, svc.CreateJob(ctx, job))

	updated, err := svc.UpdateJob(ctx, job.ID, func(j *database.Job) error {
		j.ID = "hijack"
		j.Order = 99
		j.Title = "Changed"
		j.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, job.ID, updated.ID)
	assert.Equal(t, 1, updated.Order)
	assert.Equal(t, "Changed", updated.Title)
	assert.True(t, updated.CreatedAt.Equal(job.CreatedAt))

	_, err = svc.UpdateJob(ctx, "missing", func(*database.Job) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateJobKeepsSlugUniqueAndDerived(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	platform := &database.Job{Title: "Platform Engineer"}
	require.NoError(t, svc.CreateJob(ctx, platform))
	data := &database.Job{Title: "Data Engineer"}
	require.NoError(t, svc.CreateJob(ctx, data))

	updated, err := svc.UpdateJob(ctx, data.ID, func(j *database.Job) error {
		j.Slug = platform.Slug
		j.Location = "Remote"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "data-engineer", updated.Slug)

	updated, err = svc.UpdateJob(ctx, data.ID, func(j *database.Job) error {
		j.Title = "Platform Engineer"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "platform-engineer-2", updated.Slug)

	updated, err = svc.UpdateJob(ctx, platform.ID, func(j *database.Job) error {
		j.Title = "platform  engineer"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "platform-engineer", updated.Slug)
}

func TestReorderJob(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	var ids []string
	for i := range 4 {
		j := &database.Job{Title: fmt.Sprintf("Job %d", i+1)}
		require.NoError(t, svc.CreateJob(ctx, j))
		ids = append(ids, j.ID)
	}

	from := 4
	res, err := svc.ReorderJob(ctx, ids[3], &from, 1)
	require.NoError(t, err)
	assert.Equal(t, &ReorderResult{JobID: ids[3], FromOrder: 4, ToOrder: 1}, res)

	jobs, err := svc.Jobs(ctx)
	require.NoError(t, err)
	orders := map[string]int{}
	seen := map[int]bool{}
	for _, j := range jobs {
		orders[j.ID] = j.Order
		seen[j.Order] = true
	}
	assert.Equal(t, 1, orders[ids[3]])
	assert.Equal(t, 2, orders[ids[0]])
	assert.Equal(t, 3, orders[ids[1]])
	assert.Equal(t, 4, orders[ids[2]])
	assert.Len(t, seen, 4)

	stale := 4
	_, err = svc.ReorderJob(ctx, ids[3], &stale, 2)
	assert.ErrorIs(t, err, ErrReorderConflict)

	_, err = svc.ReorderJob(ctx, ids[0], nil, 5)
	assert.ErrorIs(t, err, ErrOrderOutOfRange)

	_, err = svc.ReorderJob(ctx, "missing", nil, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateCandidateStageAppendsTimelineEvent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := &database.Job{Title: "Backend"}
	require.NoError(t, svc.CreateJob(ctx, job))
	cand := &database.Candidate{Name: "Ada", Email: "ada@example.com", JobID: job.ID, Stage: recruit.StageHired}
	require.NoError(t, svc.CreateCandidate(ctx, cand))
	assert.Equal(t, recruit.StageApplied, cand.Stage)

	_, err := svc.UpdateCandidate(ctx, cand.ID, func(c *database.Candidate) error {
		c.Name = "Ada L."
		return nil
	})
	require.NoError(t, err)
	events, err := svc.CandidateTimeline(ctx, cand.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	updated, err := svc.UpdateCandidate(ctx, cand.ID, func(c *database.Candidate) error {
		c.Stage = recruit.StageTech
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, recruit.StageTech, updated.Stage)

	events, err = svc.CandidateTimeline(ctx, cand.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recruit.TimelineStageChange, events[0].Type)
	assert.Equal(t, "applied", events[0].Metadata["previousStage"])
	assert.Equal(t, "tech", events[0].Metadata["newStage"])

	_, err = svc.UpdateCandidate(ctx, cand.ID, func(c *database.Candidate) error {
		c.Stage = "interview"
		return nil
	})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
	events, err = svc.CandidateTimeline(ctx, cand.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCreateCandidateRequiresJob(t *testing.T) {
	svc := newService(t, nil)
	err := svc.CreateCandidate(context.Background(), &database.Candidate{Name: "Nobody", JobID: "missing"})
	assert.ErrorIs(t, err, store.ErrDanglingReference)
}

func TestAddCandidateNote(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := &database.Job{Title: "Backend"}
	require.NoError(t, svc.CreateJob(ctx, job))
	cand := &database.Candidate{Name: "Grace", JobID: job.ID}
	require.NoError(t, svc.CreateCandidate(ctx, cand))

	note := &database.CandidateNote{Content: "Strong systems background", Author: "Lisa Wilson"}
	require.NoError(t, svc.AddCandidateNote(ctx, cand.ID, note))
	assert.NotEmpty(t, note.ID)
	assert.NotNil(t, note.Mentions)

	notes, err := svc.CandidateNotes(ctx, cand.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Strong systems background", notes[0].Content)

	events, err := svc.CandidateTimeline(ctx, cand.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recruit.TimelineNoteAdded, events[0].Type)

	err = svc.AddCandidateNote(ctx, "missing", &database.CandidateNote{Content: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertAssessmentKeyedByJob(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := &database.Job{Title: "Frontend"}
	require.NoError(t, svc.CreateJob(ctx, job))

	first := &database.Assessment{
		Title: "Screening",
		Sections: []recruit.AssessmentSection{{
			Title: "Basics",
			Questions: []recruit.AssessmentQuestion{
				{Type: recruit.QuestionSingleChoice, Title: "Pick one", Options: []recruit.QuestionOption{{Label: "Yes"}, {Label: "No"}}},
				{Type: recruit.QuestionNumeric, Title: "Years"},
			},
		}},
	}
	require.NoError(t, svc.UpsertAssessment(ctx, job.ID, first))

	section := first.Sections[0]
	assert.Equal(t, first.ID, section.AssessmentID)
	assert.Equal(t, 1, section.Order)
	assert.Equal(t, section.ID, section.Questions[1].SectionID)
	assert.Equal(t, 2, section.Questions[1].Order)
	assert.Equal(t, "yes", section.Questions[0].Options[0].Value)

	second := &database.Assessment{Title: "Screening v2", IsActive: true}
	require.NoError(t, svc.UpsertAssessment(ctx, job.ID, second))
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	stored, err := svc.AssessmentByJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Screening v2", stored.Title)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["assessments"])

	err = svc.UpsertAssessment(ctx, "missing", &database.Assessment{})
	assert.ErrorIs(t, err, store.ErrDanglingReference)

	none, err := svc.AssessmentByJob(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSubmitAssessment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := &database.Job{Title: "Frontend"}
	require.NoError(t, svc.CreateJob(ctx, job))
	cand := &database.Candidate{Name: "Linus", JobID: job.ID}
	require.NoError(t, svc.CreateCandidate(ctx, cand))

	err := svc.SubmitAssessment(ctx, job.ID, &database.AssessmentResponse{CandidateID: cand.ID})
	assert.ErrorIs(t, err, ErrNoAssessment)
	assert.ErrorIs(t, err, store.ErrNotFound)

	a := &database.Assessment{Title: "Quiz"}
	require.NoError(t, svc.UpsertAssessment(ctx, job.ID, a))

	score := 87.5
	resp := &database.AssessmentResponse{
		CandidateID: cand.ID,
		Responses:   []recruit.QuestionResponse{{QuestionID: "q1", Value: "yes"}},
		Score:       &score,
	}
	require.NoError(t, svc.SubmitAssessment(ctx, job.ID, resp))
	assert.Equal(t, a.ID, resp.AssessmentID)
	assert.Equal(t, job.ID, resp.JobID)
	require.NotNil(t, resp.CompletedAt)

	events, err := svc.CandidateTimeline(ctx, cand.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recruit.TimelineAssessmentCompleted, events[0].Type)
	assert.Equal(t, 87.5, events[0].Metadata["score"])

	err = svc.SubmitAssessment(ctx, job.ID, &database.AssessmentResponse{CandidateID: "ghost"})
	assert.ErrorIs(t, err, store.ErrDanglingReference)

	err = svc.SubmitAssessment(ctx, job.ID, &database.AssessmentResponse{CandidateID: cand.ID, AssessmentID: "no-such"})
	assert.ErrorIs(t, err, store.ErrDanglingReference)
}

func TestSubmitAssessmentRejectsOtherJobsAssessment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	jobA := &database.Job{Title: "Platform"}
	require.NoError(t, svc.CreateJob(ctx, jobA))
	jobB := &database.Job{Title: "Data"}
	require.NoError(t, svc.CreateJob(ctx, jobB))
	cand := &database.Candidate{Name: "Barbara", JobID: jobA.ID}
	require.NoError(t, svc.CreateCandidate(ctx, cand))

	other := &database.Assessment{Title: "Data quiz"}
	require.NoError(t, svc.UpsertAssessment(ctx, jobB.ID, other))

	err := svc.SubmitAssessment(ctx, jobA.ID, &database.AssessmentResponse{CandidateID: cand.ID, AssessmentID: other.ID})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts["assessmentResponses"])
	assert.Zero(t, counts["candidateTimeline"])

	own := &database.Assessment{Title: "Platform quiz"}
	require.NoError(t, svc.UpsertAssessment(ctx, jobA.ID, own))
	resp := &database.AssessmentResponse{CandidateID: cand.ID, AssessmentID: own.ID}
	require.NoError(t, svc.SubmitAssessment(ctx, jobA.ID, resp))
	assert.Equal(t, own.ID, resp.AssessmentID)
}

func TestExportClearImportRestoresCounts(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, smallGenerator())

	_, err := svc.Initialize(ctx)
	require.NoError(t, err)
	before, err := svc.Counts(ctx)
	require.NoError(t, err)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, int(before["candidates"]), len(snap.Candidates))

	require.NoError(t, svc.ClearAll(ctx))
	require.NoError(t, svc.Import(ctx, snap))

	after, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// 重复导入为 upsert，不会产生重复记录
	require.NoError(t, svc.Import(ctx, snap))
	again, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, again)
}

func TestImportSkipsAbsentCollections(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	job := database.Job{
		ID: "j1", Title: "Imported", Slug: "imported", Status: recruit.JobActive,
		Tags: []string{}, Order: 1, CreatedAt: testNow, UpdatedAt: testNow,
	}
	require.NoError(t, svc.Import(ctx, &Snapshot{Jobs: []database.Job{job}}))

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["jobs"])
	assert.Zero(t, counts["candidates"])

	err = svc.Import(ctx, &Snapshot{Candidates: []database.Candidate{{
		ID: "c1", Stage: recruit.StageApplied, JobID: "nope", CreatedAt: testNow, UpdatedAt: testNow,
	}}})
	assert.ErrorIs(t, err, store.ErrDanglingReference)
}
