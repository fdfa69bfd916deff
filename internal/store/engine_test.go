package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
	"talentflow/internal/store"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

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

func job(id string, order int) database.Job {
	return database.Job{
		ID:        id,
		Title:     "Job " + id,
		Slug:      "job-" + id,
		Status:    recruit.JobActive,
		Tags:      []string{"go"},
		Order:     order,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func candidate(id, jobID string, created time.Time) database.Candidate {
	return database.Candidate{
		ID:        id,
		Name:      "Candidate " + id,
		Email:     id + "@example.com",
		Stage:     recruit.StageApplied,
		JobID:     jobID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	j := job("j1", 1)
	require.NoError(t, store.Put(ctx, e, database.Jobs, &j))

	got, err := store.Get[database.Job](ctx, e, database.Jobs, "j1")
	require.NoError(t, err)
	assert.Equal(t, "Job j1", got.Title)
	assert.Equal(t, []string{"go"}, []string(got.Tags))
	assert.True(t, got.CreatedAt.Equal(testNow))

	// put 覆盖同 id 记录
	j.Title = "Renamed"
	j.UpdatedAt = testNow.Add(time.Minute)
	require.NoError(t, store.Put(ctx, e, database.Jobs, &j))

	got, err = store.Get[database.Job](ctx, e, database.Jobs, "j1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.CreatedAt.Equal(testNow))
	assert.True(t, got.UpdatedAt.Equal(testNow.Add(time.Minute)))

	n, err := e.Count(ctx, database.Jobs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetMissing(t *testing.T) {
	e := newEngine(t)
	_, err := store.Get[database.Job](context.Background(), e, database.Jobs, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, store.IsStorageFailure(err))
}

func TestBulkInsertRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	require.NoError(t, store.BulkInsert(ctx, e, database.Jobs, []database.Job{job("j1", 1), job("j2", 2)}))

	err := store.BulkInsert(ctx, e, database.Jobs, []database.Job{job("j3", 3), job("j1", 4)})
	require.Error(t, err)
	assert.True(t, store.IsStorageFailure(err))

	n, err := e.Count(ctx, database.Jobs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBulkInsertEmpty(t *testing.T) {
	e := newEngine(t)
	assert.NoError(t, store.BulkInsert[database.Job](context.Background(), e, database.Jobs, nil))
}

func TestBulkInsertLargerThanBatch(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	require.NoError(t, store.BulkInsert(ctx, e, database.Jobs, []database.Job{job("j1", 1)}))

	cands := make([]database.Candidate, 0, 250)
	for i := range 250 {
		cands = append(cands, candidate(fmt.Sprintf("c%03d", i), "j1", testNow))
	}
	require.NoError(t, store.BulkInsert(ctx, e, database.Candidates, cands))

	all, err := store.All[database.Candidate](ctx, e, database.Candidates)
	require.NoError(t, err)
	assert.Len(t, all, 250)
	assert.Equal(t, "c000", all[0].ID)
}

func TestDanglingReferenceRejected(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	c := candidate("c1", "missing-job", testNow)
	err := store.Put(ctx, e, database.Candidates, &c)
	assert.ErrorIs(t, err, store.ErrDanglingReference)

	c.JobID = ""
	err = store.Put(ctx, e, database.Candidates, &c)
	assert.ErrorIs(t, err, store.ErrDanglingReference)

	n, err := e.Count(ctx, database.Candidates)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInvalidRecordRejected(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	j := job("j1", 1)
	j.Status = "draft"
	err := store.Put(ctx, e, database.Jobs, &j)
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestQueryByField(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	require.NoError(t, store.BulkInsert(ctx, e, database.Jobs, []database.Job{job("j1", 1), job("j2", 2)}))
	require.NoError(t, store.BulkInsert(ctx, e, database.Candidates, []database.Candidate{
		candidate("c2", "j1", testNow.Add(2*time.Hour)),
		candidate("c1", "j1", testNow.Add(time.Hour)),
		candidate("c3", "j2", testNow),
	}))

	got, err := store.QueryByField[database.Candidate](ctx, e, database.Candidates, "jobId", "j1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)

	none, err := store.QueryByField[database.Candidate](ctx, e, database.Candidates, "jobId", "j9")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = store.QueryByField[database.Candidate](ctx, e, database.Candidates, "name", "x")
	assert.ErrorIs(t, err, store.ErrUnindexedField)
}

func TestTransactionRollsBackAcrossCollections(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	boom := errors.New("boom")

	err := e.Transaction(ctx, []store.Collection{database.Jobs, database.Candidates}, func(tx *store.Engine) error {
		j := job("j1", 1)
		if err := store.Put(ctx, tx, database.Jobs, &j); err != nil {
			return err
		}
		c := candidate("c1", "j1", testNow)
		if err := store.Put(ctx, tx, database.Candidates, &c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	for _, c := range []store.Collection{database.Jobs, database.Candidates} {
		n, err := e.Count(ctx, c)
		require.NoError(t, err)
		assert.Zero(t, n, c.Name)
	}
}

func TestTransactionSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	err := e.Transaction(ctx, []store.Collection{database.Jobs, database.Candidates}, func(tx *store.Engine) error {
		j := job("j1", 1)
		if err := store.Put(ctx, tx, database.Jobs, &j); err != nil {
			return err
		}
		// 引用检查在同一事务内可见刚写入的职位
		c := candidate("c1", "j1", testNow)
		return store.Put(ctx, tx, database.Candidates, &c)
	})
	require.NoError(t, err)

	n, err := e.Count(ctx, database.Candidates)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTransactionOutOfScope(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	err := e.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
		j := job("j1", 1)
		if err := store.Put(ctx, tx, database.Jobs, &j); err != nil {
			return err
		}
		c := candidate("c1", "j1", testNow)
		return store.Put(ctx, tx, database.Candidates, &c)
	})
	assert.ErrorIs(t, err, store.ErrOutOfScope)
	assert.False(t, store.IsStorageFailure(err))

	err = e.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
		return tx.Transaction(ctx, []store.Collection{database.Candidates}, func(*store.Engine) error { return nil })
	})
	assert.ErrorIs(t, err, store.ErrOutOfScope)
	assert.False(t, store.IsStorageFailure(err))

	n, err := e.Count(ctx, database.Jobs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransactionPanicRollsBack(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	assert.Panics(t, func() {
		_ = e.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
			j := job("j1", 1)
			if err := store.Put(ctx, tx, database.Jobs, &j); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	n, err := e.Count(ctx, database.Jobs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	require.NoError(t, store.BulkInsert(ctx, e, database.Jobs, []database.Job{job("j1", 1), job("j2", 2)}))

	require.NoError(t, e.Clear(ctx, database.Jobs))
	n, err := e.Count(ctx, database.Jobs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCanceledContextIsStorageFailure(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.All[database.Job](ctx, e, database.Jobs)
	require.Error(t, err)
	assert.True(t, store.IsStorageFailure(err))
}
