package persistence

import (
	"context"
	"fmt"
	"sort"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
	"talentflow/internal/store"
)

// ReorderResult 描述一次职位排序移动。
type ReorderResult struct {
	JobID     string `json:"jobId"`
	FromOrder int    `json:"fromOrder"`
	ToOrder   int    `json:"toOrder"`
}

func (s *Service) Jobs(ctx context.Context) ([]database.Job, error) {
	return GetAll[database.Job](ctx, s, database.Jobs)
}

func (s *Service) Job(ctx context.Context, id string) (*database.Job, error) {
	return store.Get[database.Job](ctx, s.engine, database.Jobs, id)
}

func (s *Service) SaveJob(ctx context.Context, job *database.Job) error {
	return Save(ctx, s, database.Jobs, job)
}

// CreateJob 为新职位分配 id、唯一 slug、末尾排序位置与时间戳后写入。
func (s *Service) CreateJob(ctx context.Context, job *database.Job) error {
	return s.engine.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
		n, err := tx.Count(ctx, database.Jobs)
		if err != nil {
			return err
		}

		slug, err := uniqueJobSlug(ctx, tx, job.Title, "")
		if err != nil {
			return err
		}

		now := s.Now()
		job.ID = s.newID()
		job.Slug = slug
		job.Order = int(n) + 1
		if job.Status == "" {
			job.Status = recruit.JobActive
		}
		if job.Tags == nil {
			job.Tags = []string{}
		}
		job.CreatedAt, job.UpdatedAt = now, now
		return store.Put(ctx, tx, database.Jobs, job)
	})
}

// UpdateJob loads the job, lets apply mutate it, and writes it back. id,
// createdAt and order are restored after apply; updatedAt is set to now.
func (s *Service) UpdateJob(ctx context.Context, id string, apply func(*database.Job) error) (*database.Job, error) {
	var out *database.Job
	err := s.engine.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
		job, err := store.Get[database.Job](ctx, tx, database.Jobs, id)
		if err != nil {
			return err
		}
		createdAt, order, title, slug := job.CreatedAt, job.Order, job.Title, job.Slug
		if err := apply(job); err != nil {
			return err
		}
		job.ID, job.CreatedAt, job.Order, job.Slug = id, createdAt, order, slug
		if job.Title != title {
			if job.Slug, err = uniqueJobSlug(ctx, tx, job.Title, id); err != nil {
				return err
			}
		}
		if job.Tags == nil {
			job.Tags = []string{}
		}
		job.UpdatedAt = s.Now()
		if job.UpdatedAt.Before(job.CreatedAt) {
			job.UpdatedAt = job.CreatedAt
		}
		if err := store.Put(ctx, tx, database.Jobs, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// uniqueJobSlug 由标题生成未被其他职位占用的 slug；self 为正在更新的职位 id。
func uniqueJobSlug(ctx context.Context, tx *store.Engine, title, self string) (string, error) {
	var lookupErr error
	slug := recruit.UniqueSlug(title, func(candidate string) bool {
		if lookupErr != nil {
			return false
		}
		found, err := store.QueryByField[database.Job](ctx, tx, database.Jobs, "slug", candidate)
		if err != nil {
			lookupErr = err
			return false
		}
		for _, j := range found {
			if j.ID != self {
				return true
			}
		}
		return false
	})
	if lookupErr != nil {
		return "", lookupErr
	}
	return slug, nil
}

// ReorderJob moves a job to toOrder and renumbers every job 1..N in one
// transaction. A non-nil fromOrder must match the job's current position.
func (s *Service) ReorderJob(ctx context.Context, id string, fromOrder *int, toOrder int) (*ReorderResult, error) {
	var result *ReorderResult
	err := s.engine.Transaction(ctx, []store.Collection{database.Jobs}, func(tx *store.Engine) error {
		jobs, err := store.All[database.Job](ctx, tx, database.Jobs)
		if err != nil {
			return err
		}
		sort.SliceStable(jobs, func(i, j int) bool {
			if jobs[i].Order != jobs[j].Order {
				return jobs[i].Order < jobs[j].Order
			}
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		})

		idx := -1
		for i := range jobs {
			if jobs[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%s %q: %w", database.Jobs.Name, id, store.ErrNotFound)
		}

		current := jobs[idx].Order
		if fromOrder != nil && *fromOrder != current {
			return fmt.Errorf("%w: job %q is at %d, not %d", ErrReorderConflict, id, current, *fromOrder)
		}
		if toOrder < 1 || toOrder > len(jobs) {
			return fmt.Errorf("%w: %d not in 1..%d", ErrOrderOutOfRange, toOrder, len(jobs))
		}

		moved := jobs[idx]
		jobs = append(jobs[:idx], jobs[idx+1:]...)
		jobs = append(jobs[:toOrder-1], append([]database.Job{moved}, jobs[toOrder-1:]...)...)

		now := s.Now()
		changed := make([]database.Job, 0, len(jobs))
		for i := range jobs {
			if jobs[i].Order == i+1 {
				continue
			}
			jobs[i].Order = i + 1
			if now.After(jobs[i].UpdatedAt) {
				jobs[i].UpdatedAt = now
			}
			changed = append(changed, jobs[i])
		}
		if err := store.BulkPut(ctx, tx, database.Jobs, changed); err != nil {
			return err
		}

		result = &ReorderResult{JobID: id, FromOrder: current, ToOrder: toOrder}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
