// Package persistence 是网关与存储引擎之间的数据访问门面，
// 负责一次性初始化（种子数据）以及跨集合的复合写入。
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"talentflow/internal/database"
	"talentflow/internal/seed"
	"talentflow/internal/store"
)

var (
	// ErrReorderConflict means the caller's fromOrder no longer matches the job's position.
	ErrReorderConflict = errors.New("job order changed since it was read")
	// ErrOrderOutOfRange means toOrder is outside 1..N.
	ErrOrderOutOfRange = errors.New("target order out of range")
	// ErrNoAssessment 表示职位下没有可提交的测评。
	ErrNoAssessment = fmt.Errorf("assessment: %w", store.ErrNotFound)
)

// DatasetGenerator produces the records written on first start.
type DatasetGenerator interface {
	Generate() (*seed.Dataset, error)
}

// Service 持有存储引擎与初始化状态；零值不可用，使用 NewService 创建。
type Service struct {
	engine    *store.Engine
	generator DatasetGenerator
	clock     func() time.Time
	newID     func() string
	logger    *slog.Logger

	mu          sync.Mutex
	initialized bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for server-owned timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService 创建门面；generator 为 nil 时不会写入种子数据。
func NewService(engine *store.Engine, generator DatasetGenerator, opts ...Option) *Service {
	s := &Service{
		engine:    engine,
		generator: generator,
		clock:     time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the underlying storage engine.
func (s *Service) Engine() *store.Engine {
	return s.engine
}

// Now returns the current server time, in UTC with millisecond precision.
func (s *Service) Now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// NewID returns a fresh record id.
func (s *Service) NewID() string {
	return s.newID()
}

// Initialized reports whether Initialize has completed successfully.
func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Initialize 首次调用时在存储为空的情况下写入种子数据。
// 并发调用只会生成一次；失败后状态不变，允许之后重试。
func (s *Service) Initialize(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return false, nil
	}

	empty, err := s.isEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check existing data: %w", err)
	}
	if !empty || s.generator == nil {
		s.initialized = true
		return false, nil
	}

	if err := s.seed(ctx, false); err != nil {
		return false, err
	}
	s.initialized = true
	return true, nil
}

// Reseed 清空全部集合并重新生成种子数据，无论当前是否已有数据。
func (s *Service) Reseed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generator == nil {
		return errors.New("reseed: no dataset generator configured")
	}
	if err := s.seed(ctx, true); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// seed must be called with s.mu held.
func (s *Service) seed(ctx context.Context, clearFirst bool) error {
	ds, err := s.generator.Generate()
	if err != nil {
		return fmt.Errorf("generate seed data: %w", err)
	}

	err = s.engine.Transaction(ctx, database.AllCollections(), func(tx *store.Engine) error {
		if clearFirst {
			if err := clearAll(ctx, tx); err != nil {
				return err
			}
		}
		return writeDataset(ctx, tx, ds)
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	s.logger.Info("seed data written",
		slog.Int("jobs", len(ds.Jobs)),
		slog.Int("candidates", len(ds.Candidates)),
		slog.Int("candidate_notes", len(ds.CandidateNotes)),
		slog.Int("timeline_events", len(ds.CandidateTimeline)),
		slog.Int("assessments", len(ds.Assessments)),
		slog.Int("assessment_responses", len(ds.AssessmentResponses)),
	)
	return nil
}

func (s *Service) isEmpty(ctx context.Context) (bool, error) {
	for _, c := range []store.Collection{database.Jobs, database.Candidates, database.Assessments} {
		n, err := s.engine.Count(ctx, c)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

func writeDataset(ctx context.Context, tx *store.Engine, ds *seed.Dataset) error {
	if err := store.BulkInsert(ctx, tx, database.Jobs, ds.Jobs); err != nil {
		return err
	}
	if err := store.BulkInsert(ctx, tx, database.Candidates, ds.Candidates); err != nil {
		return err
	}
	if err := store.BulkInsert(ctx, tx, database.CandidateNotes, ds.CandidateNotes); err != nil {
		return err
	}
	if err := store.BulkInsert(ctx, tx, database.CandidateTimeline, ds.CandidateTimeline); err != nil {
		return err
	}
	if err := store.BulkInsert(ctx, tx, database.Assessments, ds.Assessments); err != nil {
		return err
	}
	return store.BulkInsert(ctx, tx, database.AssessmentResponses, ds.AssessmentResponses)
}

// ClearAll empties all six collections atomically. The initialization flag is
// left untouched, so a cleared store is not reseeded until Reseed is called.
func (s *Service) ClearAll(ctx context.Context) error {
	err := s.engine.Transaction(ctx, database.AllCollections(), func(tx *store.Engine) error {
		return clearAll(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}

func clearAll(ctx context.Context, tx *store.Engine) error {
	all := database.AllCollections()
	// 逆引用顺序删除
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Clear(ctx, all[i]); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the number of records per collection keyed by collection name.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 6)
	for _, c := range database.AllCollections() {
		n, err := s.engine.Count(ctx, c)
		if err != nil {
			return nil, err
		}
		out[c.Name] = n
	}
	return out, nil
}

// GetAll returns every record of c.
func GetAll[T any](ctx context.Context, s *Service, c store.Collection) ([]T, error) {
	return store.All[T](ctx, s.engine, c)
}

// GetByParent returns the records of c whose parentField equals parentID, oldest first.
func GetByParent[T any](ctx context.Context, s *Service, c store.Collection, parentField, parentID string) ([]T, error) {
	return store.QueryByField[T](ctx, s.engine, c, parentField, parentID)
}

// Save 按 id 写入（插入或覆盖）一条记录。
func Save[T any](ctx context.Context, s *Service, c store.Collection, entity *T) error {
	return store.Put(ctx, s.engine, c, entity)
}
