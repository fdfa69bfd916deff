package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultBatchSize = 100
	// sqlite 单条语句的参数个数有限，IN 查询按块拆分。
	referenceChunkSize = 500
)

// Engine 基于 GORM 提供具名集合的持久化与跨集合事务。
// 事务内的 Engine 只允许访问声明过的集合。
type Engine struct {
	db        *gorm.DB
	scope     map[string]struct{}
	batchSize int
}

// New wraps an opened gorm connection.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db, batchSize: defaultBatchSize}
}

// DB exposes the underlying connection for health checks.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// InTransaction reports whether e is bound to an open transaction.
func (e *Engine) InTransaction() bool {
	return e.scope != nil
}

// Migrate creates or updates the tables and indexes of the given collections.
func (e *Engine) Migrate(ctx context.Context, collections ...Collection) error {
	models := make([]any, 0, len(collections))
	for _, c := range collections {
		models = append(models, c.Model)
	}
	if err := e.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return failure("migrate", "", err)
	}
	return nil
}

func (e *Engine) session(ctx context.Context, c Collection, op string) (*gorm.DB, error) {
	if e.scope != nil {
		if _, ok := e.scope[c.Name]; !ok {
			return nil, fmt.Errorf("store %s %s: %w", op, c.Name, ErrOutOfScope)
		}
	}
	return e.db.WithContext(ctx).Table(c.Table), nil
}

// Transaction runs fn with an Engine bound to one database transaction scoped to
// the listed collections. Any error returned by fn (or a panic) rolls back every
// write; errors from fn are returned unchanged.
func (e *Engine) Transaction(ctx context.Context, collections []Collection, fn func(tx *Engine) error) error {
	scope := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		if e.scope != nil {
			if _, ok := e.scope[c.Name]; !ok {
				return fmt.Errorf("store transaction %s: %w", c.Name, ErrOutOfScope)
			}
		}
		scope[c.Name] = struct{}{}
	}

	var bodyErr error
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bodyErr = fn(&Engine{db: tx, scope: scope, batchSize: e.batchSize})
		return bodyErr
	})
	if err == nil {
		return nil
	}
	if bodyErr != nil {
		return bodyErr
	}
	return failure("commit", "", err)
}

// Count returns the number of records in c.
func (e *Engine) Count(ctx context.Context, c Collection) (int64, error) {
	db, err := e.session(ctx, c, "count")
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, failure("count", c.Name, err)
	}
	return n, nil
}

// Clear removes every record of c.
func (e *Engine) Clear(ctx context.Context, c Collection) error {
	db, err := e.session(ctx, c, "clear")
	if err != nil {
		return err
	}
	if err := db.Where("1 = 1").Delete(c.Model).Error; err != nil {
		return failure("clear", c.Name, err)
	}
	return nil
}

// Put 按 id 插入或覆盖一条记录。
func Put[T any](ctx context.Context, e *Engine, c Collection, rec *T) error {
	db, err := e.session(ctx, c, "put")
	if err != nil {
		return err
	}
	if err := checkRecords(ctx, e, c, []T{*rec}); err != nil {
		return err
	}
	if err := db.Clauses(upsertClause()).Create(rec).Error; err != nil {
		return failure("put", c.Name, err)
	}
	return nil
}

// BulkInsert 批量插入；任意 id 已存在时整体失败。
func BulkInsert[T any](ctx context.Context, e *Engine, c Collection, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	db, err := e.session(ctx, c, "bulk insert")
	if err != nil {
		return err
	}
	if err := checkRecords(ctx, e, c, recs); err != nil {
		return err
	}
	if err := db.CreateInBatches(recs, e.batchSize).Error; err != nil {
		return failure("bulk insert", c.Name, err)
	}
	return nil
}

// BulkPut upserts recs by id.
func BulkPut[T any](ctx context.Context, e *Engine, c Collection, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	db, err := e.session(ctx, c, "bulk put")
	if err != nil {
		return err
	}
	if err := checkRecords(ctx, e, c, recs); err != nil {
		return err
	}
	if err := db.Clauses(upsertClause()).CreateInBatches(recs, e.batchSize).Error; err != nil {
		return failure("bulk put", c.Name, err)
	}
	return nil
}

// Get loads one record by id.
func Get[T any](ctx context.Context, e *Engine, c Collection, id string) (*T, error) {
	db, err := e.session(ctx, c, "get")
	if err != nil {
		return nil, err
	}
	var out T
	if err := db.Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %q: %w", c.Name, id, ErrNotFound)
		}
		return nil, failure("get", c.Name, err)
	}
	return &out, nil
}

// All returns every record of c ordered by id.
func All[T any](ctx context.Context, e *Engine, c Collection) ([]T, error) {
	db, err := e.session(ctx, c, "all")
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := db.Order("id").Find(&out).Error; err != nil {
		return nil, failure("all", c.Name, err)
	}
	return out, nil
}

// QueryByField 在声明过的二级索引上做等值查询，按 created_at 升序返回。
func QueryByField[T any](ctx context.Context, e *Engine, c Collection, field string, value any) ([]T, error) {
	column, ok := c.Column(field)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", c.Name, field, ErrUnindexedField)
	}
	db, err := e.session(ctx, c, "query")
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("created_at").
		Order("id").
		Find(&out).Error; err != nil {
		return nil, failure("query", c.Name, err)
	}
	return out, nil
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}
}

// checkRecords validates invariants and verifies that every foreign key points
// at an existing record, batching existence checks per target collection.
func checkRecords[T any](ctx context.Context, e *Engine, c Collection, recs []T) error {
	pending := make(map[string]*pendingRefs)
	for i := range recs {
		rec := any(&recs[i])
		if v, ok := rec.(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidRecord, c.Name, i, err)
			}
		}
		r, ok := rec.(Referencer)
		if !ok {
			continue
		}
		for _, ref := range r.References() {
			if ref.ID == "" {
				return fmt.Errorf("%w: %s[%d].%s is empty", ErrDanglingReference, c.Name, i, ref.Field)
			}
			p, ok := pending[ref.Target.Name]
			if !ok {
				p = &pendingRefs{target: ref.Target, ids: map[string]string{}}
				pending[ref.Target.Name] = p
			}
			p.ids[ref.ID] = ref.Field
		}
	}

	for _, p := range pending {
		if err := p.verify(ctx, e.db, c); err != nil {
			return err
		}
	}
	return nil
}

type pendingRefs struct {
	target Collection
	ids    map[string]string // id -> referencing field
}

func (p *pendingRefs) verify(ctx context.Context, db *gorm.DB, source Collection) error {
	ids := make([]string, 0, len(p.ids))
	for id := range p.ids {
		ids = append(ids, id)
	}

	found := make(map[string]struct{}, len(ids))
	for start := 0; start < len(ids); start += referenceChunkSize {
		end := start + referenceChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		var existing []string
		if err := db.WithContext(ctx).
			Table(p.target.Table).
			Where("id IN ?", ids[start:end]).
			Pluck("id", &existing).Error; err != nil {
			return failure("check references", source.Name, err)
		}
		for _, id := range existing {
			found[id] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s.%s=%q not found in %s", ErrDanglingReference, source.Name, p.ids[id], id, p.target.Name)
		}
	}
	return nil
}
