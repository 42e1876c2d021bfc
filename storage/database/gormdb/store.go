package gormdb

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/strmangle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/schoolsaas/core"
)

var defaultOrdering = core.DBOrdering{Field: "createdAt", Ascending: false}

// Store is the gorm implementation of core.Store.
type Store[T any] struct {
	db       *gorm.DB
	notFound error
	preloads []string
}

var _ core.Store[core.Model] = (*Store[core.Model])(nil) // interface compliance check

// NewStore returns a store of T. Associations named in preloads (e.g. "User.Profile") are loaded on reads
// and never written.
func NewStore[T any](db *gorm.DB, notFound error, preloads ...string) *Store[T] {
	return &Store[T]{db: db, notFound: notFound, preloads: preloads}
}

func (s *Store[T]) filtered(ctx context.Context, filter *core.Filter) *gorm.DB {
	return applyFilter(s.db.WithContext(ctx).Model(new(T)), filter)
}

func (s *Store[T]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

func applyFilter(q *gorm.DB, filter *core.Filter) *gorm.DB {
	if filter == nil {
		return q
	}
	if len(filter.Equal) > 0 {
		q = q.Where(map[string]interface{}(filter.Equal))
	}
	for _, cond := range filter.Where {
		q = q.Where(cond.Query, cond.Args...)
	}
	return q
}

// orderBy converts camelCase orderings to columns of T. Unknown fields are ignored.
func (s *Store[T]) orderBy(q *gorm.DB, ordering []core.DBOrdering) *gorm.DB {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(new(T)); err != nil {
		return q
	}

	orders := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		col := strmangle.SnakeCase(strings.TrimSpace(ord.Field))
		if fld := stmt.Schema.LookUpField(col); fld == nil || fld.DBName == "" {
			continue
		}
		ord.Field = col
		orders = append(orders, ord.String())
	}
	if len(orders) == 0 {
		def := defaultOrdering
		def.Field = strmangle.SnakeCase(def.Field)
		orders = append(orders, def.String())
	}
	orders = append(orders, "id ASC") // stable pages
	return q.Order(strings.Join(orders, ", "))
}

func (s *Store[T]) Create(ctx context.Context, obj *T) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(obj).Error
	return writeErr(err, "inserting record")
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var obj T
	if _, err := uuid.Parse(id); err != nil {
		return obj, s.notFound
	}
	err := s.withPreloads(s.db.WithContext(ctx)).Where("id = ?", id).Take(&obj).Error
	return obj, readErr(err, s.notFound, "finding record by ID")
}

// Update saves every column of obj.
func (s *Store[T]) Update(ctx context.Context, obj *T) error {
	res := s.db.WithContext(ctx).
		Model(obj).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(obj)
	if err := writeErr(res.Error, "updating record"); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return s.notFound
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if err := deleteErr(res.Error, "deleting record"); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s *Store[T]) List(ctx context.Context, filter *core.Filter, page core.Page, ordering ...core.DBOrdering) ([]T, int64, error) {
	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, readErr(err, s.notFound, "counting records")
	}

	page = page.Clean()
	var objs []T
	q := s.orderBy(s.withPreloads(s.filtered(ctx, filter)), ordering)
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&objs).Error; err != nil {
		return nil, 0, readErr(err, s.notFound, "listing records")
	}
	return objs, total, nil
}

func (s *Store[T]) All(ctx context.Context, filter *core.Filter, ordering ...core.DBOrdering) ([]T, error) {
	var objs []T
	q := s.orderBy(s.withPreloads(s.filtered(ctx, filter)), ordering)
	if err := q.Find(&objs).Error; err != nil {
		return nil, readErr(err, s.notFound, "listing records")
	}
	return objs, nil
}
