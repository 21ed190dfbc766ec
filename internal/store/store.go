// Package store is the record store adapter: generic create/read/update/
// delete/list over named collections. It is deliberately narrow — no
// multi-record atomicity, no server-side counters — so everything built on
// top of it has to live with read-modify-write semantics.
package store

import (
	"context"
	stderrors "errors"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/metrics"
	"gorm.io/gorm"
)

// Query describes filter/sort/paginate parameters for a List call.
type Query struct {
	// Filters are exact-match conditions, column -> value.
	Filters map[string]interface{}
	// In are membership conditions, column -> allowed values.
	In map[string][]interface{}
	// OrderBy is a raw order clause, e.g. "timestamp DESC".
	OrderBy string
	// Page is 1-based; PageSize of 0 disables pagination.
	Page     int
	PageSize int
}

// Store adapts a gorm connection to the record store contract.
type Store struct {
	db *gorm.DB
}

// New wraps db in a record store adapter.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for migrations and seeding only;
// services go through the adapter methods.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// failure counts the failed operation and maps the driver error into
// the taxonomy.
func failure(op string, err error) error {
	metrics.Get().StoreFailuresTotal.WithLabelValues(op).Inc()
	return errors.StoreFailure(op).WithCause(err)
}

func (s *Store) apply(q Query) *gorm.DB {
	tx := s.db
	for col, val := range q.Filters {
		tx = tx.Where(col+" = ?", val)
	}
	for col, vals := range q.In {
		tx = tx.Where(col+" IN ?", vals)
	}
	if q.OrderBy != "" {
		tx = tx.Order(q.OrderBy)
	}
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.PageSize).Limit(q.PageSize)
	}
	return tx
}

// List fetches records from dest's collection into dest (a slice pointer).
func (s *Store) List(ctx context.Context, dest interface{}, q Query) error {
	if err := s.apply(q).WithContext(ctx).Find(dest).Error; err != nil {
		return failure("list", err)
	}
	return nil
}

// GetByID fetches one record by primary key into dest.
func (s *Store) GetByID(ctx context.Context, dest interface{}, id int64) error {
	err := s.db.WithContext(ctx).First(dest, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("record").WithCause(err)
		}
		return failure("get", err)
	}
	return nil
}

// Create inserts record, filling its primary key.
func (s *Store) Create(ctx context.Context, record interface{}) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return failure("create", err)
	}
	return nil
}

// Update writes partial fields to the record with the given id.
// Returns NotFound when no row matched.
func (s *Store) Update(ctx context.Context, model interface{}, id int64, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return failure("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("record")
	}
	return nil
}

// Delete removes the records with the given ids. Missing ids are ignored,
// matching the store's bulk-delete semantics.
func (s *Store) Delete(ctx context.Context, model interface{}, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(model, "id IN ?", ids).Error; err != nil {
		return failure("delete", err)
	}
	return nil
}

// UpdateWhere sets fields on every record matching the query's filters.
// Matching nothing is not an error.
func (s *Store) UpdateWhere(ctx context.Context, model interface{}, q Query, fields map[string]interface{}) error {
	tx := s.db.WithContext(ctx).Model(model)
	for col, val := range q.Filters {
		tx = tx.Where(col+" = ?", val)
	}
	for col, vals := range q.In {
		tx = tx.Where(col+" IN ?", vals)
	}
	if err := tx.Updates(fields).Error; err != nil {
		return failure("update", err)
	}
	return nil
}

// DeleteWhere removes records matching the query's filters.
func (s *Store) DeleteWhere(ctx context.Context, model interface{}, q Query) error {
	tx := s.db.WithContext(ctx)
	for col, val := range q.Filters {
		tx = tx.Where(col+" = ?", val)
	}
	for col, vals := range q.In {
		tx = tx.Where(col+" IN ?", vals)
	}
	if err := tx.Delete(model).Error; err != nil {
		return failure("delete", err)
	}
	return nil
}

// GetFields reads the named columns of one record into a map.
// Returns NotFound when the record does not exist.
func (s *Store) GetFields(ctx context.Context, model interface{}, id int64, fields ...string) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	err := s.db.WithContext(ctx).Model(model).Select(fields).Where("id = ?", id).Take(&result).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("record").WithCause(err)
		}
		return nil, failure("get", err)
	}
	return result, nil
}

// Count returns how many records match the query's filters.
func (s *Store) Count(ctx context.Context, model interface{}, q Query) (int64, error) {
	tx := s.db.WithContext(ctx).Model(model)
	for col, val := range q.Filters {
		tx = tx.Where(col+" = ?", val)
	}
	for col, vals := range q.In {
		tx = tx.Where(col+" IN ?", vals)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, failure("count", err)
	}
	return count, nil
}
