package activity

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) Create(ctx context.Context, a *Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// filtered builds the shared predicate. List and Count both go through it,
// which is what keeps hasMore = offset + len(page) < total true for every
// filter combination.
func (r *Repository) filtered(ctx context.Context, userID int64, f Filters) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&Activity{}).
		Where("user_id = ?", userID)

	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("created_at <= ?", *f.DateTo)
	}

	return q
}

// List returns a page ordered by created_at descending. An offset past the
// end yields an empty page.
func (r *Repository) List(ctx context.Context, userID int64, f Filters) ([]Activity, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var out []Activity
	err := r.filtered(ctx, userID, f).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count applies the identical predicate as List.
func (r *Repository) Count(ctx context.Context, userID int64, f Filters) (int64, error) {
	var count int64
	err := r.filtered(ctx, userID, f).Count(&count).Error
	return count, err
}
