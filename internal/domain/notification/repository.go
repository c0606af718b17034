package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the durable store for notifications. Counters are always
// recomputed from table state; nothing here keeps a running count.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicateNotification
		}
		return err
	}
	return nil
}

// isDuplicate detects a unique violation on idx_notifications_dedupe across
// drivers: pgconn for PostgreSQL, gorm's translated error where available,
// and the raw message for the modernc sqlite dev path.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// List returns a page ordered by created_at descending. An offset past the
// end yields an empty page, not an error.
func (r *Repository) List(ctx context.Context, userID int64, limit, offset int, unreadOnly bool) ([]Notification, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset)

	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var out []Notification
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count applies the same predicate as List so pagination math stays
// consistent.
func (r *Repository) Count(ctx context.Context, userID int64, unreadOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ?", userID)

	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *Repository) Counts(ctx context.Context, userID int64) (Counts, error) {
	total, err := r.Count(ctx, userID, false)
	if err != nil {
		return Counts{}, err
	}
	unread, err := r.Count(ctx, userID, true)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Total: total, Unread: unread}, nil
}

// MarkAsRead sets read_at on the user's notification. The ownership check
// is part of the query: another user's id behaves exactly like a missing
// one. The `read_at IS NULL` guard makes the write atomic, so an
// already-read notification (including one marked by a concurrent request)
// keeps its original timestamp; 0 affected rows is the idempotent path.
func (r *Repository) MarkAsRead(ctx context.Context, id, userID int64, at time.Time) (*Notification, bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return nil, false, res.Error
	}

	var n Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotificationNotFound
		}
		return nil, false, err
	}

	return &n, res.RowsAffected > 0, nil
}

// MarkAllAsRead stamps every unread notification of the user; returns how
// many were affected (0 when there was nothing to do).
func (r *Repository) MarkAllAsRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

// Delete removes the notification unconditionally. Deleting a missing id is
// not an error: delete is idempotent by policy, the caller only cares that
// the row is gone.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Notification{}).Error
}

// DeleteReadOlderThan is the retention pass: read notifications older than
// the cutoff are removed. Unread ones are kept regardless of age.
func (r *Repository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&Notification{})
	return res.RowsAffected, res.Error
}
