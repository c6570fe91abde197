package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

// ErrDuplicate is returned when a unique (owner, resource) pair already exists.
var ErrDuplicate = errors.New("duplicate entry")

// WatchlistRepository handles watchlist persistence operations. Every query is
// scoped to one user.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts an entry. The (user, resource id, resource type) triple is unique.
func (r *WatchlistRepository) Add(ctx context.Context, e *model.WatchlistEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}

	query := `INSERT INTO watchlist (id, user_id, resource_id, resource_type, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.ResourceID, string(e.ResourceType), e.CreatedAt)
	if isDuplicateEntryError(err) {
		return ErrDuplicate
	}
	return err
}

// Remove deletes an entry and reports whether a row existed.
func (r *WatchlistRepository) Remove(ctx context.Context, userID string, resourceID int, resourceType model.MediaType) (bool, error) {
	query := `DELETE FROM watchlist WHERE user_id = ? AND resource_id = ? AND resource_type = ?`
	result, err := r.db.ExecContext(ctx, query, userID, resourceID, string(resourceType))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// Exists reports whether the resource is in the user's watchlist.
func (r *WatchlistRepository) Exists(ctx context.Context, userID string, resourceID int, resourceType model.MediaType) (bool, error) {
	query := `SELECT 1 FROM watchlist WHERE user_id = ? AND resource_id = ? AND resource_type = ?`
	var one int
	err := r.db.QueryRowContext(ctx, query, userID, resourceID, string(resourceType)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListByUser returns every entry of a user, newest first.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	query := `SELECT id, user_id, resource_id, resource_type, created_at
		FROM watchlist WHERE user_id = ? ORDER BY created_at DESC, id`
	return r.query(ctx, query, userID)
}

// ListByType returns one page of a user's entries of a single type, newest first.
func (r *WatchlistRepository) ListByType(ctx context.Context, userID string, resourceType model.MediaType, limit, offset int) ([]model.WatchlistEntry, error) {
	query := `SELECT id, user_id, resource_id, resource_type, created_at
		FROM watchlist WHERE user_id = ? AND resource_type = ?
		ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	return r.query(ctx, query, userID, string(resourceType), limit, offset)
}

// CountByType returns the number of entries per resource type.
func (r *WatchlistRepository) CountByType(ctx context.Context, userID string) (map[model.MediaType]int, error) {
	query := `SELECT resource_type, COUNT(*) FROM watchlist WHERE user_id = ? GROUP BY resource_type`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.MediaType]int)
	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[model.MediaType(t)] = n
	}
	return counts, rows.Err()
}

func (r *WatchlistRepository) query(ctx context.Context, query string, args ...any) ([]model.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.WatchlistEntry{}
	for rows.Next() {
		var (
			e model.WatchlistEntry
			t string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ResourceID, &t, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ResourceType = model.MediaType(t)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
