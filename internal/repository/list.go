package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

var ErrListNotFound = errors.New("list not found")

// ListRepository handles custom lists and their items. Mutations carry the
// owner in the same statement, so a list owned by someone else is not found.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a new ListRepository.
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `id, user_id, name, description, emoji, created_at, updated_at`

// Create inserts a new list.
func (r *ListRepository) Create(ctx context.Context, l *model.List) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now()
	}
	l.UpdatedAt = l.CreatedAt

	query := `INSERT INTO lists (` + listColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, l.ID, l.UserID, l.Name, l.Description, l.Emoji, l.CreatedAt, l.UpdatedAt)
	return err
}

// GetByID returns a list owned by userID.
func (r *ListRepository) GetByID(ctx context.Context, userID, listID string) (*model.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE id = ? AND user_id = ?`

	var l model.List
	err := r.db.QueryRowContext(ctx, query, listID, userID).Scan(
		&l.ID, &l.UserID, &l.Name, &l.Description, &l.Emoji, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListByUser returns the user's lists, most recently updated first.
func (r *ListRepository) ListByUser(ctx context.Context, userID string) ([]model.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE user_id = ? ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.Emoji, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// Update writes name, description and emoji of a list owned by l.UserID.
func (r *ListRepository) Update(ctx context.Context, l *model.List) error {
	l.UpdatedAt = now()
	query := `UPDATE lists SET name = ?, description = ?, emoji = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, l.Name, l.Description, l.Emoji, l.UpdatedAt, l.ID, l.UserID)
	return listAffected(result, err)
}

// Delete removes a list owned by userID; its items cascade.
func (r *ListRepository) Delete(ctx context.Context, userID, listID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ? AND user_id = ?`, listID, userID)
	return listAffected(result, err)
}

// AddItem verifies that userID owns the list and inserts the item in one
// transaction. The unique (list, resource) constraint backs the duplicate check.
func (r *ListRepository) AddItem(ctx context.Context, userID string, item *model.ListItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM lists WHERE id = ? AND user_id = ?`, item.ListID, userID).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListNotFound
			}
			return err
		}

		query := `INSERT INTO list_items (id, list_id, resource_id, resource_type, created_at) VALUES (?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, query, item.ID, item.ListID, item.ResourceID, string(item.ResourceType), item.CreatedAt)
		if err != nil {
			if isDuplicateEntryError(err) {
				return ErrDuplicate
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE lists SET updated_at = ? WHERE id = ?`, item.CreatedAt, item.ListID)
		return err
	})
}

// RemoveItem deletes an item from a list owned by userID and reports whether a
// row existed.
func (r *ListRepository) RemoveItem(ctx context.Context, userID, listID string, resourceID int, resourceType model.MediaType) (bool, error) {
	query := `DELETE FROM list_items
		WHERE list_id = ? AND resource_id = ? AND resource_type = ?
		AND list_id IN (SELECT id FROM lists WHERE id = ? AND user_id = ?)`
	result, err := r.db.ExecContext(ctx, query, listID, resourceID, string(resourceType), listID, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// Items returns one page of a list's items, newest first. Callers check
// ownership before reading.
func (r *ListRepository) Items(ctx context.Context, listID string, limit, offset int) ([]model.ListItem, error) {
	query := `SELECT id, list_id, resource_id, resource_type, created_at
		FROM list_items WHERE list_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, listID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.ListItem{}
	for rows.Next() {
		var (
			it model.ListItem
			t  string
		)
		if err := rows.Scan(&it.ID, &it.ListID, &it.ResourceID, &t, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.ResourceType = model.MediaType(t)
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountItems returns the number of items in a list.
func (r *ListRepository) CountItems(ctx context.Context, listID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM list_items WHERE list_id = ?`, listID).Scan(&n)
	return n, err
}

// ItemCounts returns the item count of every list owned by userID, keyed by list id.
func (r *ListRepository) ItemCounts(ctx context.Context, userID string) (map[string]int, error) {
	query := `SELECT l.id, COUNT(i.id) FROM lists l
		LEFT JOIN list_items i ON i.list_id = l.id
		WHERE l.user_id = ? GROUP BY l.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ListsContaining returns the ids of userID's lists that hold the resource.
func (r *ListRepository) ListsContaining(ctx context.Context, userID string, resourceID int, resourceType model.MediaType) ([]string, error) {
	query := `SELECT l.id FROM lists l
		JOIN list_items i ON i.list_id = l.id
		WHERE l.user_id = ? AND i.resource_id = ? AND i.resource_type = ?
		ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, query, userID, resourceID, string(resourceType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func listAffected(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}
