package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// PreferenceRepository stores a user's preferred streaming providers.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ProviderIDs returns the user's preferred provider ids in ascending order.
func (r *PreferenceRepository) ProviderIDs(ctx context.Context, userID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT provider_id FROM user_watch_providers WHERE user_id = ? ORDER BY provider_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceProviders makes providerIDs the user's full preference set in one
// transaction: rows outside the set are deleted, missing ones inserted.
func (r *PreferenceRepository) ReplaceProviders(ctx context.Context, userID string, providerIDs []int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		wanted := make(map[int]bool, len(providerIDs))
		args := []any{userID}
		for _, id := range providerIDs {
			if !wanted[id] {
				wanted[id] = true
				args = append(args, id)
			}
		}

		del := `DELETE FROM user_watch_providers WHERE user_id = ?`
		if len(args) > 1 {
			del += ` AND provider_id NOT IN (` + placeholders(len(args)-1) + `)`
		}
		if _, err := tx.ExecContext(ctx, del, args...); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT provider_id FROM user_watch_providers WHERE user_id = ?`, userID)
		if err != nil {
			return err
		}
		existing := make(map[int]bool)
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			existing[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		ts := now()
		for _, arg := range args[1:] {
			id := arg.(int)
			if existing[id] {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO user_watch_providers (id, user_id, provider_id, created_at) VALUES (?, ?, ?, ?)`,
				uuid.NewString(), userID, id, ts,
			)
			if err != nil && !isDuplicateEntryError(err) {
				return err
			}
		}
		return nil
	})
}
