package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

var ErrPasskeyNotFound = errors.New("passkey not found")

// PasskeyRepository reads and removes a user's registered passkeys.
type PasskeyRepository struct {
	db *sql.DB
}

func NewPasskeyRepository(db *sql.DB) *PasskeyRepository {
	return &PasskeyRepository{db: db}
}

// Create stores a registered credential.
func (r *PasskeyRepository) Create(ctx context.Context, p *model.Passkey) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()

	query := `INSERT INTO passkeys (id, name, public_key, user_id, credential_id, counter, device_type, backed_up, transports, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, nullString(p.Name), p.PublicKey, p.UserID, p.CredentialID, p.Counter,
		p.DeviceType, p.BackedUp, nullString(p.Transports), p.CreatedAt,
	)
	return err
}

// ListByUser returns the user's passkeys, newest first.
func (r *PasskeyRepository) ListByUser(ctx context.Context, userID string) ([]model.Passkey, error) {
	query := `SELECT id, name, public_key, user_id, credential_id, counter, device_type, backed_up, transports, created_at
		FROM passkeys WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passkeys := []model.Passkey{}
	for rows.Next() {
		var (
			p                model.Passkey
			name, transports sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &name, &p.PublicKey, &p.UserID, &p.CredentialID, &p.Counter,
			&p.DeviceType, &p.BackedUp, &transports, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Name, p.Transports = name.String, transports.String
		passkeys = append(passkeys, p)
	}
	return passkeys, rows.Err()
}

// Delete removes a passkey owned by userID.
func (r *PasskeyRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM passkeys WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPasskeyNotFound
	}
	return nil
}
