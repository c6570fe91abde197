package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles login session persistence.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	ts := now()
	s.CreatedAt, s.UpdatedAt = ts, ts

	query := `INSERT INTO sessions (id, token, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Token, s.UserID, s.ExpiresAt.UTC(), nullString(s.IPAddress), nullString(s.UserAgent),
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByToken retrieves a session by its opaque token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	query := `SELECT id, token, user_id, expires_at, ip_address, user_agent, created_at, updated_at
		FROM sessions WHERE token = ?`

	var (
		s         model.Session
		ip, agent sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &ip, &agent, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	s.IPAddress, s.UserAgent = ip.String, agent.String
	return &s, nil
}

// DeleteByToken removes one session. Removing a missing session is not an error.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteByUser removes every session of a user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpired removes sessions that expired before t and reports how many.
func (r *SessionRepository) DeleteExpired(ctx context.Context, t time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
