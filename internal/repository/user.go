package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, email_verified, image, region, is_anonymous, created_at, updated_at`

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Region == "" {
		user.Region = "US"
	}
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, nullString(user.Email), user.EmailVerified, nullString(user.Image),
		user.Region, user.IsAnonymous, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile writes the mutable profile fields of user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = now()
	query := `UPDATE users SET name = ?, image = ?, email_verified = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, query, user.Name, nullString(user.Image), user.EmailVerified, user.UpdatedAt, user.ID)
}

// Promote turns the anonymous user with user.ID into a regular one in place,
// keeping its watchlist and lists.
func (r *UserRepository) Promote(ctx context.Context, user *model.User) error {
	user.IsAnonymous = false
	user.UpdatedAt = now()
	query := `UPDATE users SET name = ?, email = ?, email_verified = ?, image = ?, is_anonymous = FALSE, updated_at = ?
		WHERE id = ? AND is_anonymous = TRUE`
	err := r.execOne(ctx, query,
		user.Name, nullString(user.Email), user.EmailVerified, nullString(user.Image), user.UpdatedAt, user.ID,
	)
	if isDuplicateEntryError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetRegion returns the user's stored region code.
func (r *UserRepository) GetRegion(ctx context.Context, id string) (string, error) {
	var region string
	err := r.db.QueryRowContext(ctx, `SELECT region FROM users WHERE id = ?`, id).Scan(&region)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return region, err
}

// SetRegion updates the user's region code.
func (r *UserRepository) SetRegion(ctx context.Context, id, region string) error {
	return r.execOne(ctx, `UPDATE users SET region = ?, updated_at = ? WHERE id = ?`, region, now(), id)
}

// Delete removes a user; sessions, accounts and library rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user         model.User
		email, image sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.Name, &email, &user.EmailVerified, &image,
		&user.Region, &user.IsAnonymous, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Email = email.String
	user.Image = image.String
	return &user, nil
}
