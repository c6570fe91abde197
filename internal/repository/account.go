package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/marquee/marquee-go/internal/model"
)

// ProviderCredential is the provider id of email/password accounts.
const ProviderCredential = "credential"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already linked")
)

// AccountRepository stores provider identities linked to users.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, account_id, provider_id, user_id, access_token, refresh_token, id_token,
	access_token_expires_at, refresh_token_expires_at, scope, password, created_at, updated_at`

// Create links a new provider identity to a user.
func (r *AccountRepository) Create(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	ts := now()
	a.CreatedAt, a.UpdatedAt = ts, ts

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.AccountID, a.ProviderID, a.UserID,
		nullString(a.AccessToken), nullString(a.RefreshToken), nullString(a.IDToken),
		a.AccessTokenExpiresAt, a.RefreshTokenExpiresAt, nullString(a.Scope), nullString(a.Password),
		a.CreatedAt, a.UpdatedAt,
	)
	if isDuplicateEntryError(err) {
		return ErrDuplicateAccount
	}
	return err
}

// GetByProvider finds the account for a provider identity.
func (r *AccountRepository) GetByProvider(ctx context.Context, providerID, accountID string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE provider_id = ? AND account_id = ?`
	return scanAccount(r.db.QueryRowContext(ctx, query, providerID, accountID))
}

// GetByUser finds the user's account for one provider.
func (r *AccountRepository) GetByUser(ctx context.Context, userID, providerID string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ? AND provider_id = ?`
	return scanAccount(r.db.QueryRowContext(ctx, query, userID, providerID))
}

// ListProviders returns the provider ids linked to a user.
func (r *AccountRepository) ListProviders(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT provider_id FROM accounts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// UpdateTokens stores refreshed provider tokens.
func (r *AccountRepository) UpdateTokens(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = now()
	query := `UPDATE accounts SET access_token = ?, refresh_token = ?, id_token = ?,
		access_token_expires_at = ?, refresh_token_expires_at = ?, scope = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		nullString(a.AccessToken), nullString(a.RefreshToken), nullString(a.IDToken),
		a.AccessTokenExpiresAt, a.RefreshTokenExpiresAt, nullString(a.Scope), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash of a credential account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET password = ?, updated_at = ? WHERE id = ?`, hash, now(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var (
		a                                     model.Account
		access, refresh, idToken, scope, pass sql.NullString
		accessExp, refreshExp                 sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.AccountID, &a.ProviderID, &a.UserID, &access, &refresh, &idToken,
		&accessExp, &refreshExp, &scope, &pass, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	a.AccessToken, a.RefreshToken, a.IDToken = access.String, refresh.String, idToken.String
	a.Scope, a.Password = scope.String, pass.String
	if accessExp.Valid {
		a.AccessTokenExpiresAt = &accessExp.Time
	}
	if refreshExp.Valid {
		a.RefreshTokenExpiresAt = &refreshExp.Time
	}
	return &a, nil
}
