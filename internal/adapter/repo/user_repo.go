package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// UserRepositoryPG persists operator accounts and rater sessions.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a user repository backed by PostgreSQL.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// FindByUsername fetches one account or domain.ErrNotFound.
func (r *UserRepositoryPG) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.sql.QueryRow(ctx, sqlinline.QSelectUserByUsername, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// EnsureAdmin creates the admin account on first boot. Existing accounts are
// left untouched.
func (r *UserRepositoryPG) EnsureAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertAdminUser, username, string(hash))
	return err
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)

// SessionRepositoryPG tracks anonymous rater sessions.
type SessionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSessionRepository creates a session repository backed by PostgreSQL.
func NewSessionRepository(sql infra.SQLExecutor) *SessionRepositoryPG {
	return &SessionRepositoryPG{sql: sql}
}

// Touch upserts a session's last-seen timestamp. A nil country keeps any
// previously resolved one.
func (r *SessionRepositoryPG) Touch(ctx context.Context, sessionID string, country *string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QTouchSession, sessionID, country)
	return err
}

var _ domain.SessionRepository = (*SessionRepositoryPG)(nil)
