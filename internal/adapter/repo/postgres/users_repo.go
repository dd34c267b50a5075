package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// UserRepo persists authentication principals. Email is unique.
type UserRepo struct{ Pool PgxPool }

func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

// Create inserts a user, returning ErrConflict when the email is taken.
func (r *UserRepo) Create(ctx domain.Context, u domain.User) (string, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Create")
	defer span.End()
	id := u.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO users (id, email, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.Pool.Exec(ctx, q, id, u.Email, u.PasswordHash, u.Role, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=user.create: %w", mapErr(err))
	}
	return id, nil
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx domain.Context, email string) (domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.GetByEmail")
	defer span.End()
	q := `SELECT id, email, password_hash, role, created_at FROM users WHERE email=$1`
	var u domain.User
	err := r.Pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("op=user.get_by_email: %w", mapErr(err))
	}
	return u, nil
}

// UpdatePassword replaces the stored password hash for an email.
func (r *UserRepo) UpdatePassword(ctx domain.Context, email, passwordHash string) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.UpdatePassword")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET password_hash=$2 WHERE email=$1`, email, passwordHash)
	if err != nil {
		return fmt.Errorf("op=user.update_password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.update_password: %w", domain.ErrNotFound)
	}
	return nil
}

// DeleteByEmail removes a user account.
func (r *UserRepo) DeleteByEmail(ctx domain.Context, email string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM users WHERE email=$1`, email)
	if err != nil {
		return fmt.Errorf("op=user.delete_by_email: %w", err)
	}
	return nil
}
