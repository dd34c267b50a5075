package postgres

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// PasswordResetRepo persists single-use password reset tokens.
type PasswordResetRepo struct{ Pool PgxPool }

func NewPasswordResetRepo(p PgxPool) *PasswordResetRepo { return &PasswordResetRepo{Pool: p} }

// Create stores a reset token with its expiry.
func (r *PasswordResetRepo) Create(ctx domain.Context, pr domain.PasswordReset) error {
	tracer := otel.Tracer("repo.password_resets")
	ctx, span := tracer.Start(ctx, "password_resets.Create")
	defer span.End()
	q := `INSERT INTO password_resets (token, email, expires_at) VALUES ($1,$2,$3)`
	_, err := r.Pool.Exec(ctx, q, pr.Token, pr.Email, pr.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("op=password_reset.create: %w", mapErr(err))
	}
	return nil
}

// Get loads a reset token.
func (r *PasswordResetRepo) Get(ctx domain.Context, token string) (domain.PasswordReset, error) {
	tracer := otel.Tracer("repo.password_resets")
	ctx, span := tracer.Start(ctx, "password_resets.Get")
	defer span.End()
	q := `SELECT token, email, expires_at, used_at FROM password_resets WHERE token=$1`
	var pr domain.PasswordReset
	err := r.Pool.QueryRow(ctx, q, token).Scan(&pr.Token, &pr.Email, &pr.ExpiresAt, &pr.UsedAt)
	if err != nil {
		return domain.PasswordReset{}, fmt.Errorf("op=password_reset.get: %w", mapErr(err))
	}
	return pr, nil
}

// MarkUsed consumes a token. Consuming an already-used token is a conflict.
func (r *PasswordResetRepo) MarkUsed(ctx domain.Context, token string) error {
	tracer := otel.Tracer("repo.password_resets")
	ctx, span := tracer.Start(ctx, "password_resets.MarkUsed")
	defer span.End()
	q := `UPDATE password_resets SET used_at=$2 WHERE token=$1 AND used_at IS NULL`
	tag, err := r.Pool.Exec(ctx, q, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=password_reset.mark_used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=password_reset.mark_used: %w", domain.ErrConflict)
	}
	return nil
}
