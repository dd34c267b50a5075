package postgres

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// SettingRepo is a simple key/value store for runtime settings such as the
// active AI provider.
type SettingRepo struct{ Pool PgxPool }

func NewSettingRepo(p PgxPool) *SettingRepo { return &SettingRepo{Pool: p} }

// Get returns the value for key, or ErrNotFound.
func (r *SettingRepo) Get(ctx domain.Context, key string) (string, error) {
	tracer := otel.Tracer("repo.settings")
	ctx, span := tracer.Start(ctx, "settings.Get")
	defer span.End()
	var v string
	err := r.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("op=setting.get: %w", mapErr(err))
	}
	return v, nil
}

// Set upserts the value for key.
func (r *SettingRepo) Set(ctx domain.Context, key, value string) error {
	tracer := otel.Tracer("repo.settings")
	ctx, span := tracer.Start(ctx, "settings.Set")
	defer span.End()
	q := `INSERT INTO settings (key, value, updated_at) VALUES ($1,$2,$3)
	      ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`
	_, err := r.Pool.Exec(ctx, q, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=setting.set: %w", err)
	}
	return nil
}
