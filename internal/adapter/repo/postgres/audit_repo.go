package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// AuditLogRepo records destructive admin actions for later review.
type AuditLogRepo struct{ Pool PgxPool }

func NewAuditLogRepo(p PgxPool) *AuditLogRepo { return &AuditLogRepo{Pool: p} }

// Create appends an audit entry.
func (r *AuditLogRepo) Create(ctx domain.Context, l domain.AuditLog) (string, error) {
	tracer := otel.Tracer("repo.audit")
	ctx, span := tracer.Start(ctx, "audit.Create")
	defer span.End()
	id := l.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO audit_logs (id, action, target, performed_by, created_at) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.Pool.Exec(ctx, q, id, l.Action, l.Target, l.PerformedBy, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=audit.create: %w", err)
	}
	return id, nil
}

// List returns audit entries newest first, optionally filtered by action
// and/or performer. Empty filters match everything.
func (r *AuditLogRepo) List(ctx domain.Context, action, performedBy string) ([]domain.AuditLog, error) {
	tracer := otel.Tracer("repo.audit")
	ctx, span := tracer.Start(ctx, "audit.List")
	defer span.End()
	q := `SELECT id, action, target, performed_by, created_at FROM audit_logs
	      WHERE ($1 = '' OR action = $1) AND ($2 = '' OR performed_by = $2)
	      ORDER BY created_at DESC LIMIT 500`
	rows, err := r.Pool.Query(ctx, q, action, performedBy)
	if err != nil {
		return nil, fmt.Errorf("op=audit.list: %w", err)
	}
	defer rows.Close()
	var out []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Target, &l.PerformedBy, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=audit.list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
