package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// InvitationRepo persists invitations keyed by their one-time token.
type InvitationRepo struct{ Pool PgxPool }

func NewInvitationRepo(p PgxPool) *InvitationRepo { return &InvitationRepo{Pool: p} }

// Create inserts an invitation and returns its id.
func (r *InvitationRepo) Create(ctx domain.Context, inv domain.Invitation) (string, error) {
	tracer := otel.Tracer("repo.invitations")
	ctx, span := tracer.Start(ctx, "invitations.Create")
	defer span.End()
	id := inv.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := inv.Status
	if status == "" {
		status = domain.InvitationPending
	}
	q := `INSERT INTO invitations (id, candidate_id, email, token, job_role, skillset, status, candidate_info, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, inv.CandidateID, inv.Email, inv.Token, inv.JobRole, inv.Skillset, status, inv.CandidateInfo, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=invitation.create: %w", mapErr(err))
	}
	return id, nil
}

// GetByToken loads an invitation by its token.
func (r *InvitationRepo) GetByToken(ctx domain.Context, token string) (domain.Invitation, error) {
	tracer := otel.Tracer("repo.invitations")
	ctx, span := tracer.Start(ctx, "invitations.GetByToken")
	defer span.End()
	q := `SELECT id, candidate_id, email, token, job_role, skillset, status, candidate_info, created_at
	      FROM invitations WHERE token=$1`
	var inv domain.Invitation
	err := r.Pool.QueryRow(ctx, q, token).Scan(
		&inv.ID, &inv.CandidateID, &inv.Email, &inv.Token, &inv.JobRole, &inv.Skillset,
		&inv.Status, &inv.CandidateInfo, &inv.CreatedAt)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("op=invitation.get_by_token: %w", mapErr(err))
	}
	return inv, nil
}

// UpdateStatus sets the invitation status for a token.
func (r *InvitationRepo) UpdateStatus(ctx domain.Context, token string, status domain.InvitationStatus) error {
	tracer := otel.Tracer("repo.invitations")
	ctx, span := tracer.Start(ctx, "invitations.UpdateStatus")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE invitations SET status=$2 WHERE token=$1`, token, status)
	if err != nil {
		return fmt.Errorf("op=invitation.update_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=invitation.update_status: %w", domain.ErrNotFound)
	}
	return nil
}

// CountByStatus counts invitations in the given status.
func (r *InvitationRepo) CountByStatus(ctx domain.Context, status domain.InvitationStatus) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM invitations WHERE status=$1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=invitation.count_by_status: %w", err)
	}
	return n, nil
}
