package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// CandidateRepo persists and loads candidates from PostgreSQL.
type CandidateRepo struct{ Pool PgxPool }

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

const candidateCols = `id, name, email, phone, job_role, resume_text, invited, disqualified, created_at, updated_at`

// Create inserts a new candidate and returns its id.
func (r *CandidateRepo) Create(ctx domain.Context, c domain.Candidate) (string, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Create")
	defer span.End()
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO candidates (id, name, email, phone, job_role, resume_text, invited, disqualified, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.Pool.Exec(ctx, q, id, c.Name, c.Email, c.Phone, c.JobRole, c.ResumeText, c.Invited, c.Disqualified, now, now)
	if err != nil {
		return "", fmt.Errorf("op=candidate.create: %w", mapErr(err))
	}
	return id, nil
}

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Get")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE id=$1`
	c, err := scanCandidate(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", mapErr(err))
	}
	return c, nil
}

// FindByEmail returns candidates with the given email, newest first.
// Email is a lookup key, not a uniqueness constraint.
func (r *CandidateRepo) FindByEmail(ctx domain.Context, email string) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.FindByEmail")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE email=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, email)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.find_by_email: %w", err)
	}
	defer rows.Close()
	var out []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("op=candidate.find_by_email: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable candidate fields.
func (r *CandidateRepo) Update(ctx domain.Context, c domain.Candidate) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Update")
	defer span.End()
	q := `UPDATE candidates SET name=$2, phone=$3, job_role=$4, resume_text=$5, invited=$6, updated_at=$7 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, c.ID, c.Name, c.Phone, c.JobRole, c.ResumeText, c.Invited, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Disqualify sets the disqualified flag. The flag is never cleared.
func (r *CandidateRepo) Disqualify(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Disqualify")
	defer span.End()
	q := `UPDATE candidates SET disqualified=TRUE, updated_at=$2 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.disqualify: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.disqualify: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a candidate; interviews, answers and evaluations cascade
// via foreign keys.
func (r *CandidateRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM candidates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=candidate.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// List returns all candidates, newest first.
func (r *CandidateRepo) List(ctx domain.Context) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.List")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+candidateCols+` FROM candidates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("op=candidate.list: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the total number of candidates.
func (r *CandidateRepo) Count(ctx domain.Context) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=candidate.count: %w", err)
	}
	return n, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCandidate(row rowScanner) (domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.JobRole, &c.ResumeText, &c.Invited, &c.Disqualified, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
