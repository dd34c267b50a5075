package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// InterviewRepo persists interviews. Cursor movement uses optimistic guards
// so concurrent submissions for the same question cannot both win.
type InterviewRepo struct{ Pool PgxPool }

func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

const interviewCols = `id, candidate_id, questions, current_question_index, status, created_at, completed_at`

// Create inserts a new interview and returns its id.
func (r *InterviewRepo) Create(ctx domain.Context, iv domain.Interview) (string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Create")
	defer span.End()
	id := iv.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := iv.Status
	if status == "" {
		status = domain.InterviewInProgress
	}
	q := `INSERT INTO interviews (id, candidate_id, questions, current_question_index, status, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.Pool.Exec(ctx, q, id, iv.CandidateID, iv.Questions, iv.CurrentQuestionIndex, status, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", mapErr(err))
	}
	return id, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()
	q := `SELECT ` + interviewCols + ` FROM interviews WHERE id=$1`
	iv, err := scanInterview(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", mapErr(err))
	}
	return iv, nil
}

// FindByCandidate returns all interviews for a candidate, newest first.
func (r *InterviewRepo) FindByCandidate(ctx domain.Context, candidateID string) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.FindByCandidate")
	defer span.End()
	q := `SELECT ` + interviewCols + ` FROM interviews WHERE candidate_id=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, candidateID)
	if err != nil {
		return nil, fmt.Errorf("op=interview.find_by_candidate: %w", err)
	}
	defer rows.Close()
	var out []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("op=interview.find_by_candidate: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// Advance moves the question cursor from fromIndex to fromIndex+1. The WHERE
// clause pins both status and current index so only one concurrent submitter
// can win; losers get ErrConflict.
func (r *InterviewRepo) Advance(ctx domain.Context, id string, fromIndex int) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Advance")
	defer span.End()
	q := `UPDATE interviews SET current_question_index=$2+1
	      WHERE id=$1 AND status='in-progress' AND current_question_index=$2`
	tag, err := r.Pool.Exec(ctx, q, id, fromIndex)
	if err != nil {
		return fmt.Errorf("op=interview.advance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.advance: %w", domain.ErrConflict)
	}
	return nil
}

// Complete transitions the interview to completed under the same optimistic
// guard as Advance.
func (r *InterviewRepo) Complete(ctx domain.Context, id string, fromIndex int, at time.Time) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Complete")
	defer span.End()
	q := `UPDATE interviews SET status='completed', current_question_index=$2+1, completed_at=$3
	      WHERE id=$1 AND status='in-progress' AND current_question_index=$2`
	tag, err := r.Pool.Exec(ctx, q, id, fromIndex, at.UTC())
	if err != nil {
		return fmt.Errorf("op=interview.complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.complete: %w", domain.ErrConflict)
	}
	return nil
}

// Delete removes an interview; answers and evaluation cascade.
func (r *InterviewRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM interviews WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=interview.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// List returns all interviews, newest first.
func (r *InterviewRepo) List(ctx domain.Context) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.List")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+interviewCols+` FROM interviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// CountByStatus counts interviews in the given status.
func (r *InterviewRepo) CountByStatus(ctx domain.Context, status domain.InterviewStatus) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM interviews WHERE status=$1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=interview.count_by_status: %w", err)
	}
	return n, nil
}

func scanInterview(row rowScanner) (domain.Interview, error) {
	var iv domain.Interview
	err := row.Scan(&iv.ID, &iv.CandidateID, &iv.Questions, &iv.CurrentQuestionIndex, &iv.Status, &iv.CreatedAt, &iv.CompletedAt)
	return iv, err
}
