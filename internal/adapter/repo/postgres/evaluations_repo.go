package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// EvaluationRepo persists final evaluations. A unique index on interview_id
// enforces at most one evaluation per interview.
type EvaluationRepo struct{ Pool PgxPool }

func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

// Create inserts the evaluation, returning ErrConflict when one already
// exists for the interview.
func (r *EvaluationRepo) Create(ctx domain.Context, e domain.Evaluation) (string, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.Create")
	defer span.End()
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO evaluations (id, interview_id, overall_score, technical_score, behavioral_score, strengths, improvement_areas, recommendation, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, e.InterviewID, e.OverallScore, e.TechnicalScore, e.BehavioralScore, e.Strengths, e.ImprovementAreas, e.Recommendation, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=evaluation.create: %w", mapErr(err))
	}
	return id, nil
}

// GetByInterview loads the evaluation for an interview.
func (r *EvaluationRepo) GetByInterview(ctx domain.Context, interviewID string) (domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.GetByInterview")
	defer span.End()
	q := `SELECT id, interview_id, overall_score, technical_score, behavioral_score, strengths, improvement_areas, recommendation, created_at
	      FROM evaluations WHERE interview_id=$1`
	var e domain.Evaluation
	err := r.Pool.QueryRow(ctx, q, interviewID).Scan(
		&e.ID, &e.InterviewID, &e.OverallScore, &e.TechnicalScore, &e.BehavioralScore,
		&e.Strengths, &e.ImprovementAreas, &e.Recommendation, &e.CreatedAt)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=evaluation.get_by_interview: %w", mapErr(err))
	}
	return e, nil
}

// DeleteByInterview removes the evaluation for an interview.
func (r *EvaluationRepo) DeleteByInterview(ctx domain.Context, interviewID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM evaluations WHERE interview_id=$1`, interviewID)
	if err != nil {
		return fmt.Errorf("op=evaluation.delete_by_interview: %w", err)
	}
	return nil
}
