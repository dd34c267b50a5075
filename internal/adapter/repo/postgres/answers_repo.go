package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/firstroundai/interviewd/internal/domain"
)

// AnswerRepo persists per-question answers. A unique index on
// (interview_id, question_index) makes duplicate submissions a conflict.
type AnswerRepo struct{ Pool PgxPool }

func NewAnswerRepo(p PgxPool) *AnswerRepo { return &AnswerRepo{Pool: p} }

// Create inserts an answer, returning ErrConflict when the question was
// already answered.
func (r *AnswerRepo) Create(ctx domain.Context, a domain.Answer) (string, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.Create")
	defer span.End()
	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO answers (id, interview_id, question_index, question_text, answer_text, score, feedback, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q, id, a.InterviewID, a.QuestionIndex, a.QuestionText, a.AnswerText, a.Score, a.Feedback, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=answer.create: %w", mapErr(err))
	}
	return id, nil
}

// ListByInterview returns answers ordered by question index.
func (r *AnswerRepo) ListByInterview(ctx domain.Context, interviewID string) ([]domain.Answer, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.ListByInterview")
	defer span.End()
	q := `SELECT id, interview_id, question_index, question_text, answer_text, score, feedback, created_at
	      FROM answers WHERE interview_id=$1 ORDER BY question_index ASC`
	rows, err := r.Pool.Query(ctx, q, interviewID)
	if err != nil {
		return nil, fmt.Errorf("op=answer.list_by_interview: %w", err)
	}
	defer rows.Close()
	var out []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.QuestionIndex, &a.QuestionText, &a.AnswerText, &a.Score, &a.Feedback, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=answer.list_by_interview: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByInterview removes all answers for an interview.
func (r *AnswerRepo) DeleteByInterview(ctx domain.Context, interviewID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM answers WHERE interview_id=$1`, interviewID)
	if err != nil {
		return fmt.Errorf("op=answer.delete_by_interview: %w", err)
	}
	return nil
}
