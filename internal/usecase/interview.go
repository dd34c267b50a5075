// Package usecase contains the application services: interview lifecycle,
// invitations, authentication, resume upload, scoring, and admin operations.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firstroundai/interviewd/internal/adapter/observability"
	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// InterviewService owns the interview state machine: one in-progress
// interview per candidate at a time, at most one completed interview per
// candidate ever, and disqualification overriding every path.
type InterviewService struct {
	cfg         config.Config
	candidates  domain.CandidateRepository
	interviews  domain.InterviewRepository
	answers     domain.AnswerRepository
	evaluations domain.EvaluationRepository
	questions   *QuestionService
}

// NewInterviewService wires the state machine to its stores and the
// question collaborator.
func NewInterviewService(cfg config.Config, candidates domain.CandidateRepository, interviews domain.InterviewRepository, answers domain.AnswerRepository, evaluations domain.EvaluationRepository, questions *QuestionService) *InterviewService {
	return &InterviewService{
		cfg:         cfg,
		candidates:  candidates,
		interviews:  interviews,
		answers:     answers,
		evaluations: evaluations,
		questions:   questions,
	}
}

// Start creates (or idempotently returns) the candidate's in-progress
// interview. Disqualified candidates and candidates with a completed
// interview are rejected with ErrConflict.
func (s *InterviewService) Start(ctx domain.Context, candidateID string) (domain.Interview, domain.Candidate, error) {
	c, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return domain.Interview{}, domain.Candidate{}, err
	}
	if c.Disqualified {
		return domain.Interview{}, domain.Candidate{}, fmt.Errorf("%w: candidate is disqualified", domain.ErrConflict)
	}

	existing, err := s.interviews.FindByCandidate(ctx, candidateID)
	if err != nil {
		return domain.Interview{}, domain.Candidate{}, err
	}
	for _, iv := range existing {
		if iv.Status == domain.InterviewCompleted {
			return domain.Interview{}, domain.Candidate{}, fmt.Errorf("%w: candidate already completed an interview", domain.ErrConflict)
		}
	}
	for _, iv := range existing {
		if iv.Status == domain.InterviewInProgress {
			// Idempotent restart: hand the open interview back unchanged.
			return iv, c, nil
		}
	}

	qs := s.questions.Generate(ctx, c.JobRole, "", c.ResumeText)
	iv := domain.Interview{
		CandidateID:          candidateID,
		Questions:            qs,
		CurrentQuestionIndex: 0,
		Status:               domain.InterviewInProgress,
	}
	id, err := s.interviews.Create(ctx, iv)
	if err != nil {
		return domain.Interview{}, domain.Candidate{}, err
	}
	iv.ID = id
	observability.InterviewsStartedTotal.Inc()
	slog.Info("interview started", slog.String("interview_id", id), slog.String("candidate_id", candidateID))
	return iv, c, nil
}

// StartByEmail starts an interview for a pre-profiled candidate looked up
// by email (the invited path). Unknown emails return ErrNotFound.
func (s *InterviewService) StartByEmail(ctx domain.Context, email string) (domain.Interview, domain.Candidate, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.Interview{}, domain.Candidate{}, fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
	}
	cands, err := s.candidates.FindByEmail(ctx, email)
	if err != nil {
		return domain.Interview{}, domain.Candidate{}, err
	}
	if len(cands) == 0 {
		return domain.Interview{}, domain.Candidate{}, fmt.Errorf("%w: no candidate for email", domain.ErrNotFound)
	}
	// Newest candidate record wins when repeat uploads created several.
	return s.Start(ctx, cands[0].ID)
}

// SubmitResult is the outcome of one answer submission.
type SubmitResult struct {
	Score        int
	Feedback     string
	Completed    bool
	NextQuestion string
	Evaluation   *domain.Evaluation
}

// SubmitAnswer scores and records one answer, then either advances the
// cursor or completes the interview and writes the evaluation. Concurrent
// duplicate submissions lose the optimistic guard and get ErrConflict.
func (s *InterviewService) SubmitAnswer(ctx domain.Context, interviewID string, questionIndex int, answerText string) (SubmitResult, error) {
	if strings.TrimSpace(answerText) == "" {
		return SubmitResult{}, fmt.Errorf("%w: answer text is required", domain.ErrInvalidArgument)
	}
	iv, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return SubmitResult{}, err
	}
	if iv.Status == domain.InterviewCompleted {
		return SubmitResult{}, fmt.Errorf("%w: interview already completed", domain.ErrConflict)
	}
	if questionIndex < 0 || questionIndex >= len(iv.Questions) {
		return SubmitResult{}, fmt.Errorf("%w: question index out of range", domain.ErrInvalidArgument)
	}
	if questionIndex != iv.CurrentQuestionIndex {
		return SubmitResult{}, fmt.Errorf("%w: question %d is not the current question", domain.ErrConflict, questionIndex)
	}

	// Scoring happens before any write so a provider stall never holds a
	// transaction open.
	score, feedback := s.questions.Score(ctx, iv.Questions[questionIndex], answerText)
	observability.AnswerScoreHistogram.Observe(float64(score))

	if _, err := s.answers.Create(ctx, domain.Answer{
		InterviewID:   interviewID,
		QuestionIndex: questionIndex,
		QuestionText:  iv.Questions[questionIndex],
		AnswerText:    answerText,
		Score:         score,
		Feedback:      feedback,
	}); err != nil {
		return SubmitResult{}, err
	}

	last := questionIndex+1 == len(iv.Questions)
	if !last {
		if err := s.interviews.Advance(ctx, interviewID, questionIndex); err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{
			Score:        score,
			Feedback:     feedback,
			NextQuestion: iv.Questions[questionIndex+1],
		}, nil
	}

	if err := s.interviews.Complete(ctx, interviewID, questionIndex, time.Now().UTC()); err != nil {
		return SubmitResult{}, err
	}
	ev, err := s.finishInterview(ctx, interviewID)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		Score:      score,
		Feedback:   feedback,
		Completed:  true,
		Evaluation: &ev,
	}, nil
}

// finishInterview aggregates all answer scores and persists the single
// evaluation for the interview.
func (s *InterviewService) finishInterview(ctx domain.Context, interviewID string) (domain.Evaluation, error) {
	answers, err := s.answers.ListByInterview(ctx, interviewID)
	if err != nil {
		return domain.Evaluation{}, err
	}
	scores := make([]int, len(answers))
	for i, a := range answers {
		scores[i] = a.Score
	}
	overall, technical, behavioral := Aggregate(scores, s.cfg.TechnicalAnswers)
	sum := s.questions.Summarize(ctx, answers, overall)

	ev := domain.Evaluation{
		InterviewID:      interviewID,
		OverallScore:     overall,
		TechnicalScore:   technical,
		BehavioralScore:  behavioral,
		Strengths:        sum.Strengths,
		ImprovementAreas: sum.ImprovementAreas,
		Recommendation:   sum.Recommendation,
	}
	id, err := s.evaluations.Create(ctx, ev)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent completion already wrote it; return the winner.
			return s.evaluations.GetByInterview(ctx, interviewID)
		}
		return domain.Evaluation{}, err
	}
	ev.ID = id
	observability.InterviewsCompletedTotal.Inc()
	observability.OverallScoreHistogram.Observe(float64(overall))
	slog.Info("interview completed",
		slog.String("interview_id", interviewID),
		slog.Int("overall_score", overall))
	return ev, nil
}

// Detail is the full read-model for one interview.
type Detail struct {
	Interview  domain.Interview
	Candidate  domain.Candidate
	Answers    []domain.Answer
	Evaluation *domain.Evaluation
}

// Get loads the interview with its candidate, answers, and evaluation (when
// completed).
func (s *InterviewService) Get(ctx domain.Context, interviewID string) (Detail, error) {
	iv, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return Detail{}, err
	}
	c, err := s.candidates.Get(ctx, iv.CandidateID)
	if err != nil {
		return Detail{}, err
	}
	answers, err := s.answers.ListByInterview(ctx, interviewID)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Interview: iv, Candidate: c, Answers: answers}
	if iv.Status == domain.InterviewCompleted {
		ev, err := s.evaluations.GetByInterview(ctx, interviewID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return Detail{}, err
		}
		if err == nil {
			d.Evaluation = &ev
		}
	}
	return d, nil
}

// ResultsByEmail returns the completed-interview detail for a candidate,
// looked up by email. Used by the candidate results page.
func (s *InterviewService) ResultsByEmail(ctx domain.Context, email string) (Detail, error) {
	cands, err := s.candidates.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return Detail{}, err
	}
	for _, c := range cands {
		ivs, err := s.interviews.FindByCandidate(ctx, c.ID)
		if err != nil {
			return Detail{}, err
		}
		for _, iv := range ivs {
			if iv.Status == domain.InterviewCompleted {
				return s.Get(ctx, iv.ID)
			}
		}
	}
	return Detail{}, fmt.Errorf("%w: no completed interview for email", domain.ErrNotFound)
}

// ResultsByCandidate returns the completed-interview detail for a candidate
// id.
func (s *InterviewService) ResultsByCandidate(ctx domain.Context, candidateID string) (Detail, error) {
	ivs, err := s.interviews.FindByCandidate(ctx, candidateID)
	if err != nil {
		return Detail{}, err
	}
	for _, iv := range ivs {
		if iv.Status == domain.InterviewCompleted {
			return s.Get(ctx, iv.ID)
		}
	}
	return Detail{}, fmt.Errorf("%w: no completed interview for candidate", domain.ErrNotFound)
}
