package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstroundai/interviewd/internal/domain"
)

func newInterviewFixture(t *testing.T, ai *fakeAI) (*InterviewService, *memCandidates, *memInterviews, *memEvaluations) {
	t.Helper()
	cfg := testConfig()
	qs, err := NewQuestionService(cfg, ai)
	require.NoError(t, err)
	cands := newMemCandidates()
	ivs := newMemInterviews()
	evals := newMemEvaluations()
	svc := NewInterviewService(cfg, cands, ivs, &memAnswers{}, evals, qs)
	return svc, cands, ivs, evals
}

func seedCandidate(t *testing.T, cands *memCandidates, c domain.Candidate) string {
	t.Helper()
	id, err := cands.Create(context.Background(), c)
	require.NoError(t, err)
	return id
}

func TestStartGeneratesFiveQuestions(t *testing.T) {
	t.Parallel()
	// AI is down; the embedded bank must carry the interview.
	svc, cands, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io", JobRole: "Backend Engineer"})

	iv, c, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, iv.Questions, 5)
	assert.Equal(t, 0, iv.CurrentQuestionIndex)
	assert.Equal(t, domain.InterviewInProgress, iv.Status)
	assert.Equal(t, "Jane", c.Name)
	assert.Contains(t, iv.Questions[0], "Backend Engineer")
}

func TestStartIdempotentWhileInProgress(t *testing.T) {
	t.Parallel()
	svc, cands, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io"})

	first, _, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	second, _, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "restart must return the open interview, not create another")
}

func TestStartRejectsDisqualified(t *testing.T) {
	t.Parallel()
	svc, cands, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io", Disqualified: true})

	_, _, err := svc.Start(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStartRejectsAfterCompletedInterview(t *testing.T) {
	t.Parallel()
	svc, cands, ivs, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io"})
	_, err := ivs.Create(context.Background(), domain.Interview{
		CandidateID: id, Questions: []string{"q"}, Status: domain.InterviewCompleted,
	})
	require.NoError(t, err)

	_, _, err = svc.Start(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStartByEmailUnknownCandidate(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	_, _, err := svc.StartByEmail(context.Background(), "nobody@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInterviewFullLifecycle(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{
		`["Q1?", "Q2?", "Q3?", "Q4?", "Q5?"]`,
		`{"score": 8, "feedback": "solid"}`,
		`{"score": 6, "feedback": "ok"}`,
		`{"score": 7, "feedback": "good"}`,
		`{"score": 9, "feedback": "great"}`,
		`{"score": 5, "feedback": "thin"}`,
		`{"strengths": ["depth"], "improvementAreas": ["brevity"], "recommendation": "Recommended for hire"}`,
	}}
	svc, cands, _, evals := newInterviewFixture(t, ai)
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io", JobRole: "SRE"})

	iv, _, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"}, iv.Questions)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		res, err := svc.SubmitAnswer(ctx, iv.ID, i, "an answer")
		require.NoError(t, err)
		assert.False(t, res.Completed)
		assert.Equal(t, iv.Questions[i+1], res.NextQuestion)
	}

	res, err := svc.SubmitAnswer(ctx, iv.ID, 4, "final answer")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, 70, res.Evaluation.OverallScore)
	assert.Equal(t, 75, res.Evaluation.TechnicalScore)
	assert.Equal(t, 50, res.Evaluation.BehavioralScore)
	assert.Equal(t, []string{"depth"}, res.Evaluation.Strengths)

	// Exactly one evaluation exists and further submissions conflict.
	_, err = evals.GetByInterview(ctx, iv.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, iv.ID, 4, "again")
	assert.ErrorIs(t, err, domain.ErrConflict)

	detail, err := svc.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewCompleted, detail.Interview.Status)
	assert.Len(t, detail.Answers, 5)
	require.NotNil(t, detail.Evaluation)
}

func TestSubmitAnswerRejectsWrongIndex(t *testing.T) {
	t.Parallel()
	svc, cands, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io"})
	iv, _, err := svc.Start(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), iv.ID, 2, "skipping ahead")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.SubmitAnswer(context.Background(), iv.ID, 99, "no such question")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.SubmitAnswer(context.Background(), iv.ID, 0, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSubmitAnswerNeutralScoreWhenAIDown(t *testing.T) {
	t.Parallel()
	svc, cands, _, _ := newInterviewFixture(t, &fakeAI{err: domain.ErrUpstream})
	id := seedCandidate(t, cands, domain.Candidate{Name: "Jane", Email: "j@x.io"})
	iv, _, err := svc.Start(context.Background(), id)
	require.NoError(t, err)

	res, err := svc.SubmitAnswer(context.Background(), iv.ID, 0, "answer text")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, "Answer recorded.", res.Feedback)
}
