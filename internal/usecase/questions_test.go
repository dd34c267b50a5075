package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstroundai/interviewd/internal/domain"
)

func TestGenerateUsesProviderQuestions(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{
		"Here you go:\n[\"Q1?\", \"Q2?\", \"Q3?\", \"Q4?\", \"Q5?\", \"Q6?\"]",
	}}
	qs, err := NewQuestionService(testConfig(), ai)
	require.NoError(t, err)

	got := qs.Generate(context.Background(), "SRE", "Go", "resume text")
	assert.Equal(t, []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"}, got, "extra questions are trimmed to the set size")
}

func TestGenerateFallsBackToBank(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ai   *fakeAI
	}{
		{"provider error", &fakeAI{err: domain.ErrUpstream}},
		{"no array in response", &fakeAI{responses: []string{"I cannot help with that."}}},
		{"too few questions", &fakeAI{responses: []string{`["only one?"]`}}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			qs, err := NewQuestionService(testConfig(), tc.ai)
			require.NoError(t, err)
			got := qs.Generate(context.Background(), "Data Engineer", "", "")
			require.Len(t, got, 5)
			assert.Contains(t, got[0], "Data Engineer")
		})
	}
}

func TestScoreClampsAndDefaults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		ai           *fakeAI
		wantScore    int
		wantFeedback string
	}{
		{"normal", &fakeAI{responses: []string{`{"score": 7, "feedback": "decent"}`}}, 7, "decent"},
		{"above range clamped", &fakeAI{responses: []string{`{"score": 14, "feedback": "x"}`}}, 10, "x"},
		{"below range clamped", &fakeAI{responses: []string{`{"score": -2, "feedback": "x"}`}}, 0, "x"},
		{"provider error neutral", &fakeAI{err: domain.ErrUpstream}, 5, "Answer recorded."},
		{"garbage response neutral", &fakeAI{responses: []string{"not json at all"}}, 5, "Answer recorded."},
		{"empty feedback defaulted", &fakeAI{responses: []string{`{"score": 9}`}}, 9, "Answer recorded."},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			qs, err := NewQuestionService(testConfig(), tc.ai)
			require.NoError(t, err)
			score, feedback := qs.Score(context.Background(), "Q?", "A.")
			assert.Equal(t, tc.wantScore, score)
			assert.Equal(t, tc.wantFeedback, feedback)
		})
	}
}

func TestSummarizeFallbackUsesScoreDerivedRecommendation(t *testing.T) {
	t.Parallel()
	qs, err := NewQuestionService(testConfig(), &fakeAI{err: domain.ErrUpstream})
	require.NoError(t, err)

	sum := qs.Summarize(context.Background(), []domain.Answer{{QuestionText: "Q", AnswerText: "A", Score: 8}}, 80)
	assert.Equal(t, "Strongly recommended for hire", sum.Recommendation)
	assert.NotNil(t, sum.Strengths)
	assert.NotNil(t, sum.ImprovementAreas)
}

func TestSummarizeParsesProviderJSON(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{
		"```json\n{\"strengths\": [\"clarity\"], \"improvementAreas\": [\"depth\"], \"recommendation\": \"Recommended for hire\"}\n```",
	}}
	qs, err := NewQuestionService(testConfig(), ai)
	require.NoError(t, err)

	sum := qs.Summarize(context.Background(), nil, 70)
	assert.Equal(t, []string{"clarity"}, sum.Strengths)
	assert.Equal(t, []string{"depth"}, sum.ImprovementAreas)
	assert.Equal(t, "Recommended for hire", sum.Recommendation)
}
