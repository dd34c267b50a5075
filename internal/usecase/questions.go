package usecase

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firstroundai/interviewd/internal/adapter/ai/tokencount"
	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

//go:embed questionbank.yaml
var questionBankYAML []byte

type questionBank struct {
	Technical  []string `yaml:"technical"`
	Behavioral []string `yaml:"behavioral"`
}

// QuestionService generates interview questions, scores answers, and writes
// the final free-text summary through an AI provider, with deterministic
// fallbacks so interviews keep working when every provider is down.
type QuestionService struct {
	cfg  config.Config
	ai   domain.AIClient
	bank questionBank
}

// NewQuestionService builds the service and parses the embedded fallback
// question bank.
func NewQuestionService(cfg config.Config, ai domain.AIClient) (*QuestionService, error) {
	var bank questionBank
	if err := yaml.Unmarshal(questionBankYAML, &bank); err != nil {
		return nil, fmt.Errorf("op=questions.new: parse question bank: %w", err)
	}
	if len(bank.Technical) == 0 || len(bank.Behavioral) == 0 {
		return nil, fmt.Errorf("op=questions.new: question bank is incomplete")
	}
	return &QuestionService{cfg: cfg, ai: ai, bank: bank}, nil
}

// Generate returns exactly QuestionsPerSet questions for the role: the
// first TechnicalAnswers technical, the rest behavioral. Provider failure
// degrades to the embedded bank, never to an error.
func (s *QuestionService) Generate(ctx context.Context, jobRole, skillset, resumeText string) []string {
	n := s.cfg.QuestionsPerSet
	qs, err := s.generateAI(ctx, jobRole, skillset, resumeText, n)
	if err != nil {
		slog.Warn("ai question generation failed, using question bank",
			slog.String("job_role", jobRole), slog.Any("error", err))
		return s.bankQuestions(jobRole, n)
	}
	return qs
}

func (s *QuestionService) generateAI(ctx context.Context, jobRole, skillset, resumeText string, n int) ([]string, error) {
	clamped := tokencount.Clamp(resumeText, s.cfg.AIPromptTokenBudget)
	system := "You are a technical interviewer. You respond with JSON only."
	user := fmt.Sprintf(
		"Generate exactly %d interview questions for a %s candidate. The first %d must be technical questions grounded in the skills and resume below; the remaining %d must be behavioral. Return ONLY a JSON array of %d strings.\n\nSkills: %s\n\nResume:\n%s",
		n, jobRole, s.cfg.TechnicalAnswers, s.cfg.BehavioralAnswers(), n, skillset, clamped)
	resp, err := s.ai.ChatJSON(ctx, system, user, 1200)
	if err != nil {
		return nil, err
	}
	qs, err := parseStringArray(resp)
	if err != nil {
		return nil, err
	}
	if len(qs) < n {
		return nil, fmt.Errorf("provider returned %d questions, want %d", len(qs), n)
	}
	return qs[:n], nil
}

// bankQuestions assembles a question set from the embedded bank, cycling
// when the bank is smaller than the requested count.
func (s *QuestionService) bankQuestions(jobRole string, n int) []string {
	role := jobRole
	if strings.TrimSpace(role) == "" {
		role = "software professional"
	}
	out := make([]string, 0, n)
	for i := 0; i < s.cfg.TechnicalAnswers && len(out) < n; i++ {
		q := s.bank.Technical[i%len(s.bank.Technical)]
		out = append(out, strings.ReplaceAll(q, "{role}", role))
	}
	for i := 0; len(out) < n; i++ {
		out = append(out, s.bank.Behavioral[i%len(s.bank.Behavioral)])
	}
	return out
}

// Score evaluates one answer on the 0-10 scale. Provider failure degrades
// to a neutral score so a submission is never lost to an AI outage.
func (s *QuestionService) Score(ctx context.Context, question, answer string) (int, string) {
	system := "You are a strict but fair interview grader. You respond with JSON only."
	user := fmt.Sprintf(
		"Score the following interview answer from 0 to 10 and give one or two sentences of feedback. Return ONLY a JSON object: {\"score\": int, \"feedback\": string}.\n\nQuestion: %s\n\nAnswer: %s",
		question, answer)
	resp, err := s.ai.ChatJSON(ctx, system, user, 400)
	if err != nil {
		slog.Warn("ai answer scoring failed, using neutral score", slog.Any("error", err))
		return 5, "Answer recorded."
	}
	var out struct {
		Score    int    `json:"score"`
		Feedback string `json:"feedback"`
	}
	idx := strings.IndexByte(resp, '{')
	if idx < 0 {
		slog.Warn("ai scoring response had no JSON object, using neutral score")
		return 5, "Answer recorded."
	}
	if err := json.NewDecoder(strings.NewReader(resp[idx:])).Decode(&out); err != nil {
		slog.Warn("ai scoring response unparseable, using neutral score", slog.Any("error", err))
		return 5, "Answer recorded."
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 10 {
		out.Score = 10
	}
	if out.Feedback == "" {
		out.Feedback = "Answer recorded."
	}
	return out.Score, out.Feedback
}

// Summary is the free-text portion of an evaluation.
type Summary struct {
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvementAreas"`
	Recommendation   string   `json:"recommendation"`
}

// Summarize produces strengths/improvements/recommendation from the full
// set of answered questions. Provider failure degrades to a score-derived
// recommendation with empty lists.
func (s *QuestionService) Summarize(ctx context.Context, answers []domain.Answer, overall int) Summary {
	var b strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&b, "Q%d: %s\nAnswer: %s\nScore: %d/10\n\n", a.QuestionIndex+1, a.QuestionText, a.AnswerText, a.Score)
	}
	system := "You are an interview evaluator. You respond with JSON only."
	user := fmt.Sprintf(
		"Given this completed interview, return ONLY a JSON object: {\"strengths\": [string], \"improvementAreas\": [string], \"recommendation\": string}. Keep each list to at most 3 short items.\n\n%s",
		b.String())
	fallback := Summary{Strengths: []string{}, ImprovementAreas: []string{}, Recommendation: recommendationFor(overall)}

	resp, err := s.ai.ChatJSON(ctx, system, user, 600)
	if err != nil {
		slog.Warn("ai summarization failed, using score-derived recommendation", slog.Any("error", err))
		return fallback
	}
	idx := strings.IndexByte(resp, '{')
	if idx < 0 {
		return fallback
	}
	var sum Summary
	if err := json.NewDecoder(strings.NewReader(resp[idx:])).Decode(&sum); err != nil {
		slog.Warn("ai summary unparseable, using score-derived recommendation", slog.Any("error", err))
		return fallback
	}
	if sum.Strengths == nil {
		sum.Strengths = []string{}
	}
	if sum.ImprovementAreas == nil {
		sum.ImprovementAreas = []string{}
	}
	if strings.TrimSpace(sum.Recommendation) == "" {
		sum.Recommendation = recommendationFor(overall)
	}
	return sum
}

// parseStringArray extracts the first JSON array of strings from a model
// response, tolerating surrounding prose.
func parseStringArray(resp string) ([]string, error) {
	idx := strings.IndexByte(resp, '[')
	if idx < 0 {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var out []string
	if err := json.NewDecoder(strings.NewReader(resp[idx:])).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	var qs []string
	for _, q := range out {
		if strings.TrimSpace(q) != "" {
			qs = append(qs, strings.TrimSpace(q))
		}
	}
	return qs, nil
}
