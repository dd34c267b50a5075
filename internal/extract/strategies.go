package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/firstroundai/interviewd/internal/adapter/ai/tokencount"
	"github.com/firstroundai/interviewd/internal/domain"
)

// Strategy is one rung of the extraction fallback ladder. A strategy either
// returns a profile it considers valid or errors so the next rung runs.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, rawText string) (domain.CandidateProfile, error)
}

// LLMStrategy extracts a profile through a hosted chat-completion provider.
type LLMStrategy struct {
	client      domain.AIClient
	tokenBudget int
}

// NewLLMStrategy wraps an AI client as a strategy. Resume text is clamped to
// the token budget before prompting.
func NewLLMStrategy(client domain.AIClient, tokenBudget int) *LLMStrategy {
	return &LLMStrategy{client: client, tokenBudget: tokenBudget}
}

func (s *LLMStrategy) Name() string { return s.client.Name() }

func (s *LLMStrategy) Extract(ctx context.Context, rawText string) (domain.CandidateProfile, error) {
	clamped := tokencount.Clamp(rawText, s.tokenBudget)
	resp, err := s.client.ChatJSON(ctx, extractionSystemPrompt, buildExtractionPrompt(clamped), 800)
	if err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("op=extract.%s: %w", s.Name(), err)
	}
	p, err := parseProfileResponse(resp)
	if err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("op=extract.%s: %w", s.Name(), err)
	}
	return p, nil
}

// NLPStrategy runs local named-entity recognition for the person name and
// the shared per-field patterns for everything else. It only accepts when a
// name was found.
type NLPStrategy struct{}

func (NLPStrategy) Name() string { return "nlp" }

func (NLPStrategy) Extract(_ context.Context, rawText string) (domain.CandidateProfile, error) {
	doc, err := prose.NewDocument(rawText)
	if err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("op=extract.nlp: %w", err)
	}
	var name string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			name = strings.TrimSpace(ent.Text)
			break
		}
	}
	if name == "" {
		return domain.CandidateProfile{}, fmt.Errorf("op=extract.nlp: no person entity found")
	}
	return domain.CandidateProfile{
		Name:          name,
		Email:         firstValidEmail(rawText),
		Phone:         findPhone(rawText),
		Designation:   findDesignation(rawText),
		PastCompanies: findCompanies(rawText),
		Skillset:      findSkills(rawText),
	}, nil
}

// RegexStrategy applies the per-field patterns directly, independent of NLP.
// It is the last resort before the filename-only profile and never errors.
type RegexStrategy struct{}

func (RegexStrategy) Name() string { return "regex" }

func (RegexStrategy) Extract(_ context.Context, rawText string) (domain.CandidateProfile, error) {
	return domain.CandidateProfile{
		Email:         firstValidEmail(rawText),
		Phone:         findPhone(rawText),
		Designation:   findDesignation(rawText),
		PastCompanies: findCompanies(rawText),
		Skillset:      findSkills(rawText),
	}, nil
}
