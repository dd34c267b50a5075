// Package extract implements the cascading resume-extraction pipeline:
// hosted LLM providers first, then a local NLP heuristic, then regex
// patterns, then a filename-only profile. Extraction never fails; it
// degrades.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/firstroundai/interviewd/internal/adapter/observability"
	"github.com/firstroundai/interviewd/internal/adapter/textextractor/tika"
	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/pkg/textx"
)

// degenerateMaxLen bounds how long a document may be and still count as the
// upstream extractor's placeholder.
const degenerateMaxLen = 200

// Orchestrator runs the ordered fallback chain and refines the winner.
type Orchestrator struct {
	strategies []Strategy
}

// NewOrchestrator builds an orchestrator over the given strategies, tried in
// order.
func NewOrchestrator(strategies ...Strategy) *Orchestrator {
	return &Orchestrator{strategies: strategies}
}

// NewCascade assembles the standard fallback chain: one LLM rung per client
// in preference order, then the NLP heuristic, then the regex patterns. Nil
// clients are skipped, so a provider whose credentials are missing simply
// drops out of the chain instead of blocking it.
func NewCascade(tokenBudget int, clients ...domain.AIClient) *Orchestrator {
	var strategies []Strategy
	for _, c := range clients {
		if c == nil {
			continue
		}
		strategies = append(strategies, NewLLMStrategy(c, tokenBudget))
	}
	strategies = append(strategies, NLPStrategy{}, RegexStrategy{})
	return NewOrchestrator(strategies...)
}

// Extract returns a total profile for the raw text: every scalar is real
// data or "Not specified" and every list is non-nil. Degenerate placeholder
// input short-circuits to the filename-only profile so no paid provider sees
// garbage.
func (o *Orchestrator) Extract(ctx context.Context, rawText, filename string) domain.CandidateProfile {
	if isDegenerate(rawText) {
		observability.ExtractionStrategyTotal.WithLabelValues("filename", "success").Inc()
		return filenameProfile(filename)
	}

	var p domain.CandidateProfile
	found := false
	for _, s := range o.strategies {
		got, err := s.Extract(ctx, rawText)
		if err != nil {
			observability.ExtractionStrategyTotal.WithLabelValues(s.Name(), "failure").Inc()
			slog.Debug("extraction strategy failed", slog.String("strategy", s.Name()), slog.Any("error", err))
			continue
		}
		observability.ExtractionStrategyTotal.WithLabelValues(s.Name(), "success").Inc()
		slog.Info("extraction strategy succeeded", slog.String("strategy", s.Name()))
		p, found = got, true
		break
	}
	if !found {
		// Every rung errored; the filename is all that is left.
		observability.ExtractionStrategyTotal.WithLabelValues("filename", "success").Inc()
		return filenameProfile(filename)
	}

	return Refine(rawText, filename, p).Normalize()
}

// isDegenerate recognizes the placeholder document the upstream text
// extractor emits when it could not read the file.
func isDegenerate(rawText string) bool {
	return strings.Contains(rawText, tika.PlaceholderPrefix) && len(rawText) < degenerateMaxLen
}

func filenameProfile(filename string) domain.CandidateProfile {
	name := textx.TitleFirstTwo(textx.NameFromFilename(filename))
	if name == "" {
		name = textx.NameFromFilename(filename)
	}
	return domain.CandidateProfile{Name: name}.Normalize()
}
