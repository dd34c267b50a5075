package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstroundai/interviewd/internal/domain"
)

type stubStrategy struct {
	name    string
	profile domain.CandidateProfile
	err     error
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) Extract(_ context.Context, _ string) (domain.CandidateProfile, error) {
	s.calls++
	return s.profile, s.err
}

func TestOrchestratorFirstStrategyWins(t *testing.T) {
	t.Parallel()
	first := &stubStrategy{name: "a", profile: domain.CandidateProfile{Name: "Jane Smith", Email: "jane@corp.io"}}
	second := &stubStrategy{name: "b", profile: domain.CandidateProfile{Name: "Wrong Person"}}
	o := NewOrchestrator(first, second)

	p := o.Extract(context.Background(), "Jane Smith resume body with plenty of text", "jane.pdf")
	assert.Equal(t, "Jane Smith", p.Name)
	assert.Equal(t, "jane@corp.io", p.Email)
	assert.Equal(t, 0, second.calls, "second strategy must not run when the first succeeds")
}

func TestOrchestratorFallsThroughOnError(t *testing.T) {
	t.Parallel()
	first := &stubStrategy{name: "a", err: errors.New("provider down")}
	second := &stubStrategy{name: "b", profile: domain.CandidateProfile{Name: "Backup Name"}}
	o := NewOrchestrator(first, second)

	p := o.Extract(context.Background(), "some resume text long enough to not be degenerate at all here", "cv.pdf")
	assert.Equal(t, "Backup Name", p.Name)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestOrchestratorAllStrategiesFailUsesFilename(t *testing.T) {
	t.Parallel()
	o := NewOrchestrator(
		&stubStrategy{name: "a", err: errors.New("down")},
		&stubStrategy{name: "b", err: errors.New("down")},
	)
	p := o.Extract(context.Background(), "unparseable resume text long enough to skip the degenerate branch ok", "jane_doe.pdf")
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, domain.NotSpecified, p.Email)
	assert.Equal(t, domain.NotSpecified, p.Phone)
	assert.Equal(t, domain.NotSpecified, p.Designation)
	assert.Empty(t, p.PastCompanies)
	assert.Empty(t, p.Skillset)
}

func TestOrchestratorDegenerateInputShortCircuits(t *testing.T) {
	t.Parallel()
	first := &stubStrategy{name: "a", profile: domain.CandidateProfile{Name: "Should Not Run"}}
	o := NewOrchestrator(first)

	raw := "Resume extracted from alice_jones.pdf. Candidate name: alice jones."
	p := o.Extract(context.Background(), raw, "alice_jones.pdf")
	assert.Equal(t, 0, first.calls, "degenerate input must not reach paid providers")
	assert.Equal(t, "Alice Jones", p.Name)
	assert.Equal(t, domain.NotSpecified, p.Email)
	assert.Equal(t, domain.NotSpecified, p.Phone)
	assert.Equal(t, domain.NotSpecified, p.Designation)
}

func TestOrchestratorProfileIsAlwaysTotal(t *testing.T) {
	t.Parallel()
	o := NewOrchestrator(&stubStrategy{name: "a", profile: domain.CandidateProfile{Name: "Only Name"}})
	p := o.Extract(context.Background(), "body text long enough to not look like the placeholder document x", "x.pdf")
	require.NotNil(t, p.PastCompanies)
	require.NotNil(t, p.Skillset)
	assert.NotEmpty(t, p.Email)
	assert.NotEmpty(t, p.Phone)
	assert.NotEmpty(t, p.Designation)
}

type stubAI struct{ name string }

func (s stubAI) Name() string { return s.name }
func (s stubAI) ChatJSON(_ domain.Context, _, _ string, _ int) (string, error) {
	return "", errors.New("unavailable")
}

func TestNewCascadeOrdersClientsByPreference(t *testing.T) {
	t.Parallel()
	o := NewCascade(1000, stubAI{name: "gemini"}, stubAI{name: "openai"})
	assert.Equal(t, []string{"gemini", "openai", "nlp", "regex"}, strategyNames(o))
}

func TestNewCascadeSkipsNilClients(t *testing.T) {
	t.Parallel()
	// A provider whose client failed to construct (missing API key) must
	// drop out of the chain, leaving the rest intact.
	o := NewCascade(1000, stubAI{name: "openai"}, nil)
	assert.Equal(t, []string{"openai", "nlp", "regex"}, strategyNames(o))

	o = NewCascade(1000, nil, nil)
	assert.Equal(t, []string{"nlp", "regex"}, strategyNames(o))
}

func strategyNames(o *Orchestrator) []string {
	names := make([]string, 0, len(o.strategies))
	for _, s := range o.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Regression for the canonical throwaway-contact resume: excluded email and
// fake phone both degrade to the sentinel while skills survive.
func TestOrchestratorRegexFallbackExcludesThrowawayContacts(t *testing.T) {
	t.Parallel()
	o := NewOrchestrator(RegexStrategy{})
	raw := "John Doe\njohn.doe@example.com\n+1-555-123-4567\nSkills: React, Node.js"
	p := o.Extract(context.Background(), raw, "sample-resume.txt")

	assert.Equal(t, domain.NotSpecified, p.Email)
	assert.Equal(t, domain.NotSpecified, p.Phone)
	assert.Contains(t, p.Skillset, "React")
	assert.Contains(t, p.Skillset, "Node.js")
	// Name comes from the filename because regex extraction carries none.
	assert.Equal(t, "Sample Resume", p.Name)
}
