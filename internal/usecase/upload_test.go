package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/extract"
)

// passthroughExtractor returns the upload bytes as text.
type passthroughExtractor struct{}

func (passthroughExtractor) Extract(_ context.Context, data []byte, _, _ string) (string, error) {
	return string(data), nil
}

func newUploadFixture(ai domain.AIClient) (*UploadService, *memCandidates) {
	cands := newMemCandidates()
	orch := extract.NewOrchestrator(extract.RegexStrategy{})
	svc := NewUploadService(testConfig(), passthroughExtractor{}, cands, ai, orch)
	return svc, cands
}

func TestExtractProfileReturnsTotalProfile(t *testing.T) {
	t.Parallel()
	svc, _ := newUploadFixture(nil)
	raw := []byte("Jane Doe\njane@realcorp.io\nSkills: Go, SQL\n\nExperience: worked at Initech Solutions")
	p, rawText, err := svc.ExtractProfile(context.Background(), raw, "text/plain", "jane_doe.txt")
	require.NoError(t, err)
	assert.Equal(t, string(raw), rawText)
	assert.Equal(t, "jane@realcorp.io", p.Email)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Contains(t, p.Skillset, "Go")
	assert.Contains(t, p.PastCompanies, "Initech Solutions")
}

func TestUpsertCandidateCreatesThenUpdatesByEmail(t *testing.T) {
	t.Parallel()
	svc, cands := newUploadFixture(nil)
	ctx := context.Background()

	first, err := svc.UpsertCandidate(ctx, domain.CandidateProfile{Name: "Jane", Email: "j@x.io"}, "SRE", "resume v1")
	require.NoError(t, err)

	second, err := svc.UpsertCandidate(ctx, domain.CandidateProfile{Name: "Jane D", Email: "j@x.io"}, "", "resume v2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeat upload with same email updates in place")

	got, err := cands.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane D", got.Name)
	assert.Equal(t, "resume v2", got.ResumeText)
	assert.Equal(t, "SRE", got.JobRole, "empty job role must not wipe the stored one")
}

func TestUpsertCandidateSentinelEmailAlwaysCreates(t *testing.T) {
	t.Parallel()
	svc, cands := newUploadFixture(nil)
	ctx := context.Background()

	_, err := svc.UpsertCandidate(ctx, domain.CandidateProfile{Name: "A", Email: domain.NotSpecified}, "", "r1")
	require.NoError(t, err)
	_, err = svc.UpsertCandidate(ctx, domain.CandidateProfile{Name: "B", Email: domain.NotSpecified}, "", "r2")
	require.NoError(t, err)

	n, _ := cands.Count(ctx)
	assert.EqualValues(t, 2, n, "profiles without a real email never merge")
}

func TestBulkExtractReportsPerFileOutcomes(t *testing.T) {
	t.Parallel()
	svc, cands := newUploadFixture(nil)
	files := []BulkFile{
		{Data: []byte("Alice Adams\nalice@corp.io\nSkills: Go"), MimeType: "text/plain", Filename: "alice_adams.txt"},
		{Data: []byte("Bob Brown\nbob@corp.io\nSkills: Rust"), MimeType: "text/plain", Filename: "bob_brown.txt"},
	}
	results := svc.BulkExtract(context.Background(), "Backend Engineer", files)
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, files[i].Filename, r.Filename)
		assert.Empty(t, r.Error)
		assert.NotEmpty(t, r.Candidate)
	}
	n, _ := cands.Count(context.Background())
	assert.EqualValues(t, 2, n)
}

func TestBulkExtractRanksByFitScore(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{"70", "90"}}
	svc, _ := newUploadFixture(ai)
	files := []BulkFile{
		{Data: []byte("Alice Adams\nalice@corp.io\nSkills: Go"), MimeType: "text/plain", Filename: "alice_adams.txt"},
		{Data: []byte("Bob Brown\nbob@corp.io\nSkills: Rust"), MimeType: "text/plain", Filename: "bob_brown.txt"},
	}
	results := svc.BulkExtract(context.Background(), "Backend Engineer", files)
	require.Len(t, results, 2)

	assert.Equal(t, 90, results[0].FitScore, "highest score sorts first")
	assert.Equal(t, 70, results[1].FitScore)
	assert.True(t, results[0].Best)
	assert.False(t, results[1].Best)
}

func TestBulkExtractScoringFailureDegradesToZero(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{err: domain.ErrUpstream}
	svc, _ := newUploadFixture(ai)
	files := []BulkFile{
		{Data: []byte("Alice Adams\nalice@corp.io\nSkills: Go"), MimeType: "text/plain", Filename: "alice_adams.txt"},
	}
	results := svc.BulkExtract(context.Background(), "Backend Engineer", files)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Error, "scoring failure must not fail the row")
	assert.Zero(t, results[0].FitScore)
}
