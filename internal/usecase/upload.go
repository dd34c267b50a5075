package usecase

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/extract"
)

// UploadService turns uploaded resumes into candidate records: text
// extraction, the cascading profile pipeline, and create-or-update keyed by
// the extracted email. The orchestrator is swappable so an admin provider
// change constructs a fresh pipeline instead of mutating a shared one.
type UploadService struct {
	cfg        config.Config
	extractor  domain.TextExtractor
	candidates domain.CandidateRepository
	ai         domain.AIClient
	orch       atomic.Pointer[extract.Orchestrator]
}

// NewUploadService wires the resume upload path. The AI client scores bulk
// uploads against a job role; nil disables fit scoring.
func NewUploadService(cfg config.Config, extractor domain.TextExtractor, candidates domain.CandidateRepository, ai domain.AIClient, orch *extract.Orchestrator) *UploadService {
	s := &UploadService{cfg: cfg, extractor: extractor, candidates: candidates, ai: ai}
	s.orch.Store(orch)
	return s
}

// SetOrchestrator atomically swaps in a newly built extraction pipeline.
func (s *UploadService) SetOrchestrator(orch *extract.Orchestrator) {
	s.orch.Store(orch)
}

// ExtractProfile runs text extraction plus the profile pipeline and returns
// the total profile along with the raw text for persistence.
func (s *UploadService) ExtractProfile(ctx domain.Context, data []byte, mimeType, filename string) (domain.CandidateProfile, string, error) {
	rawText, err := s.extractor.Extract(ctx, data, mimeType, filename)
	if err != nil {
		return domain.CandidateProfile{}, "", fmt.Errorf("op=upload.extract: %w", err)
	}
	profile := s.orch.Load().Extract(ctx, rawText, filename)
	return profile, rawText, nil
}

// UpsertCandidate persists the extracted profile: repeat uploads with the
// same (real) email update the existing record, anything else creates one.
func (s *UploadService) UpsertCandidate(ctx domain.Context, p domain.CandidateProfile, jobRole, resumeText string) (domain.Candidate, error) {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	realEmail := email != "" && email != strings.ToLower(domain.NotSpecified)

	if realEmail {
		existing, err := s.candidates.FindByEmail(ctx, email)
		if err != nil {
			return domain.Candidate{}, err
		}
		if len(existing) > 0 {
			c := existing[0]
			c.Name = p.Name
			c.Phone = p.Phone
			c.ResumeText = resumeText
			if jobRole != "" {
				c.JobRole = jobRole
			}
			if err := s.candidates.Update(ctx, c); err != nil {
				return domain.Candidate{}, err
			}
			return c, nil
		}
	}

	c := domain.Candidate{
		Name:       p.Name,
		Email:      email,
		Phone:      p.Phone,
		JobRole:    jobRole,
		ResumeText: resumeText,
	}
	id, err := s.candidates.Create(ctx, c)
	if err != nil {
		return domain.Candidate{}, err
	}
	c.ID = id
	return c, nil
}

// BulkFile is one resume in a bulk upload batch.
type BulkFile struct {
	Data     []byte
	MimeType string
	Filename string
}

// BulkResult pairs a filename with its extraction outcome and the AI fit
// score for the batch's job role.
type BulkResult struct {
	Filename  string                  `json:"filename"`
	Profile   domain.CandidateProfile `json:"profile"`
	Candidate string                  `json:"candidateId,omitempty"`
	FitScore  int                     `json:"fitScore"`
	Best      bool                    `json:"best"`
	Error     string                  `json:"error,omitempty"`
}

const bulkConcurrency = 4

// BulkExtract processes a batch of resumes concurrently, bounded so a large
// batch cannot starve the AI providers. Per-file failures are reported in
// the result row, never aborting the batch. Results come back sorted by fit
// score with the top row flagged best.
func (s *UploadService) BulkExtract(ctx domain.Context, jobRole string, files []BulkFile) []BulkResult {
	results := make([]BulkResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)

	var mu sync.Mutex
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			profile, rawText, err := s.ExtractProfile(ctx, f.Data, f.MimeType, f.Filename)
			if err != nil {
				mu.Lock()
				results[i] = BulkResult{Filename: f.Filename, Error: err.Error()}
				mu.Unlock()
				return nil
			}
			score := s.fitScore(ctx, jobRole, rawText)
			c, err := s.UpsertCandidate(ctx, profile, jobRole, rawText)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[i] = BulkResult{Filename: f.Filename, Profile: profile, FitScore: score, Error: err.Error()}
				return nil
			}
			results[i] = BulkResult{Filename: f.Filename, Profile: profile, Candidate: c.ID, FitScore: score}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(a, b int) bool { return results[a].FitScore > results[b].FitScore })
	if len(results) > 0 && results[0].Error == "" {
		results[0].Best = true
	}
	return results
}

// fitScore asks the AI collaborator for a 0-100 job fit score. Any failure
// scores zero; ranking degrades rather than the batch failing.
func (s *UploadService) fitScore(ctx domain.Context, jobRole, resumeText string) int {
	if s.ai == nil || jobRole == "" {
		return 0
	}
	prompt := fmt.Sprintf("Score this resume for the job role %q on a scale of 0-100. Only return the score as a number.\n\nResume:\n%s", jobRole, resumeText)
	resp, err := s.ai.ChatJSON(ctx, "You rank resumes for job fit.", prompt, 16)
	if err != nil {
		slog.Warn("bulk fit scoring failed", slog.Any("error", err))
		return 0
	}
	m := firstNumberRe.FindString(resp)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

var firstNumberRe = regexp.MustCompile(`\d+`)
