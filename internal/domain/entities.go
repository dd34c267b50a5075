// Package domain holds the core entities, error taxonomy, and ports of the
// interview platform. It has no dependencies on adapters or transport.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstream        = errors.New("upstream provider error")
	ErrInternal        = errors.New("internal error")
)

// NotSpecified is the sentinel for scalar profile fields with no data.
// List fields never carry the sentinel; absence is an empty slice.
const NotSpecified = "Not specified"

// CandidateProfile is the total six-field profile produced by resume
// extraction. Every scalar is non-empty (real data or NotSpecified) and
// every list is non-nil.
type CandidateProfile struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Designation   string   `json:"designation"`
	PastCompanies []string `json:"pastCompanies"`
	Skillset      []string `json:"skillset"`
}

// Normalize fills missing scalars with the sentinel and nil lists with
// empty slices so the profile is total.
func (p CandidateProfile) Normalize() CandidateProfile {
	if p.Name == "" {
		p.Name = NotSpecified
	}
	if p.Email == "" {
		p.Email = NotSpecified
	}
	if p.Phone == "" {
		p.Phone = NotSpecified
	}
	if p.Designation == "" {
		p.Designation = NotSpecified
	}
	if p.PastCompanies == nil {
		p.PastCompanies = []string{}
	}
	if p.Skillset == nil {
		p.Skillset = []string{}
	}
	return p
}

// Candidate is the persistent identity an interview path attaches to.
// Email is the lookup key for repeat uploads; uniqueness is not enforced.
type Candidate struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	JobRole      string
	ResumeText   string
	Invited      bool
	Disqualified bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InvitationStatus enumerates invitation states.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation binds a candidate identity to a job role and skillset through
// a one-time token. Status moves pending -> accepted exactly once.
type Invitation struct {
	ID            string
	CandidateID   string
	Email         string
	Token         string
	JobRole       string
	Skillset      string
	Status        InvitationStatus
	CandidateInfo CandidateSnapshot
	CreatedAt     time.Time
}

// CandidateSnapshot is the candidate data frozen at invitation time.
type CandidateSnapshot struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resumeText"`
}

// InterviewStatus enumerates interview states.
type InterviewStatus string

const (
	InterviewInProgress InterviewStatus = "in-progress"
	InterviewCompleted  InterviewStatus = "completed"
)

// Interview is the per-candidate interview record.
// Invariants: CurrentQuestionIndex is monotonically non-decreasing and
// bounded by len(Questions); Status is completed iff an Evaluation exists.
type Interview struct {
	ID                   string
	CandidateID          string
	Questions            []string
	CurrentQuestionIndex int
	Status               InterviewStatus
	CreatedAt            time.Time
	CompletedAt          *time.Time
}

// Answer is append-only, one per question per interview.
type Answer struct {
	ID            string
	InterviewID   string
	QuestionIndex int
	QuestionText  string
	AnswerText    string
	Score         int
	Feedback      string
	CreatedAt     time.Time
}

// Evaluation is created exactly once, when the last question is answered.
// Scores are on a 0-100 scale.
type Evaluation struct {
	ID               string
	InterviewID      string
	OverallScore     int
	TechnicalScore   int
	BehavioralScore  int
	Strengths        []string
	ImprovementAreas []string
	Recommendation   string
	CreatedAt        time.Time
}

// User is an authentication principal (admin or candidate).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// PasswordReset is a persisted, single-use reset token with explicit expiry.
type PasswordReset struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// AuditLog records destructive admin actions.
type AuditLog struct {
	ID          string
	Action      string
	Target      string
	PerformedBy string
	CreatedAt   time.Time
}

// InterviewStats is the admin dashboard rollup.
type InterviewStats struct {
	TotalCandidates     int64 `json:"totalCandidates"`
	TotalInterviews     int64 `json:"totalInterviews"`
	CompletedInterviews int64 `json:"completedInterviews"`
	PendingInvitations  int64 `json:"pendingInvitations"`
}

// Repositories (ports)

type CandidateRepository interface {
	Create(ctx Context, c Candidate) (string, error)
	Get(ctx Context, id string) (Candidate, error)
	FindByEmail(ctx Context, email string) ([]Candidate, error)
	Update(ctx Context, c Candidate) error
	Disqualify(ctx Context, id string) error
	Delete(ctx Context, id string) error
	List(ctx Context) ([]Candidate, error)
	Count(ctx Context) (int64, error)
}

type InterviewRepository interface {
	Create(ctx Context, iv Interview) (string, error)
	Get(ctx Context, id string) (Interview, error)
	FindByCandidate(ctx Context, candidateID string) ([]Interview, error)
	// Advance moves the cursor from fromIndex to fromIndex+1. It must only
	// succeed when the interview is still in progress at exactly fromIndex,
	// returning ErrConflict otherwise (optimistic guard).
	Advance(ctx Context, id string, fromIndex int) error
	// Complete transitions to completed under the same optimistic guard.
	Complete(ctx Context, id string, fromIndex int, at time.Time) error
	Delete(ctx Context, id string) error
	List(ctx Context) ([]Interview, error)
	CountByStatus(ctx Context, status InterviewStatus) (int64, error)
}

type AnswerRepository interface {
	// Create returns ErrConflict when an answer for the same interview and
	// question index already exists.
	Create(ctx Context, a Answer) (string, error)
	ListByInterview(ctx Context, interviewID string) ([]Answer, error)
	DeleteByInterview(ctx Context, interviewID string) error
}

type EvaluationRepository interface {
	Create(ctx Context, e Evaluation) (string, error)
	GetByInterview(ctx Context, interviewID string) (Evaluation, error)
	DeleteByInterview(ctx Context, interviewID string) error
}

type InvitationRepository interface {
	Create(ctx Context, inv Invitation) (string, error)
	GetByToken(ctx Context, token string) (Invitation, error)
	UpdateStatus(ctx Context, token string, status InvitationStatus) error
	CountByStatus(ctx Context, status InvitationStatus) (int64, error)
}

type UserRepository interface {
	Create(ctx Context, u User) (string, error)
	GetByEmail(ctx Context, email string) (User, error)
	UpdatePassword(ctx Context, email, passwordHash string) error
	DeleteByEmail(ctx Context, email string) error
}

type PasswordResetRepository interface {
	Create(ctx Context, pr PasswordReset) error
	Get(ctx Context, token string) (PasswordReset, error)
	MarkUsed(ctx Context, token string) error
}

type SettingRepository interface {
	Get(ctx Context, key string) (string, error)
	Set(ctx Context, key, value string) error
}

type AuditLogRepository interface {
	Create(ctx Context, l AuditLog) (string, error)
	List(ctx Context, action, performedBy string) ([]AuditLog, error)
}

// Collaborator ports

// AIClient is a chat-completion backend returning the raw response text.
// Implementations must bound each call with their own timeout.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	Name() string
}

// TextExtractor turns an uploaded file into best-effort plain text.
// It never fails outright: when real extraction is impossible it returns a
// filename-derived placeholder document.
type TextExtractor interface {
	Extract(ctx Context, data []byte, mimeType, filename string) (string, error)
}

// Mailer delivers plain-text mail. Implementations may log instead of
// sending when no transport is configured.
type Mailer interface {
	Send(ctx Context, to, subject, body string) error
}

// Context is an alias so the domain package reads cleanly; adapters and
// usecases pass context.Context straight through.
type Context = context.Context
