package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// In-memory repositories implementing the domain ports, with the same
// conflict semantics as the PostgreSQL layer.

type memCandidates struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Candidate
}

func newMemCandidates() *memCandidates {
	return &memCandidates{rows: map[string]domain.Candidate{}}
}

func (r *memCandidates) Create(_ context.Context, c domain.Candidate) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = "cand-" + strconv.Itoa(r.seq)
	c.CreatedAt = time.Now()
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *memCandidates) Get(_ context.Context, id string) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *memCandidates) FindByEmail(_ context.Context, email string) ([]domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Candidate
	for _, c := range r.rows {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCandidates) Update(_ context.Context, c domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[c.ID] = c
	return nil
}

func (r *memCandidates) Disqualify(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Disqualified = true
	r.rows[id] = c
	return nil
}

func (r *memCandidates) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memCandidates) List(_ context.Context) ([]domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Candidate, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCandidates) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

type memInterviews struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Interview
}

func newMemInterviews() *memInterviews {
	return &memInterviews{rows: map[string]domain.Interview{}}
}

func (r *memInterviews) Create(_ context.Context, iv domain.Interview) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	iv.ID = "iv-" + strconv.Itoa(r.seq)
	iv.CreatedAt = time.Now()
	r.rows[iv.ID] = iv
	return iv.ID, nil
}

func (r *memInterviews) Get(_ context.Context, id string) (domain.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.rows[id]
	if !ok {
		return domain.Interview{}, domain.ErrNotFound
	}
	return iv, nil
}

func (r *memInterviews) FindByCandidate(_ context.Context, candidateID string) ([]domain.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Interview
	for _, iv := range r.rows {
		if iv.CandidateID == candidateID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (r *memInterviews) Advance(_ context.Context, id string, fromIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.rows[id]
	if !ok || iv.Status != domain.InterviewInProgress || iv.CurrentQuestionIndex != fromIndex {
		return domain.ErrConflict
	}
	iv.CurrentQuestionIndex = fromIndex + 1
	r.rows[id] = iv
	return nil
}

func (r *memInterviews) Complete(_ context.Context, id string, fromIndex int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.rows[id]
	if !ok || iv.Status != domain.InterviewInProgress || iv.CurrentQuestionIndex != fromIndex {
		return domain.ErrConflict
	}
	iv.Status = domain.InterviewCompleted
	iv.CurrentQuestionIndex = fromIndex + 1
	iv.CompletedAt = &at
	r.rows[id] = iv
	return nil
}

func (r *memInterviews) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memInterviews) List(_ context.Context) ([]domain.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Interview, 0, len(r.rows))
	for _, iv := range r.rows {
		out = append(out, iv)
	}
	return out, nil
}

func (r *memInterviews) CountByStatus(_ context.Context, status domain.InterviewStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, iv := range r.rows {
		if iv.Status == status {
			n++
		}
	}
	return n, nil
}

type memAnswers struct {
	mu   sync.Mutex
	seq  int
	rows []domain.Answer
}

func (r *memAnswers) Create(_ context.Context, a domain.Answer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.rows {
		if ex.InterviewID == a.InterviewID && ex.QuestionIndex == a.QuestionIndex {
			return "", domain.ErrConflict
		}
	}
	r.seq++
	a.ID = "ans-" + strconv.Itoa(r.seq)
	r.rows = append(r.rows, a)
	return a.ID, nil
}

func (r *memAnswers) ListByInterview(_ context.Context, interviewID string) ([]domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Answer
	for _, a := range r.rows {
		if a.InterviewID == interviewID {
			out = append(out, a)
		}
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].QuestionIndex < out[i].QuestionIndex {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memAnswers) DeleteByInterview(_ context.Context, interviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.Answer
	for _, a := range r.rows {
		if a.InterviewID != interviewID {
			kept = append(kept, a)
		}
	}
	r.rows = kept
	return nil
}

type memEvaluations struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Evaluation // keyed by interview id
}

func newMemEvaluations() *memEvaluations {
	return &memEvaluations{rows: map[string]domain.Evaluation{}}
}

func (r *memEvaluations) Create(_ context.Context, e domain.Evaluation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.InterviewID]; ok {
		return "", domain.ErrConflict
	}
	r.seq++
	e.ID = "eval-" + strconv.Itoa(r.seq)
	r.rows[e.InterviewID] = e
	return e.ID, nil
}

func (r *memEvaluations) GetByInterview(_ context.Context, interviewID string) (domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[interviewID]
	if !ok {
		return domain.Evaluation{}, domain.ErrNotFound
	}
	return e, nil
}

func (r *memEvaluations) DeleteByInterview(_ context.Context, interviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, interviewID)
	return nil
}

type memInvitations struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Invitation // keyed by token
}

func newMemInvitations() *memInvitations {
	return &memInvitations{rows: map[string]domain.Invitation{}}
}

func (r *memInvitations) Create(_ context.Context, inv domain.Invitation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[inv.Token]; ok {
		return "", domain.ErrConflict
	}
	r.seq++
	inv.ID = "inv-" + strconv.Itoa(r.seq)
	inv.CreatedAt = time.Now()
	r.rows[inv.Token] = inv
	return inv.ID, nil
}

func (r *memInvitations) GetByToken(_ context.Context, token string) (domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[token]
	if !ok {
		return domain.Invitation{}, domain.ErrNotFound
	}
	return inv, nil
}

func (r *memInvitations) UpdateStatus(_ context.Context, token string, status domain.InvitationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[token]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	r.rows[token] = inv
	return nil
}

func (r *memInvitations) CountByStatus(_ context.Context, status domain.InvitationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.rows {
		if inv.Status == status {
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.User // keyed by email
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]domain.User{}} }

func (r *memUsers) Create(_ context.Context, u domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.Email]; ok {
		return "", domain.ErrConflict
	}
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	r.rows[u.Email] = u
	return u.ID, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[email]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	r.rows[email] = u
	return nil
}

func (r *memUsers) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, email)
	return nil
}

type memResets struct {
	mu   sync.Mutex
	rows map[string]domain.PasswordReset
}

func newMemResets() *memResets { return &memResets{rows: map[string]domain.PasswordReset{}} }

func (r *memResets) Create(_ context.Context, pr domain.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[pr.Token] = pr
	return nil
}

func (r *memResets) Get(_ context.Context, token string) (domain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.rows[token]
	if !ok {
		return domain.PasswordReset{}, domain.ErrNotFound
	}
	return pr, nil
}

func (r *memResets) MarkUsed(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.rows[token]
	if !ok || pr.UsedAt != nil {
		return domain.ErrConflict
	}
	now := time.Now()
	pr.UsedAt = &now
	r.rows[token] = pr
	return nil
}

type memSettings struct {
	mu   sync.Mutex
	rows map[string]string
}

func newMemSettings() *memSettings { return &memSettings{rows: map[string]string{}} }

func (r *memSettings) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (r *memSettings) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[key] = value
	return nil
}

type memAudit struct {
	mu   sync.Mutex
	rows []domain.AuditLog
}

func (r *memAudit) Create(_ context.Context, l domain.AuditLog) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = fmt.Sprintf("audit-%d", len(r.rows)+1)
	r.rows = append(r.rows, l)
	return l.ID, nil
}

func (r *memAudit) List(_ context.Context, action, performedBy string) ([]domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditLog
	for _, l := range r.rows {
		if (action == "" || l.Action == action) && (performedBy == "" || l.PerformedBy == performedBy) {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeAI is a scriptable AI client.
type fakeAI struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (f *fakeAI) Name() string { return "fake" }

func (f *fakeAI) ChatJSON(_ context.Context, _, _ string, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("fakeAI: no scripted response")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

type logMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *logMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:           "test",
		AIProvider:       "openai",
		QuestionsPerSet:  5,
		TechnicalAnswers: 4,
		FrontendURL:      "http://localhost:5173",
		ResetTokenTTL:    time.Hour,
	}
}
