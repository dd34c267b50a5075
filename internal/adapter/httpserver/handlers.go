// Package httpserver exposes the interview platform over HTTP: candidate
// interview flows, invitation resolution, authentication, and the admin
// surface. All responses are JSON.
package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/extract"
	"github.com/firstroundai/interviewd/internal/service/ratelimiter"
	"github.com/firstroundai/interviewd/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Uploads     *usecase.UploadService
	Interviews  *usecase.InterviewService
	Invitations *usecase.InvitationService
	Auth        *usecase.AuthService
	Admin       *usecase.AdminService
	Sessions    *SessionManager
	// AnswerLimiter throttles answer submissions per interview. Nil disables
	// throttling (no Redis configured).
	AnswerLimiter ratelimiter.Limiter
	// BuildOrchestrator rebuilds the extraction pipeline for a provider
	// preference; the admin AI-provider endpoint swaps it in live.
	BuildOrchestrator func(provider string) *extract.Orchestrator

	DBCheck    func(ctx domain.Context) error
	RedisCheck func(ctx domain.Context) error
}

func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

func allowedMIME(m string) bool {
	m = strings.ToLower(m)
	if strings.HasPrefix(m, "text/") {
		return true
	}
	return m == "application/pdf" ||
		m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		m == "application/zip" // docx containers sniff as zip
}

type uploadedFile struct {
	Data     []byte
	MimeType string
	Filename string
}

// readUploads parses the multipart body and returns the files under field,
// validated against the extension and sniffed-MIME allowlists.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]uploadedFile, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument)
	}
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("%w: multipart parse: %v", domain.ErrInvalidArgument, err)
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s file is required", domain.ErrInvalidArgument, field)
	}
	files := make([]uploadedFile, 0, len(headers))
	for _, h := range headers {
		if !allowedExt(h.Filename) {
			return nil, fmt.Errorf("%w: unsupported file type %q (allowed: .pdf, .docx, .txt)", domain.ErrInvalidArgument, filepath.Ext(h.Filename))
		}
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidArgument, h.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidArgument, h.Filename, err)
		}
		mt := mimetype.Detect(data)
		if !allowedMIME(mt.String()) {
			return nil, fmt.Errorf("%w: unsupported content for %s (detected %s)", domain.ErrInvalidArgument, h.Filename, mt.String())
		}
		files = append(files, uploadedFile{Data: data, MimeType: mt.String(), Filename: h.Filename})
	}
	return files, nil
}

type startResponse struct {
	InterviewID     string   `json:"interviewId"`
	CandidateID     string   `json:"candidateId"`
	Questions       []string `json:"questions"`
	CurrentQuestion int      `json:"currentQuestion"`
	Status          string   `json:"status"`
	CandidateName   string   `json:"candidateName"`
	CandidateRole   string   `json:"candidateRole"`
	CandidatePhone  string   `json:"candidatePhone"`
}

func toStartResponse(iv domain.Interview, c domain.Candidate) startResponse {
	return startResponse{
		InterviewID:     iv.ID,
		CandidateID:     c.ID,
		Questions:       iv.Questions,
		CurrentQuestion: iv.CurrentQuestionIndex,
		Status:          string(iv.Status),
		CandidateName:   c.Name,
		CandidateRole:   c.JobRole,
		CandidatePhone:  c.Phone,
	}
}

// StartInterviewHandler accepts a multipart resume upload plus optional
// identity fields, runs extraction, and starts (or resumes) the candidate's
// interview.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := s.readUploads(w, r, "resume")
		if err != nil {
			writeError(w, err)
			return
		}
		f := files[0]
		profile, rawText, err := s.Uploads.ExtractProfile(r.Context(), f.Data, f.MimeType, f.Filename)
		if err != nil {
			writeError(w, err)
			return
		}
		// Explicit form fields beat extracted values.
		if v := strings.TrimSpace(r.FormValue("name")); v != "" {
			profile.Name = v
		}
		if v := strings.TrimSpace(r.FormValue("email")); v != "" {
			profile.Email = strings.ToLower(v)
		}
		if v := strings.TrimSpace(r.FormValue("phone")); v != "" {
			profile.Phone = v
		}
		jobRole := strings.TrimSpace(r.FormValue("jobRole"))

		cand, err := s.Uploads.UpsertCandidate(r.Context(), profile, jobRole, rawText)
		if err != nil {
			writeError(w, err)
			return
		}
		iv, cand, err := s.Interviews.Start(r.Context(), cand.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStartResponse(iv, cand))
	}
}

type startInvitedRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// StartInvitedHandler starts an interview for a previously invited
// candidate, located by email.
func (s *Server) StartInvitedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startInvitedRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		iv, cand, err := s.Interviews.StartByEmail(r.Context(), req.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStartResponse(iv, cand))
	}
}

type answerRequest struct {
	InterviewID   string `json:"interviewId" validate:"required"`
	QuestionIndex *int   `json:"questionIndex" validate:"required"`
	AnswerText    string `json:"answerText" validate:"required"`
}

type answerResponse struct {
	Score        int            `json:"score"`
	Feedback     string         `json:"feedback"`
	Completed    bool           `json:"completed"`
	NextQuestion string         `json:"nextQuestion,omitempty"`
	Summary      *evaluationDTO `json:"summary,omitempty"`
}

// SubmitAnswerHandler records one answer. Submissions are throttled per
// interview so a scripted client cannot burn provider quota.
func (s *Server) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if s.AnswerLimiter != nil && !s.AnswerLimiter.Allow(r.Context(), req.InterviewID) {
			writeError(w, fmt.Errorf("%w: too many submissions, slow down", domain.ErrRateLimited))
			return
		}
		res, err := s.Interviews.SubmitAnswer(r.Context(), req.InterviewID, *req.QuestionIndex, req.AnswerText)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := answerResponse{
			Score:        res.Score,
			Feedback:     res.Feedback,
			Completed:    res.Completed,
			NextQuestion: res.NextQuestion,
		}
		if res.Evaluation != nil {
			dto := toEvaluationDTO(*res.Evaluation)
			resp.Summary = &dto
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type evaluationDTO struct {
	OverallScore     int      `json:"overallScore"`
	TechnicalScore   int      `json:"technicalScore"`
	BehavioralScore  int      `json:"behavioralScore"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvementAreas"`
	Recommendation   string   `json:"recommendation"`
}

func toEvaluationDTO(e domain.Evaluation) evaluationDTO {
	return evaluationDTO{
		OverallScore:     e.OverallScore,
		TechnicalScore:   e.TechnicalScore,
		BehavioralScore:  e.BehavioralScore,
		Strengths:        e.Strengths,
		ImprovementAreas: e.ImprovementAreas,
		Recommendation:   e.Recommendation,
	}
}

type answerDTO struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionText  string `json:"questionText"`
	AnswerText    string `json:"answerText"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
}

type interviewDetailResponse struct {
	InterviewID     string         `json:"interviewId"`
	CandidateID     string         `json:"candidateId"`
	CandidateName   string         `json:"candidateName"`
	CandidateEmail  string         `json:"candidateEmail"`
	JobRole         string         `json:"jobRole"`
	Status          string         `json:"status"`
	Questions       []string       `json:"questions"`
	CurrentQuestion int            `json:"currentQuestion"`
	Answers         []answerDTO    `json:"answers"`
	Evaluation      *evaluationDTO `json:"evaluation,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

func toDetailResponse(d usecase.Detail) interviewDetailResponse {
	resp := interviewDetailResponse{
		InterviewID:     d.Interview.ID,
		CandidateID:     d.Candidate.ID,
		CandidateName:   d.Candidate.Name,
		CandidateEmail:  d.Candidate.Email,
		JobRole:         d.Candidate.JobRole,
		Status:          string(d.Interview.Status),
		Questions:       d.Interview.Questions,
		CurrentQuestion: d.Interview.CurrentQuestionIndex,
		Answers:         make([]answerDTO, 0, len(d.Answers)),
		CreatedAt:       d.Interview.CreatedAt,
		CompletedAt:     d.Interview.CompletedAt,
	}
	for _, a := range d.Answers {
		resp.Answers = append(resp.Answers, answerDTO{
			QuestionIndex: a.QuestionIndex,
			QuestionText:  a.QuestionText,
			AnswerText:    a.AnswerText,
			Score:         a.Score,
			Feedback:      a.Feedback,
		})
	}
	if d.Evaluation != nil {
		dto := toEvaluationDTO(*d.Evaluation)
		resp.Evaluation = &dto
	}
	return resp
}

// GetInterviewHandler returns the full interview read-model.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d, err := s.Interviews.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(d))
	}
}

// CandidateResultsByIDHandler returns the completed interview for a
// candidate id.
func (s *Server) CandidateResultsByIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d, err := s.Interviews.ResultsByCandidate(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(d))
	}
}

// ReportDisqualificationHandler lets the interview client flag rule
// violations (leaving the window, pasting). The flag is permanent.
func (s *Server) ReportDisqualificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Admin.DisqualifyCandidate(r.Context(), id, "interview-monitor"); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "disqualified"})
	}
}

// CandidateResultsHandler returns the completed interview for a candidate
// email, for the results page.
func (s *Server) CandidateResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			writeError(w, fmt.Errorf("%w: email query parameter is required", domain.ErrInvalidArgument))
			return
		}
		d, err := s.Interviews.ResultsByEmail(r.Context(), email)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(d))
	}
}

type invitationResponse struct {
	Token         string `json:"token"`
	JobRole       string `json:"jobRole"`
	Skillset      string `json:"skillset"`
	Status        string `json:"status"`
	CandidateID   string `json:"candidateId"`
	CandidateInfo struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"candidateInfo"`
}

// GetInvitationHandler resolves an invitation token for the landing page.
func (s *Server) GetInvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		inv, err := s.Invitations.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := invitationResponse{
			Token:       inv.Token,
			JobRole:     inv.JobRole,
			Skillset:    inv.Skillset,
			Status:      string(inv.Status),
			CandidateID: inv.CandidateID,
		}
		resp.CandidateInfo.Name = inv.CandidateInfo.Name
		resp.CandidateInfo.Email = inv.CandidateInfo.Email
		resp.CandidateInfo.Phone = inv.CandidateInfo.Phone
		writeJSON(w, http.StatusOK, resp)
	}
}

// HealthzHandler is the liveness probe.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports readiness of the backing stores.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		ready := true
		if s.DBCheck != nil {
			if err := s.DBCheck(r.Context()); err != nil {
				checks["db"] = err.Error()
				ready = false
			} else {
				checks["db"] = "ok"
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(r.Context()); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
	}
}
