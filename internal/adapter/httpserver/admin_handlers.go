package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/usecase"
)

func performedBy(r *http.Request) string {
	if sd, ok := SessionFrom(r.Context()); ok {
		return sd.Email
	}
	return "unknown"
}

// ExtractResumeHandler runs the extraction pipeline on one resume and
// returns the profile without creating an interview. Admin tooling uses it
// to preview extraction quality.
func (s *Server) ExtractResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := s.readUploads(w, r, "resume")
		if err != nil {
			writeError(w, err)
			return
		}
		f := files[0]
		profile, _, err := s.Uploads.ExtractProfile(r.Context(), f.Data, f.MimeType, f.Filename)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// BulkResumeUploadHandler extracts a batch of resumes and upserts a
// candidate per file. Per-file failures come back in the result rows.
func (s *Server) BulkResumeUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := s.readUploads(w, r, "resumes")
		if err != nil {
			writeError(w, err)
			return
		}
		jobRole := strings.TrimSpace(r.FormValue("jobRole"))
		batch := make([]usecase.BulkFile, 0, len(files))
		for _, f := range files {
			batch = append(batch, usecase.BulkFile{Data: f.Data, MimeType: f.MimeType, Filename: f.Filename})
		}
		results := s.Uploads.BulkExtract(r.Context(), jobRole, batch)
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

type sendInviteRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	JobRole  string `json:"jobRole" validate:"required"`
	Skillset string `json:"skillset"`
	// ResumeText carries previously extracted resume text so question
	// generation can use it after the candidate accepts.
	ResumeText string `json:"resumeText"`
}

// SendInviteHandler creates an invitation and emails its link.
func (s *Server) SendInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendInviteRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		info := domain.CandidateSnapshot{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			ResumeText: req.ResumeText,
		}
		token, candidateID, err := s.Invitations.Issue(r.Context(), info, req.JobRole, req.Skillset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"token":       token,
			"candidateId": candidateID,
		})
	}
}

type candidateDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	JobRole      string `json:"jobRole"`
	Invited      bool   `json:"invited"`
	Disqualified bool   `json:"disqualified"`
}

// ListCandidatesHandler returns all candidates, newest first.
func (s *Server) ListCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cands, err := s.Admin.ListCandidates(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]candidateDTO, 0, len(cands))
		for _, c := range cands {
			out = append(out, candidateDTO{
				ID:           c.ID,
				Name:         c.Name,
				Email:        c.Email,
				Phone:        c.Phone,
				JobRole:      c.JobRole,
				Invited:      c.Invited,
				Disqualified: c.Disqualified,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"candidates": out})
	}
}

// DeleteCandidateHandler removes a candidate and all dependent records.
func (s *Server) DeleteCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Admin.DeleteCandidate(r.Context(), id, performedBy(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// DisqualifyCandidateHandler marks a candidate disqualified. Disqualified
// candidates cannot start interviews or log in.
func (s *Server) DisqualifyCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Admin.DisqualifyCandidate(r.Context(), id, performedBy(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "disqualified"})
	}
}

// DeleteInterviewHandler removes one interview and its dependent records.
func (s *Server) DeleteInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Admin.DeleteInterview(r.Context(), id, performedBy(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ListInterviewsHandler returns every interview record for the dashboard.
func (s *Server) ListInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ivs, err := s.Admin.ListInterviews(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		type interviewDTO struct {
			ID              string `json:"id"`
			CandidateID     string `json:"candidateId"`
			Status          string `json:"status"`
			CurrentQuestion int    `json:"currentQuestion"`
			QuestionCount   int    `json:"questionCount"`
		}
		out := make([]interviewDTO, 0, len(ivs))
		for _, iv := range ivs {
			out = append(out, interviewDTO{
				ID:              iv.ID,
				CandidateID:     iv.CandidateID,
				Status:          string(iv.Status),
				CurrentQuestion: iv.CurrentQuestionIndex,
				QuestionCount:   len(iv.Questions),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"interviews": out})
	}
}

// StatsHandler returns the dashboard rollup counts.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Admin.Stats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// GetAIProviderHandler returns the active extraction provider preference.
func (s *Server) GetAIProviderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := s.Admin.AIProvider(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"provider": provider})
	}
}

type setAIProviderRequest struct {
	Provider string `json:"provider" validate:"required,oneof=openai gemini"`
}

// SetAIProviderHandler persists the provider preference and swaps the live
// extraction pipeline so the change applies without a restart.
func (s *Server) SetAIProviderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setAIProviderRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Admin.SetAIProvider(r.Context(), req.Provider, performedBy(r)); err != nil {
			writeError(w, err)
			return
		}
		if s.BuildOrchestrator != nil {
			s.Uploads.SetOrchestrator(s.BuildOrchestrator(req.Provider))
		}
		writeJSON(w, http.StatusOK, map[string]string{"provider": req.Provider})
	}
}

// AuditLogsHandler lists destructive admin actions, optionally filtered.
func (s *Server) AuditLogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		logs, err := s.Admin.AuditLogs(r.Context(), q.Get("action"), q.Get("performedBy"))
		if err != nil {
			writeError(w, err)
			return
		}
		type auditDTO struct {
			ID          string `json:"id"`
			Action      string `json:"action"`
			Target      string `json:"target"`
			PerformedBy string `json:"performedBy"`
			CreatedAt   string `json:"createdAt"`
		}
		out := make([]auditDTO, 0, len(logs))
		for _, l := range logs {
			out = append(out, auditDTO{
				ID:          l.ID,
				Action:      l.Action,
				Target:      l.Target,
				PerformedBy: l.PerformedBy,
				CreatedAt:   l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"logs": out})
	}
}
