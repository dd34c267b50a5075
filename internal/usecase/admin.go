package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// AdminService backs the admin surface: dashboards, destructive candidate
// actions (audited), and runtime AI provider selection.
type AdminService struct {
	cfg         config.Config
	candidates  domain.CandidateRepository
	interviews  domain.InterviewRepository
	invitations domain.InvitationRepository
	settings    domain.SettingRepository
	audit       domain.AuditLogRepository
}

// SettingAIProvider is the settings key holding the active provider name.
const SettingAIProvider = "ai_provider"

// NewAdminService wires the admin operations.
func NewAdminService(cfg config.Config, candidates domain.CandidateRepository, interviews domain.InterviewRepository, invitations domain.InvitationRepository, settings domain.SettingRepository, audit domain.AuditLogRepository) *AdminService {
	return &AdminService{
		cfg:         cfg,
		candidates:  candidates,
		interviews:  interviews,
		invitations: invitations,
		settings:    settings,
		audit:       audit,
	}
}

// Stats computes the dashboard rollup.
func (s *AdminService) Stats(ctx domain.Context) (domain.InterviewStats, error) {
	total, err := s.candidates.Count(ctx)
	if err != nil {
		return domain.InterviewStats{}, err
	}
	inProgress, err := s.interviews.CountByStatus(ctx, domain.InterviewInProgress)
	if err != nil {
		return domain.InterviewStats{}, err
	}
	completed, err := s.interviews.CountByStatus(ctx, domain.InterviewCompleted)
	if err != nil {
		return domain.InterviewStats{}, err
	}
	pending, err := s.invitations.CountByStatus(ctx, domain.InvitationPending)
	if err != nil {
		return domain.InterviewStats{}, err
	}
	return domain.InterviewStats{
		TotalCandidates:     total,
		TotalInterviews:     inProgress + completed,
		CompletedInterviews: completed,
		PendingInvitations:  pending,
	}, nil
}

// ListCandidates returns all candidates, newest first.
func (s *AdminService) ListCandidates(ctx domain.Context) ([]domain.Candidate, error) {
	return s.candidates.List(ctx)
}

// ListInterviews returns all interviews, newest first.
func (s *AdminService) ListInterviews(ctx domain.Context) ([]domain.Interview, error) {
	return s.interviews.List(ctx)
}

// DeleteCandidate removes a candidate (interviews, answers, and evaluations
// cascade) and records the action.
func (s *AdminService) DeleteCandidate(ctx domain.Context, id, performedBy string) error {
	if err := s.candidates.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "candidate.delete", id, performedBy)
	return nil
}

// DisqualifyCandidate sets the disqualified flag. It is idempotent and the
// flag is never cleared.
func (s *AdminService) DisqualifyCandidate(ctx domain.Context, id, performedBy string) error {
	if err := s.candidates.Disqualify(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "candidate.disqualify", id, performedBy)
	return nil
}

// DeleteInterview removes one interview (answers and evaluation cascade)
// and records the action. The candidate record stays.
func (s *AdminService) DeleteInterview(ctx domain.Context, id, performedBy string) error {
	if err := s.interviews.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "interview.delete", id, performedBy)
	return nil
}

func (s *AdminService) recordAudit(ctx domain.Context, action, target, performedBy string) {
	if _, err := s.audit.Create(ctx, domain.AuditLog{
		Action:      action,
		Target:      target,
		PerformedBy: performedBy,
	}); err != nil {
		slog.Warn("audit log write failed", slog.String("action", action), slog.Any("error", err))
	}
}

// AuditLogs lists recorded admin actions, optionally filtered.
func (s *AdminService) AuditLogs(ctx domain.Context, action, performedBy string) ([]domain.AuditLog, error) {
	return s.audit.List(ctx, action, performedBy)
}

// AIProvider returns the active extraction provider: the persisted setting
// when present, the configured default otherwise.
func (s *AdminService) AIProvider(ctx domain.Context) (string, error) {
	v, err := s.settings.Get(ctx, SettingAIProvider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.cfg.AIProvider, nil
		}
		return "", err
	}
	return v, nil
}

// SetAIProvider persists the provider preference. The caller is responsible
// for rebuilding the extraction pipeline with the new ordering.
func (s *AdminService) SetAIProvider(ctx domain.Context, provider, performedBy string) error {
	if provider != "openai" && provider != "gemini" {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidArgument, provider)
	}
	if err := s.settings.Set(ctx, SettingAIProvider, provider); err != nil {
		return err
	}
	s.recordAudit(ctx, "settings.ai_provider", provider, performedBy)
	return nil
}
