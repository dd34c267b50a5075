package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// InvitationService issues one-time interview invitations and resolves
// their tokens. Tokens are structurally unique (candidate id + email +
// timestamp + random bytes) with a unique index as defense in depth.
type InvitationService struct {
	cfg         config.Config
	invitations domain.InvitationRepository
	candidates  domain.CandidateRepository
	mailer      domain.Mailer
	now         func() time.Time
}

// NewInvitationService wires the invitation manager.
func NewInvitationService(cfg config.Config, invitations domain.InvitationRepository, candidates domain.CandidateRepository, mailer domain.Mailer) *InvitationService {
	return &InvitationService{
		cfg:         cfg,
		invitations: invitations,
		candidates:  candidates,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Issue creates (or reuses) the candidate record for the invitee, marks it
// invited, persists the invitation, and emails the interview link.
func (s *InvitationService) Issue(ctx domain.Context, info domain.CandidateSnapshot, jobRole, skillset string) (token, candidateID string, err error) {
	email := strings.TrimSpace(strings.ToLower(info.Email))
	if email == "" {
		return "", "", fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(jobRole) == "" {
		return "", "", fmt.Errorf("%w: job role is required", domain.ErrInvalidArgument)
	}
	info.Email = email

	existing, err := s.candidates.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if len(existing) > 0 {
		c := existing[0]
		c.JobRole = jobRole
		c.Invited = true
		if info.Name != "" {
			c.Name = info.Name
		}
		if info.Phone != "" {
			c.Phone = info.Phone
		}
		if info.ResumeText != "" {
			c.ResumeText = info.ResumeText
		}
		if err := s.candidates.Update(ctx, c); err != nil {
			return "", "", err
		}
		candidateID = c.ID
	} else {
		candidateID, err = s.candidates.Create(ctx, domain.Candidate{
			Name:       info.Name,
			Email:      email,
			Phone:      info.Phone,
			JobRole:    jobRole,
			ResumeText: info.ResumeText,
			Invited:    true,
		})
		if err != nil {
			return "", "", err
		}
	}

	token = s.newToken(candidateID, email)
	if _, err := s.invitations.Create(ctx, domain.Invitation{
		CandidateID:   candidateID,
		Email:         email,
		Token:         token,
		JobRole:       jobRole,
		Skillset:      skillset,
		Status:        domain.InvitationPending,
		CandidateInfo: info,
	}); err != nil {
		return "", "", err
	}

	link := fmt.Sprintf("%s/invite/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
	body := fmt.Sprintf("Hello %s,\n\nYou have been invited to interview for the %s role.\n\nAccept your invitation here: %s\n", info.Name, jobRole, link)
	if err := s.mailer.Send(ctx, email, "Your interview invitation", body); err != nil {
		// Mail failure does not void the invitation; the token is returned
		// to the admin regardless.
		slog.Warn("invitation email failed", slog.String("email", email), slog.Any("error", err))
	}
	return token, candidateID, nil
}

// newToken builds the opaque invitation token. Uniqueness is structural;
// the storage layer's unique index backstops it.
func (s *InvitationService) newToken(candidateID, email string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%s-%d-%s", candidateID, email, s.now().UnixMilli(), hex.EncodeToString(buf))
}

// Resolve returns the invitation for a token. Expired invitations (when a
// TTL is configured) are indistinguishable from unknown tokens.
func (s *InvitationService) Resolve(ctx domain.Context, token string) (domain.Invitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return domain.Invitation{}, err
	}
	if s.cfg.InviteTTL > 0 && s.now().Sub(inv.CreatedAt) > s.cfg.InviteTTL {
		return domain.Invitation{}, fmt.Errorf("%w: invitation expired", domain.ErrNotFound)
	}
	return inv, nil
}

// MarkAccepted transitions pending -> accepted exactly once. Accepting an
// already-accepted invitation is a no-op; an email mismatch is a conflict
// and leaves the invitation pending.
func (s *InvitationService) MarkAccepted(ctx domain.Context, token, email string) error {
	inv, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if inv.Status == domain.InvitationAccepted {
		return nil
	}
	if !strings.EqualFold(inv.Email, strings.TrimSpace(email)) {
		return fmt.Errorf("%w: invitation email mismatch", domain.ErrConflict)
	}
	return s.invitations.UpdateStatus(ctx, token, domain.InvitationAccepted)
}
