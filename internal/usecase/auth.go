package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/service/password"
)

// AuthService handles signup, login, and password resets. It consults the
// candidate store so a disqualified candidate can never log in, invitation
// or not.
type AuthService struct {
	cfg         config.Config
	users       domain.UserRepository
	resets      domain.PasswordResetRepository
	candidates  domain.CandidateRepository
	invitations *InvitationService
	mailer      domain.Mailer
	now         func() time.Time
}

// NewAuthService wires the auth flows.
func NewAuthService(cfg config.Config, users domain.UserRepository, resets domain.PasswordResetRepository, candidates domain.CandidateRepository, invitations *InvitationService, mailer domain.Mailer) *AuthService {
	return &AuthService{
		cfg:         cfg,
		users:       users,
		resets:      resets,
		candidates:  candidates,
		invitations: invitations,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Signup creates a candidate account. When an invitation token is supplied
// and its email matches, the invitation is accepted; a mismatched token is
// ignored (the invitation stays pending) but the signup itself proceeds.
// A supplied display name fills in a candidate record whose name is still
// the extraction placeholder.
func (s *AuthService) Signup(ctx domain.Context, name, email, pw, inviteToken string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || len(pw) < 8 {
		return domain.User{}, fmt.Errorf("%w: email and a password of at least 8 characters are required", domain.ErrInvalidArgument)
	}
	if s.isDisqualified(ctx, email) {
		return domain.User{}, fmt.Errorf("%w: candidate is disqualified", domain.ErrConflict)
	}

	hash, err := password.Hash(pw, password.DefaultParams)
	if err != nil {
		return domain.User{}, fmt.Errorf("op=auth.signup: %w", err)
	}
	u := domain.User{Email: email, PasswordHash: hash, Role: "candidate"}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id

	if inviteToken != "" {
		if err := s.invitations.MarkAccepted(ctx, inviteToken, email); err != nil {
			// Mismatch or stale token leaves the invitation untouched.
			slog.Warn("invitation not accepted at signup",
				slog.String("email", email), slog.Any("error", err))
		}
	}
	if name = strings.TrimSpace(name); name != "" {
		s.adoptCandidateName(ctx, email, name)
	}
	return u, nil
}

// adoptCandidateName fills the candidate's name when extraction left only
// the placeholder. Real extracted names are never overwritten.
func (s *AuthService) adoptCandidateName(ctx domain.Context, email, name string) {
	cands, err := s.candidates.FindByEmail(ctx, email)
	if err != nil || len(cands) == 0 {
		return
	}
	c := cands[0]
	if c.Name != "" && c.Name != domain.NotSpecified {
		return
	}
	c.Name = name
	if err := s.candidates.Update(ctx, c); err != nil {
		slog.Warn("candidate name not updated at signup",
			slog.String("email", email), slog.Any("error", err))
	}
}

// Login verifies credentials. Disqualified candidates are rejected even
// with a correct password.
func (s *AuthService) Login(ctx domain.Context, email, pw string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return domain.User{}, err
	}
	if !password.Verify(pw, u.PasswordHash) {
		return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if u.Role != "admin" && s.isDisqualified(ctx, email) {
		return domain.User{}, fmt.Errorf("%w: candidate is disqualified", domain.ErrConflict)
	}
	return u, nil
}

func (s *AuthService) isDisqualified(ctx domain.Context, email string) bool {
	cands, err := s.candidates.FindByEmail(ctx, email)
	if err != nil {
		return false
	}
	for _, c := range cands {
		if c.Disqualified {
			return true
		}
	}
	return false
}

// ForgotPassword issues a persisted single-use reset token and mails the
// reset link. Unknown emails are silently accepted so the endpoint does not
// leak which accounts exist.
func (s *AuthService) ForgotPassword(ctx domain.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("op=auth.forgot: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.resets.Create(ctx, domain.PasswordReset{
		Token:     token,
		Email:     email,
		ExpiresAt: s.now().Add(s.cfg.ResetTokenTTL),
	}); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
	body := fmt.Sprintf("A password reset was requested for this address.\n\nReset your password here (valid for %s): %s\n", s.cfg.ResetTokenTTL, link)
	if err := s.mailer.Send(ctx, email, "Password reset", body); err != nil {
		slog.Warn("password reset email failed", slog.String("email", email), slog.Any("error", err))
	}
	return nil
}

// ValidateResetToken reports whether a reset token is still usable.
func (s *AuthService) ValidateResetToken(ctx domain.Context, token string) error {
	pr, err := s.resets.Get(ctx, token)
	if err != nil {
		return err
	}
	if pr.UsedAt != nil || s.now().After(pr.ExpiresAt) {
		return fmt.Errorf("%w: reset token expired", domain.ErrNotFound)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password. The token
// is single-use; a raced second consumption fails with ErrConflict.
func (s *AuthService) ResetPassword(ctx domain.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidArgument)
	}
	pr, err := s.resets.Get(ctx, token)
	if err != nil {
		return err
	}
	if pr.UsedAt != nil || s.now().After(pr.ExpiresAt) {
		return fmt.Errorf("%w: reset token expired", domain.ErrNotFound)
	}
	if err := s.resets.MarkUsed(ctx, token); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword, password.DefaultParams)
	if err != nil {
		return fmt.Errorf("op=auth.reset: %w", err)
	}
	return s.users.UpdatePassword(ctx, pr.Email, hash)
}
