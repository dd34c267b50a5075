package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/firstroundai/interviewd/internal/domain"
)

type signupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	InviteToken string `json:"inviteToken"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SignupHandler registers a candidate account and, when an invitation token
// accompanies it, marks the invitation accepted.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		u, err := s.Auth.Signup(r.Context(), req.Name, req.Email, req.Password, req.InviteToken)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Sessions.SetCookie(w, s.Sessions.Issue(u.Email, u.Role))
		writeJSON(w, http.StatusCreated, userResponse{Email: u.Email, Role: u.Role})
	}
}

// LoginHandler authenticates a user and issues a session cookie.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		u, err := s.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Sessions.SetCookie(w, s.Sessions.Issue(u.Email, u.Role))
		writeJSON(w, http.StatusOK, userResponse{Email: u.Email, Role: u.Role})
	}
}

// LogoutHandler clears the session cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.Sessions.ClearCookie(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordHandler issues a reset token. The response is identical for
// known and unknown emails so the endpoint cannot be used for enumeration.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "If the email is registered, a reset link has been sent.",
		})
	}
}

// ValidateResetTokenHandler lets the reset page verify a token before
// showing the form.
func (s *Server) ValidateResetTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			writeError(w, fmt.Errorf("%w: token query parameter is required", domain.ErrInvalidArgument))
			return
		}
		if err := s.Auth.ValidateResetToken(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	}
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ResetPasswordHandler consumes a reset token and sets the new password.
func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}
