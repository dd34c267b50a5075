// Package app wires configuration, adapters, and usecases into a runnable
// HTTP application.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/firstroundai/interviewd/internal/adapter/httpserver"
	"github.com/firstroundai/interviewd/internal/adapter/observability"
	"github.com/firstroundai/interviewd/internal/config"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces.
// Empty input means allow-all.
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middleware and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpserver.RequestID)
	r.Use(httpserver.Timeout(60 * time.Second))
	r.Use(httpserver.AccessLog)
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))

		api.Post("/interviews/start", srv.StartInterviewHandler())
		api.Post("/interviews/start-invited", srv.StartInvitedHandler())
		api.Post("/interviews/answer", srv.SubmitAnswerHandler())
		api.Get("/interviews/{id}", srv.GetInterviewHandler())

		api.Get("/invitations/{token}", srv.GetInvitationHandler())
		api.Get("/candidates/results", srv.CandidateResultsHandler())
		api.Get("/candidates/{id}/results", srv.CandidateResultsByIDHandler())
		api.Post("/candidates/{id}/disqualify", srv.ReportDisqualificationHandler())

		api.Post("/auth/signup", srv.SignupHandler())
		api.Post("/auth/login", srv.LoginHandler())
		api.Post("/auth/logout", srv.LogoutHandler())
		api.Post("/auth/forgot-password", srv.ForgotPasswordHandler())
		api.Get("/auth/validate-reset-token", srv.ValidateResetTokenHandler())
		api.Post("/auth/reset-password", srv.ResetPasswordHandler())

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(srv.Sessions.RequireAdmin)
			admin.Post("/extract-resume-info", srv.ExtractResumeHandler())
			admin.Post("/bulk-resume-upload", srv.BulkResumeUploadHandler())
			admin.Post("/send-interview-invite", srv.SendInviteHandler())
			admin.Get("/candidates", srv.ListCandidatesHandler())
			admin.Delete("/candidates/{id}", srv.DeleteCandidateHandler())
			admin.Post("/candidates/{id}/disqualify", srv.DisqualifyCandidateHandler())
			admin.Get("/interviews", srv.ListInterviewsHandler())
			admin.Delete("/interviews/{id}", srv.DeleteInterviewHandler())
			admin.Get("/stats", srv.StatsHandler())
			admin.Get("/ai-provider", srv.GetAIProviderHandler())
			admin.Post("/ai-provider", srv.SetAIProviderHandler())
			admin.Get("/audit-logs", srv.AuditLogsHandler())
		})
	})

	r.Get("/healthz", httpserver.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	handler := httpserver.SecurityHeaders(r)
	return otelhttp.NewHandler(handler, "http.server")
}
