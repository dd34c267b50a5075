// Command server starts the interview platform HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/firstroundai/interviewd/internal/adapter/ai/gemini"
	"github.com/firstroundai/interviewd/internal/adapter/ai/openai"
	"github.com/firstroundai/interviewd/internal/adapter/email"
	"github.com/firstroundai/interviewd/internal/adapter/httpserver"
	"github.com/firstroundai/interviewd/internal/adapter/observability"
	"github.com/firstroundai/interviewd/internal/adapter/repo/postgres"
	"github.com/firstroundai/interviewd/internal/adapter/textextractor/tika"
	"github.com/firstroundai/interviewd/internal/app"
	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/internal/extract"
	"github.com/firstroundai/interviewd/internal/service/password"
	"github.com/firstroundai/interviewd/internal/service/ratelimiter"
	"github.com/firstroundai/interviewd/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	candidates := postgres.NewCandidateRepo(pool)
	interviews := postgres.NewInterviewRepo(pool)
	answers := postgres.NewAnswerRepo(pool)
	evaluations := postgres.NewEvaluationRepo(pool)
	invitations := postgres.NewInvitationRepo(pool)
	users := postgres.NewUserRepo(pool)
	resets := postgres.NewPasswordResetRepo(pool)
	settings := postgres.NewSettingRepo(pool)
	audit := postgres.NewAuditLogRepo(pool)

	// Optional Redis for answer throttling; absent Redis means no throttle.
	var (
		answerLimiter ratelimiter.Limiter
		redisCheck    func(domain.Context) error
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", slog.Any("error", err))
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		answerLimiter = ratelimiter.NewRedisLimiter(rdb, cfg.AnswerRatePerMin, time.Minute)
		redisCheck = func(ctx domain.Context) error { return rdb.Ping(ctx).Err() }
	}

	// AI providers. OpenAI is always constructable; Gemini needs its SDK
	// client up front. A failed Gemini init drops it from the cascade rather
	// than refusing to boot, since the pipeline already degrades past any
	// unavailable provider.
	var openaiAI domain.AIClient = openai.New(cfg)
	var geminiAI domain.AIClient
	if gc, err := gemini.New(ctx, cfg); err != nil {
		slog.Warn("gemini client init failed; extraction runs without it", slog.Any("error", err))
	} else {
		geminiAI = gc
	}

	buildOrchestrator := func(provider string) *extract.Orchestrator {
		if provider == "gemini" {
			return extract.NewCascade(cfg.AIPromptTokenBudget, geminiAI, openaiAI)
		}
		return extract.NewCascade(cfg.AIPromptTokenBudget, openaiAI, geminiAI)
	}

	provider := cfg.AIProvider
	if v, err := settings.Get(ctx, usecase.SettingAIProvider); err == nil && v != "" {
		provider = v
	}
	slog.Info("extraction pipeline ready", slog.String("provider", provider))

	extractor := tika.New(cfg.TikaURL)
	mailer := email.FromConfig(cfg)

	questionAI := openaiAI
	if provider == "gemini" && geminiAI != nil {
		questionAI = geminiAI
	}
	questionSvc, err := usecase.NewQuestionService(cfg, questionAI)
	if err != nil {
		slog.Error("question bank load failed", slog.Any("error", err))
		os.Exit(1)
	}

	uploadSvc := usecase.NewUploadService(cfg, extractor, candidates, questionAI, buildOrchestrator(provider))
	interviewSvc := usecase.NewInterviewService(cfg, candidates, interviews, answers, evaluations, questionSvc)
	invitationSvc := usecase.NewInvitationService(cfg, invitations, candidates, mailer)
	authSvc := usecase.NewAuthService(cfg, users, resets, candidates, invitationSvc, mailer)
	adminSvc := usecase.NewAdminService(cfg, candidates, interviews, invitations, settings, audit)

	if err := seedAdmin(ctx, cfg, users); err != nil {
		slog.Error("admin seed failed", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &httpserver.Server{
		Cfg:               cfg,
		Uploads:           uploadSvc,
		Interviews:        interviewSvc,
		Invitations:       invitationSvc,
		Auth:              authSvc,
		Admin:             adminSvc,
		Sessions:          httpserver.NewSessionManager(cfg),
		AnswerLimiter:     answerLimiter,
		BuildOrchestrator: buildOrchestrator,
		DBCheck:           func(ctx domain.Context) error { return pool.Ping(ctx) },
		RedisCheck:        redisCheck,
	}

	handler := app.BuildRouter(cfg, srv)
	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// seedAdmin creates the bootstrap admin account when credentials are
// configured. An existing account is left untouched.
func seedAdmin(ctx context.Context, cfg config.Config, users domain.UserRepository) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		slog.Warn("admin credentials not configured; admin surface disabled")
		return nil
	}
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	}
	hash, err := password.Hash(cfg.AdminPassword, password.DefaultParams)
	if err != nil {
		return fmt.Errorf("op=main.seedAdmin: %w", err)
	}
	_, err = users.Create(ctx, domain.User{Email: cfg.AdminEmail, PasswordHash: hash, Role: "admin"})
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("op=main.seedAdmin: %w", err)
	}
	return nil
}
