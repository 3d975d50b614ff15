package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/database"
	"github.com/learnage/portal/internal/handler"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/repository"
	"github.com/learnage/portal/internal/router"
	"github.com/learnage/portal/internal/service"
	"github.com/learnage/portal/internal/session"
	"github.com/learnage/portal/internal/validator"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/learnage/portal/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("identity_provider", cfg.IdentityProvider).
		Msg("Starting Learnage Portal")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	homeworkRepo := repository.NewHomeworkRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	// ─── Identity Provider ─────────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)

	var (
		verifier identity.Verifier
		external handler.ExternalSignIn
	)
	switch cfg.IdentityProvider {
	case config.IdentityProviderLocal:
		verifier = authService
	case config.IdentityProviderCasdoor:
		casdoor := identity.NewCasdoorVerifier(cfg.Casdoor, log)
		verifier = casdoor
		external = casdoor
	default:
		log.Fatal().Str("provider", cfg.IdentityProvider).Msg("Unknown identity provider")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	userService := service.NewUserService(userRepo, authService)
	verificationService := service.NewVerificationService(verifier, userRepo)
	studentService := service.NewStudentService(userRepo, attendanceRepo, homeworkRepo)
	teacherService := service.NewTeacherService(userRepo, attendanceRepo, homeworkRepo, userService)
	parentService := service.NewParentService(userRepo, studentService)
	messageService := service.NewMessageService(messageRepo, rdb, log)
	exportService := service.NewExportService()

	resolver := session.NewResolver(verificationService, log)
	hub := ws.NewHub(log)

	portalServices := handler.PortalServices{
		Users:        userService,
		Verification: verificationService,
		Students:     studentService,
		Teachers:     teacherService,
		Parents:      parentService,
		Messages:     messageService,
	}
	if external == nil {
		portalServices.Auth = authService
	}

	redisPing := handler.PingFunc(database.PingRedis(rdb))

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, userService, verificationService),
		Student: handler.NewStudentHandler(studentService),
		Teacher: handler.NewTeacherHandler(teacherService, exportService),
		Parent:  handler.NewParentHandler(parentService),
		Message: handler.NewMessageHandler(messageService),
		Portal:  handler.NewPortalHandler(cfg, portalServices, external, log),
		WS:      handler.NewWSHandler(messageService, hub, cfg.ChatHistoryLimit, log, cfg.AllowedOrigins),
		Events:  handler.NewEventsHandler(rdb, messageService, cfg.ChatHistoryLimit, log),
		System:  handler.NewSystemHandler(map[string]handler.Pinger{"postgres": pool, "redis": redisPing}, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	relay := worker.NewChatRelayWorker(rdb, messageService, hub, cfg.ChatHistoryLimit, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		relay.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(cfg, router.Deps{
		Verifier:     verificationService,
		Resolver:     resolver,
		LoginLimiter: middleware.NewRateLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow),
		Log:          log,
	}, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for them to return.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
