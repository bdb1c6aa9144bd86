package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/cache"
	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/database"
	"github.com/akilliyazili/yazili-backend/internal/generator"
	"github.com/akilliyazili/yazili-backend/internal/handler"
	"github.com/akilliyazili/yazili-backend/internal/identity"
	"github.com/akilliyazili/yazili-backend/internal/llm"
	"github.com/akilliyazili/yazili-backend/internal/logger"
	"github.com/akilliyazili/yazili-backend/internal/middleware"
	"github.com/akilliyazili/yazili-backend/internal/observability"
	"github.com/akilliyazili/yazili-backend/internal/ocr"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/router"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/storage"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/akilliyazili/yazili-backend/internal/worker"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("auth_provider", cfg.AuthProvider).
		Str("storage_driver", cfg.StorageDriver).
		Msg("Starting Akıllı Yazılı backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := observability.InitTracing(ctx, cfg, log)

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

	checks := map[string]handler.Check{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	// ─── Blob Store ────────────────────────────────────────────────────
	var blobs storage.Store
	switch cfg.StorageDriver {
	case config.StorageDriverGCS:
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open GCS bucket")
		}
		defer gcs.Close()
		blobs = gcs
	default:
		mc, err := database.NewMongoClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer disconnectMongo(mc, log)
		gridfs, err := storage.NewGridFSStore(mc.Database(cfg.MongoDatabase), cfg.BucketName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open GridFS bucket")
		}
		checks["mongo"] = func(ctx context.Context) error { return mc.Ping(ctx, readpref.Primary()) }
		blobs = gridfs
	}

	// ─── Identity ──────────────────────────────────────────────────────
	verifier, issuer, err := identity.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure identity provider")
	}

	// ─── Question Generation ───────────────────────────────────────────
	llmClient := llm.NewClient(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMModel, cfg.LLMTimeout)
	if !llmClient.IsAvailable() {
		log.Warn().Msg("LLM_API_KEY not set, AI generation and extraction are disabled")
	}
	registry := generator.NewRegistry(
		generator.NewBankStrategy(),
		generator.NewLLMStrategy(llmClient),
		generator.NewTriviaStrategy(cfg.TriviaAPIURL, cfg.TriviaTimeout),
	)

	var recognizer ocr.Recognizer = ocr.Disabled{}
	if cfg.OCREnabled {
		vision, err := ocr.NewVisionRecognizer(ctx, cfg.OCRTimeout, cfg.OCRMaxPDFPages, storage.ClientOptionsFromEnv()...)
		if err != nil {
			log.Error().Err(err).Msg("Vision client unavailable, OCR disabled")
		} else {
			defer vision.Close()
			recognizer = vision
		}
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	store := cache.New(rdb, cfg.ProfileCacheTTL, cfg.PDFCacheTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(userRepo, verifier, issuer, store, cfg.BcryptCost, log)
	userService := service.NewUserService(userRepo, store, log)
	questionService := service.NewQuestionService(
		questionRepo, registry, generator.NewExtractor(llmClient), recognizer, cfg.QuestionSourceDefault, log,
	)
	examService := service.NewExamService(examRepo, registry, store, store, cfg.ExamSourceDefault, log)
	classService := service.NewClassService(classRepo, examRepo, store, log)
	fileService := service.NewFileService(blobs, cfg.MaxUploadBytes, cfg.MaxUploadFiles, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Question: handler.NewQuestionHandler(questionService, cfg.MaxUploadBytes),
		Exam:     handler.NewExamHandler(examService),
		Class:    handler.NewClassHandler(classService),
		File:     handler.NewFileHandler(fileService),
		Health:   handler.NewHealthHandler(checks),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	submissionWorker := worker.NewSubmissionWorker(examRepo, worker.NewRedisQueue(rdb), log)
	go func() {
		submissionWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	requireAuth := middleware.RequireAuth(verifier, userService, store)
	r := router.SetupRouter(ctx, requireAuth, handlers, cfg, log)

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

	// 2. Stop the submission worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Submission worker did not drain in time")
	}

	// 3. Flush pending spans.
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

func disconnectMongo(mc *mongo.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect error")
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
