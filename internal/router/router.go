package router

import (
	"context"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/handler"
	"github.com/akilliyazili/yazili-backend/internal/middleware"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Question *handler.QuestionHandler
	Exam     *handler.ExamHandler
	Class    *handler.ClassHandler
	File     *handler.FileHandler
	Health   *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// requireAuth is the token check built from the configured identity provider.
// Rate limiter janitors stop when ctx is cancelled.
func SetupRouter(
	ctx context.Context,
	requireAuth gin.HandlerFunc,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	// Client IPs key the rate limiters; only listed proxies may set them.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderLegacyToken}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Stored files and PDFs are streamed as is.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipPaths(
			[]string{"/api/files/download/", "/api/files/view/"},
			[]string{"/export"},
		),
	}))

	router.GET("/", handlers.Health.Banner)
	router.GET("/health", handlers.Health.Health)
	router.GET("/health/ready", handlers.Health.Ready)

	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute)
	generateLimiter := middleware.NewRateLimiter(ctx, cfg.GenerateRateLimit, time.Minute)

	api := router.Group("/api")
	api.Use(middleware.NoStore())

	// ─── 1. Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Users ──────────────────────────────────────────────────────
	users := api.Group("/users", requireAuth)
	{
		users.GET("", middleware.RequireRole(model.RoleAdmin), handlers.User.ListUsers)
		users.GET("/profile", handlers.User.GetProfile)
		users.PUT("/profile", handlers.User.UpdateProfile)
	}

	// ─── 3. Questions ──────────────────────────────────────────────────
	questions := api.Group("/questions", requireAuth)
	{
		questions.GET("", handlers.Question.ListQuestions)
		questions.POST("", handlers.Question.CreateQuestion)
		questions.POST("/generate", generateLimiter.Middleware(), handlers.Question.GenerateQuestions)
		questions.POST("/extract", generateLimiter.Middleware(), handlers.Question.ExtractQuestions)
		questions.GET("/:id", handlers.Question.GetQuestion)
		questions.PUT("/:id", handlers.Question.UpdateQuestion)
		questions.DELETE("/:id", handlers.Question.DeleteQuestion)
	}

	// ─── 4. Exams ──────────────────────────────────────────────────────
	exams := api.Group("/exams", requireAuth)
	{
		exams.GET("", handlers.Exam.ListExams)
		exams.POST("", handlers.Exam.CreateExam)
		exams.POST("/generate", generateLimiter.Middleware(), handlers.Exam.GenerateExam)
		exams.GET("/:id", handlers.Exam.GetExam)
		exams.PUT("/:id", handlers.Exam.UpdateExam)
		exams.DELETE("/:id", handlers.Exam.DeleteExam)
		exams.GET("/:id/export", handlers.Exam.ExportExam)
		exams.POST("/:id/submit", middleware.RequireRole(model.RoleStudent), handlers.Exam.SubmitExam)
	}

	// ─── 5. Classes ────────────────────────────────────────────────────
	classes := api.Group("/classes", requireAuth)
	{
		classes.GET("", handlers.Class.ListClasses)
		classes.POST("", middleware.RequireRole(model.RoleTeacher, model.RoleAdmin), handlers.Class.CreateClass)
		classes.POST("/join", middleware.RequireRole(model.RoleStudent), handlers.Class.JoinClass)
		classes.GET("/:id", handlers.Class.GetClass)
		classes.PUT("/:id", handlers.Class.UpdateClass)
		classes.DELETE("/:id", handlers.Class.DeleteClass)
		classes.POST("/:id/exams", middleware.RequireRole(model.RoleTeacher, model.RoleAdmin), handlers.Class.AssignExam)
	}

	// ─── 6. Files ──────────────────────────────────────────────────────
	files := api.Group("/files")
	{
		files.POST("/upload", requireAuth, handlers.File.UploadFile)
		files.POST("/upload/multiple", requireAuth, handlers.File.UploadFiles)
		files.GET("/list", requireAuth, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin), handlers.File.ListFiles)
		files.GET("/my-files", requireAuth, handlers.File.MyFiles)
		files.DELETE("/:id", requireAuth, handlers.File.DeleteFile)
	}

	// Blobs never change under the same id.
	blobs := router.Group("/api/files", middleware.CacheControl(86400))
	{
		blobs.GET("/download/:id", handlers.File.DownloadFile)
		blobs.GET("/view/:id", handlers.File.ViewFile)
	}

	return router
}
