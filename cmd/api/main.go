package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinica-api/internal/config"
	"github.com/jwalitptl/clinica-api/internal/email"
	"github.com/jwalitptl/clinica-api/internal/handler"
	authHandler "github.com/jwalitptl/clinica-api/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/clinica-api/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/clinica-api/internal/handler/doctor"
	patientHandler "github.com/jwalitptl/clinica-api/internal/handler/patient"
	studyHandler "github.com/jwalitptl/clinica-api/internal/handler/study"
	studytypeHandler "github.com/jwalitptl/clinica-api/internal/handler/studytype"
	"github.com/jwalitptl/clinica-api/internal/middleware"
	"github.com/jwalitptl/clinica-api/internal/repository/postgres"
	"github.com/jwalitptl/clinica-api/internal/router"
	authService "github.com/jwalitptl/clinica-api/internal/service/auth"
	dashboardService "github.com/jwalitptl/clinica-api/internal/service/dashboard"
	doctorService "github.com/jwalitptl/clinica-api/internal/service/doctor"
	patientService "github.com/jwalitptl/clinica-api/internal/service/patient"
	studyService "github.com/jwalitptl/clinica-api/internal/service/study"
	studytypeService "github.com/jwalitptl/clinica-api/internal/service/studytype"
	pkgauth "github.com/jwalitptl/clinica-api/pkg/auth"
	"github.com/jwalitptl/clinica-api/pkg/logger"
	"github.com/jwalitptl/clinica-api/pkg/security"
	"github.com/jwalitptl/clinica-api/pkg/storage"
)

func main() {
	lg := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		lg.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	store, err := storage.NewS3Storage(context.Background(), cfg.Storage)
	if err != nil {
		lg.Fatal(err, "failed to initialize object storage")
	}

	tokens, err := pkgauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	if err != nil {
		lg.Fatal(err, "failed to initialize token service")
	}

	hasher := security.NewBcryptHasher(0)
	notifier := email.NewNotifier(cfg.SMTP)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	studyRepo := postgres.NewStudyRepository(db)
	studyTypeRepo := postgres.NewStudyTypeRepository(db)

	// Services
	authSvc := authService.NewService(userRepo, adminRepo, doctorRepo, patientRepo, hasher, tokens)
	doctorSvc := doctorService.NewService(doctorRepo, userRepo, hasher, notifier)
	patientSvc := patientService.NewService(patientRepo, doctorRepo, userRepo, hasher)
	studySvc := studyService.NewService(studyRepo, patientRepo, store)
	studyTypeSvc := studytypeService.NewService(studyTypeRepo)
	dashboardSvc := dashboardService.NewService(patientRepo, studyRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		studyHandler.NewHandler(studySvc, doctorRepo),
		studytypeHandler.NewHandler(studyTypeSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		h,
		router.Config{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MetricsPrefix: "clinica",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		lg.Info(fmt.Sprintf("starting server on port %d", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Fatal(err, "server forced to shutdown")
	}

	lg.Info("server exited properly")
}
