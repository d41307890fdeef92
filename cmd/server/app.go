package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fastlesson/fastlesson-api/internal/api"
	apimiddleware "github.com/fastlesson/fastlesson-api/internal/api/middleware"
	"github.com/fastlesson/fastlesson-api/internal/config"
	"github.com/fastlesson/fastlesson-api/internal/events"
	"github.com/fastlesson/fastlesson-api/internal/generation"
	"github.com/fastlesson/fastlesson-api/internal/platform/gemini"
	"github.com/fastlesson/fastlesson-api/internal/platform/groq"
	"github.com/fastlesson/fastlesson-api/internal/platform/postgres"
	"github.com/fastlesson/fastlesson-api/internal/service"
	"github.com/fastlesson/fastlesson-api/internal/task"
)

const shutdownTimeout = 10 * time.Second

// application bundles the assembled dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	lessonService  service.LessonService
	improveService service.ImproveService
	userService    service.UserService
	taskRunner     *task.TaskRunner
}

// newApplication connects to the database, runs migrations, and wires the
// stores, generation stack, services, and background task machinery.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Stores
	lessonStore := postgres.NewPostgresLessonStore(db, logger)
	sectionStore := postgres.NewPostgresSectionStore(db, logger)
	progressStore := postgres.NewPostgresProgressStore(db, logger)
	improveStore := postgres.NewPostgresImproveJobStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)
	usageStore := postgres.NewPostgresUsageStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	// Generation stack
	geminiClient, err := gemini.NewClient(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	groqClient, err := groq.NewClient(logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}

	registry := generation.NewClientRegistry()
	registry.Register(generation.ProviderGoogle, geminiClient)
	registry.Register(generation.ProviderGroq, groqClient)

	dispatcher, err := generation.NewDispatcher(
		generation.DefaultCatalog(), registry, usageStore, cfg.Generation.ShuffleSeed, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// Events and services
	eventEmitter := events.NewInMemoryEventEmitter(logger)

	lessonService, err := service.NewLessonService(
		db, lessonStore, sectionStore, progressStore, userStore, eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson service: %w", err)
	}

	improveService, err := service.NewImproveService(
		db, improveStore, sectionStore, eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create improve service: %w", err)
	}

	userService, err := service.NewUserService(userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	// Background task machinery
	runnerConfig := task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
	taskRunner := task.NewTaskRunner(taskStore, runnerConfig, logger)

	lessonFactory := task.NewLessonGenerationTaskFactory(lessonService, dispatcher, logger)
	improveFactory := task.NewSectionImproveTaskFactory(improveService, dispatcher, logger)

	// The same factories serve fresh submissions (via the event handler)
	// and crash recovery (via the task store).
	taskStore.RegisterFactory(task.TaskTypeLessonGeneration, lessonFactory)
	taskStore.RegisterFactory(task.TaskTypeSectionImprove, improveFactory)

	eventHandler := task.NewTaskFactoryEventHandler(taskRunner, logger)
	eventHandler.RegisterFactory(task.TaskTypeLessonGeneration, lessonFactory)
	eventHandler.RegisterFactory(task.TaskTypeSectionImprove, improveFactory)
	eventEmitter.RegisterHandler(eventHandler)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		lessonService:  lessonService,
		improveService: improveService,
		userService:    userService,
		taskRunner:     taskRunner,
	}, nil
}

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	lessonHandler := api.NewLessonHandler(app.lessonService)
	improveHandler := api.NewImproveHandler(app.improveService)
	userHandler := api.NewUserHandler(app.userService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.CreateUser)
		r.Get("/users/{id}", userHandler.GetUser)

		r.Post("/lessons", lessonHandler.CreateLesson)
		r.Get("/lessons/{id}/progress", lessonHandler.GetProgress)
		r.Get("/lessons/{id}/sections", lessonHandler.GetSections)

		r.Post("/sections/{id}/improve", improveHandler.ImproveSection)
		r.Get("/improvements/{id}", improveHandler.GetImproveJob)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// Run starts the task runner and the HTTP server, blocking until ctx is
// cancelled, then shuts both down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		app.taskRunner.Stop()
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
	}

	// Waits for in-flight tasks before the database closes beneath them.
	app.taskRunner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}

	return nil
}
