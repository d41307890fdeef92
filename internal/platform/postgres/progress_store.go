package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/platform/logger"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Create implements store.ProgressStore.Create
// Returns store.ErrInvalidEntity if the lesson ID doesn't exist and
// store.ErrDuplicate if the lesson already has a progress record.
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.GenerationProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	query := `
		INSERT INTO generation_progress (id, lesson_id, total, completed, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID,
		progress.LessonID,
		progress.Total,
		progress.Completed,
		progress.Status,
		progress.CreatedAt,
		progress.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case foreignKeyViolationCode:
				return fmt.Errorf("%w: lesson with ID %s not found",
					store.ErrInvalidEntity, progress.LessonID)
			case uniqueViolationCode:
				return fmt.Errorf("%w: progress for lesson %s",
					store.ErrDuplicate, progress.LessonID)
			}
		}

		log.Error("failed to create generation progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	log.Info("generation progress created",
		slog.String("progress_id", progress.ID.String()),
		slog.String("lesson_id", progress.LessonID.String()))
	return nil
}

// GetByLessonID implements store.ProgressStore.GetByLessonID
// Returns store.ErrProgressNotFound if no record exists for the lesson.
func (s *PostgresProgressStore) GetByLessonID(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, total, completed, status, created_at, updated_at
		FROM generation_progress
		WHERE lesson_id = $1
	`

	var progress domain.GenerationProgress
	var status string

	err := s.db.QueryRowContext(ctx, query, lessonID).Scan(
		&progress.ID,
		&progress.LessonID,
		&progress.Total,
		&progress.Completed,
		&status,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generation progress not found",
				slog.String("lesson_id", lessonID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get generation progress",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, err
	}

	progress.Status = domain.GenerationStatus(status)

	return &progress, nil
}

// Update implements store.ProgressStore.Update
// Returns store.ErrProgressNotFound if the record does not exist.
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.GenerationProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	query := `
		UPDATE generation_progress
		SET total = $1, completed = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.Total,
		progress.Completed,
		progress.Status,
		progress.UpdatedAt,
		progress.ID,
	)

	if err != nil {
		log.Error("failed to update generation progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrProgressNotFound); err != nil {
		log.Debug("generation progress not found for update",
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	log.Debug("generation progress updated",
		slog.String("progress_id", progress.ID.String()),
		slog.Int("total", progress.Total),
		slog.Int("completed", progress.Completed),
		slog.String("status", string(progress.Status)))
	return nil
}

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
