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

// PostgresLessonStore implements the store.LessonStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a new PostgreSQL implementation of the
// LessonStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

// Ensure PostgresLessonStore implements store.LessonStore interface
var _ store.LessonStore = (*PostgresLessonStore)(nil)

// Create implements store.LessonStore.Create
// It saves a new lesson to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the creator ID doesn't exist.
func (s *PostgresLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		log.Warn("lesson validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return err
	}

	query := `
		INSERT INTO lessons (id, creator_id, title, subject, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		lesson.ID,
		lesson.CreatorID,
		lesson.Title,
		lesson.Subject,
		lesson.Level,
		lesson.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during lesson creation",
				slog.String("error", err.Error()),
				slog.String("lesson_id", lesson.ID.String()),
				slog.String("creator_id", lesson.CreatorID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, lesson.CreatorID)
		}

		log.Error("failed to create lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return err
	}

	log.Info("lesson created successfully",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("creator_id", lesson.CreatorID.String()),
		slog.String("subject", string(lesson.Subject)))
	return nil
}

// GetByID implements store.LessonStore.GetByID
// Returns store.ErrLessonNotFound if the lesson does not exist.
func (s *PostgresLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, creator_id, title, subject, level, created_at
		FROM lessons
		WHERE id = $1
	`

	var lesson domain.Lesson
	var subject, level string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CreatorID,
		&lesson.Title,
		&subject,
		&level,
		&lesson.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.String("lesson_id", id.String()))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson by ID",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return nil, err
	}

	lesson.Subject = domain.Subject(subject)
	lesson.Level = domain.Level(level)

	return &lesson, nil
}

// WithTx implements store.LessonStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return &PostgresLessonStore{
		db:     tx,
		logger: s.logger,
	}
}
