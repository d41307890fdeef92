package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/platform/logger"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// PostgresSectionStore implements the store.SectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSectionStore creates a new PostgreSQL implementation of the
// SectionStore interface. If logger is nil, a default logger will be used.
func NewPostgresSectionStore(db store.DBTX, logger *slog.Logger) *PostgresSectionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "section_store")),
	}
}

// Ensure PostgresSectionStore implements store.SectionStore interface
var _ store.SectionStore = (*PostgresSectionStore)(nil)

// Create implements store.SectionStore.Create
// Returns store.ErrInvalidEntity if the lesson ID doesn't exist.
func (s *PostgresSectionStore) Create(ctx context.Context, section *domain.Section) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := section.Validate(); err != nil {
		log.Warn("section validation failed during create",
			slog.String("error", err.Error()),
			slog.String("section_id", section.ID.String()))
		return err
	}

	query := `
		INSERT INTO sections (id, lesson_id, position, title, content, has_task, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		section.ID,
		section.LessonID,
		section.Position,
		section.Title,
		section.Content,
		section.HasTask,
		section.CreatedAt,
		section.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during section creation",
				slog.String("error", err.Error()),
				slog.String("section_id", section.ID.String()),
				slog.String("lesson_id", section.LessonID.String()))
			return fmt.Errorf("%w: lesson with ID %s not found",
				store.ErrInvalidEntity, section.LessonID)
		}

		log.Error("failed to create section",
			slog.String("error", err.Error()),
			slog.String("section_id", section.ID.String()))
		return err
	}

	log.Debug("section created successfully",
		slog.String("section_id", section.ID.String()),
		slog.String("lesson_id", section.LessonID.String()),
		slog.Int("position", section.Position))
	return nil
}

// GetByID implements store.SectionStore.GetByID
// Returns store.ErrSectionNotFound if the section does not exist.
func (s *PostgresSectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, position, title, content, has_task, created_at, updated_at
		FROM sections
		WHERE id = $1
	`

	var section domain.Section
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&section.ID,
		&section.LessonID,
		&section.Position,
		&section.Title,
		&section.Content,
		&section.HasTask,
		&section.CreatedAt,
		&section.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("section not found", slog.String("section_id", id.String()))
			return nil, store.ErrSectionNotFound
		}
		log.Error("failed to get section by ID",
			slog.String("error", err.Error()),
			slog.String("section_id", id.String()))
		return nil, err
	}

	return &section, nil
}

// UpdateContent implements store.SectionStore.UpdateContent
// Returns store.ErrSectionNotFound if the section does not exist.
func (s *PostgresSectionStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if content == "" {
		return domain.ErrEmptySectionContent
	}

	query := `
		UPDATE sections
		SET content = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, content, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update section content",
			slog.String("error", err.Error()),
			slog.String("section_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrSectionNotFound); err != nil {
		log.Debug("section not found for content update",
			slog.String("section_id", id.String()))
		return err
	}

	log.Info("section content updated",
		slog.String("section_id", id.String()),
		slog.Int("content_length", len(content)))
	return nil
}

// UpdatePosition implements store.SectionStore.UpdatePosition
// Returns store.ErrSectionNotFound if the section does not exist.
func (s *PostgresSectionStore) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if position < 1 {
		return domain.ErrInvalidPosition
	}

	query := `
		UPDATE sections
		SET position = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, position, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update section position",
			slog.String("error", err.Error()),
			slog.String("section_id", id.String()),
			slog.Int("position", position))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrSectionNotFound); err != nil {
		log.Debug("section not found for position update",
			slog.String("section_id", id.String()))
		return err
	}

	return nil
}

// ListByLesson implements store.SectionStore.ListByLesson
// Sections come back ordered by (position, id) so readers see a stable
// order even before renumbering makes positions contiguous.
func (s *PostgresSectionStore) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, position, title, content, has_task, created_at, updated_at
		FROM sections
		WHERE lesson_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		log.Error("failed to query sections by lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var sections []*domain.Section
	for rows.Next() {
		var section domain.Section
		err := rows.Scan(
			&section.ID,
			&section.LessonID,
			&section.Position,
			&section.Title,
			&section.Content,
			&section.HasTask,
			&section.CreatedAt,
			&section.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan section row",
				slog.String("error", err.Error()))
			return nil, err
		}

		sections = append(sections, &section)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if sections == nil {
		sections = []*domain.Section{}
	}

	return sections, nil
}

// WithTx implements store.SectionStore.WithTx
func (s *PostgresSectionStore) WithTx(tx *sql.Tx) store.SectionStore {
	return &PostgresSectionStore{
		db:     tx,
		logger: s.logger,
	}
}
