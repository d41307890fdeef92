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

// PostgresImproveJobStore implements the store.ImproveJobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresImproveJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresImproveJobStore creates a new PostgreSQL implementation of the
// ImproveJobStore interface. If logger is nil, a default logger is used.
func NewPostgresImproveJobStore(db store.DBTX, logger *slog.Logger) *PostgresImproveJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresImproveJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "improve_job_store")),
	}
}

// Ensure PostgresImproveJobStore implements store.ImproveJobStore interface
var _ store.ImproveJobStore = (*PostgresImproveJobStore)(nil)

// Create implements store.ImproveJobStore.Create
// Returns store.ErrInvalidEntity if the section ID doesn't exist.
func (s *PostgresImproveJobStore) Create(ctx context.Context, job *domain.ImproveJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("improve job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO improve_jobs (id, section_id, mode, status, task_id, result_content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.SectionID,
		job.Mode,
		job.Status,
		nullableUUID(job.TaskID),
		job.ResultContent,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during improve job creation",
				slog.String("error", err.Error()),
				slog.String("job_id", job.ID.String()),
				slog.String("section_id", job.SectionID.String()))
			return fmt.Errorf("%w: section with ID %s not found",
				store.ErrInvalidEntity, job.SectionID)
		}

		log.Error("failed to create improve job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	log.Info("improve job created",
		slog.String("job_id", job.ID.String()),
		slog.String("section_id", job.SectionID.String()),
		slog.String("mode", string(job.Mode)))
	return nil
}

// GetByID implements store.ImproveJobStore.GetByID
// Returns store.ErrImproveJobNotFound if the job does not exist.
func (s *PostgresImproveJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImproveJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, section_id, mode, status, task_id, result_content, created_at, updated_at
		FROM improve_jobs
		WHERE id = $1
	`

	var job domain.ImproveJob
	var mode, status string
	var taskID uuid.NullUUID

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.SectionID,
		&mode,
		&status,
		&taskID,
		&job.ResultContent,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("improve job not found", slog.String("job_id", id.String()))
			return nil, store.ErrImproveJobNotFound
		}
		log.Error("failed to get improve job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, err
	}

	job.Mode = domain.ImproveMode(mode)
	job.Status = domain.ImproveStatus(status)
	if taskID.Valid {
		job.TaskID = taskID.UUID
	}

	return &job, nil
}

// Update implements store.ImproveJobStore.Update
// Returns store.ErrImproveJobNotFound if the job does not exist.
func (s *PostgresImproveJobStore) Update(ctx context.Context, job *domain.ImproveJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("improve job validation failed during update",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		UPDATE improve_jobs
		SET status = $1, task_id = $2, result_content = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Status,
		nullableUUID(job.TaskID),
		job.ResultContent,
		job.UpdatedAt,
		job.ID,
	)

	if err != nil {
		log.Error("failed to update improve job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrImproveJobNotFound); err != nil {
		log.Debug("improve job not found for update",
			slog.String("job_id", job.ID.String()))
		return err
	}

	log.Debug("improve job updated",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

// WithTx implements store.ImproveJobStore.WithTx
func (s *PostgresImproveJobStore) WithTx(tx *sql.Tx) store.ImproveJobStore {
	return &PostgresImproveJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullableUUID converts the zero UUID into a SQL NULL so unclaimed jobs
// carry no task handle.
func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
