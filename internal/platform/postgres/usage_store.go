package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/fastlesson/fastlesson-api/internal/generation"
	"github.com/fastlesson/fastlesson-api/internal/platform/logger"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// PostgresUsageStore persists per-model daily request counters. It
// implements generation.UsageRecorder so the dispatcher can account for
// upstream quota spend after every completed model call.
type PostgresUsageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageStore creates a new PostgreSQL implementation of the
// generation.UsageRecorder interface. If logger is nil, a default logger
// will be used.
func NewPostgresUsageStore(db store.DBTX, logger *slog.Logger) *PostgresUsageStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUsageStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_store")),
	}
}

// Ensure PostgresUsageStore implements generation.UsageRecorder interface
var _ generation.UsageRecorder = (*PostgresUsageStore)(nil)

// RecordUse implements generation.UsageRecorder.RecordUse
// It increments the model's request counter for the current UTC day,
// creating the row on first use.
func (s *PostgresUsageStore) RecordUse(ctx context.Context, model string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO model_usage (model_name, used_on, request_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (model_name, used_on)
		DO UPDATE SET request_count = model_usage.request_count + 1
	`

	day := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := s.db.ExecContext(ctx, query, model, day)
	if err != nil {
		log.Error("failed to record model usage",
			slog.String("error", err.Error()),
			slog.String("model", model))
		return err
	}

	return nil
}

// CountForDay returns the recorded request count for a model on the given
// UTC day. Days without a row count as zero.
func (s *PostgresUsageStore) CountForDay(ctx context.Context, model string, day time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT request_count
		FROM model_usage
		WHERE model_name = $1 AND used_on = $2
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, model, day.UTC().Truncate(24*time.Hour)).Scan(&count)
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return 0, nil
		}
		log.Error("failed to count model usage",
			slog.String("error", err.Error()),
			slog.String("model", model))
		return 0, err
	}

	return count, nil
}
