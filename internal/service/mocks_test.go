package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/events"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// The store mocks return themselves from WithTx so transactional code paths
// run against the same in-memory state. The service's transaction runner is
// swapped for one that calls the function directly.

type mockLessonStore struct {
	CreateFn  func(ctx context.Context, lesson *domain.Lesson) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	created []*domain.Lesson
}

func (m *mockLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, lesson); err != nil {
			return err
		}
	}
	m.created = append(m.created, lesson)
	return nil
}

func (m *mockLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	for _, lesson := range m.created {
		if lesson.ID == id {
			return lesson, nil
		}
	}
	return nil, store.ErrLessonNotFound
}

func (m *mockLessonStore) WithTx(tx *sql.Tx) store.LessonStore { return m }

type mockSectionStore struct {
	CreateFn         func(ctx context.Context, section *domain.Section) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Section, error)
	UpdateContentFn  func(ctx context.Context, id uuid.UUID, content string) error
	UpdatePositionFn func(ctx context.Context, id uuid.UUID, position int) error
	ListByLessonFn   func(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error)

	created         []*domain.Section
	updatedContent  map[uuid.UUID]string
	updatedPosition map[uuid.UUID]int
}

func newMockSectionStore() *mockSectionStore {
	return &mockSectionStore{
		updatedContent:  make(map[uuid.UUID]string),
		updatedPosition: make(map[uuid.UUID]int),
	}
}

func (m *mockSectionStore) Create(ctx context.Context, section *domain.Section) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, section); err != nil {
			return err
		}
	}
	m.created = append(m.created, section)
	return nil
}

func (m *mockSectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	for _, section := range m.created {
		if section.ID == id {
			return section, nil
		}
	}
	return nil, store.ErrSectionNotFound
}

func (m *mockSectionStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	if m.UpdateContentFn != nil {
		return m.UpdateContentFn(ctx, id, content)
	}
	m.updatedContent[id] = content
	return nil
}

func (m *mockSectionStore) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	if m.UpdatePositionFn != nil {
		return m.UpdatePositionFn(ctx, id, position)
	}
	m.updatedPosition[id] = position
	return nil
}

func (m *mockSectionStore) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error) {
	if m.ListByLessonFn != nil {
		return m.ListByLessonFn(ctx, lessonID)
	}
	var out []*domain.Section
	for _, section := range m.created {
		if section.LessonID == lessonID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (m *mockSectionStore) WithTx(tx *sql.Tx) store.SectionStore { return m }

type mockProgressStore struct {
	CreateFn func(ctx context.Context, progress *domain.GenerationProgress) error
	UpdateFn func(ctx context.Context, progress *domain.GenerationProgress) error

	byLesson map[uuid.UUID]*domain.GenerationProgress
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{byLesson: make(map[uuid.UUID]*domain.GenerationProgress)}
}

func (m *mockProgressStore) Create(ctx context.Context, progress *domain.GenerationProgress) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, progress); err != nil {
			return err
		}
	}
	m.byLesson[progress.LessonID] = progress
	return nil
}

func (m *mockProgressStore) GetByLessonID(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error) {
	progress, ok := m.byLesson[lessonID]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return progress, nil
}

func (m *mockProgressStore) Update(ctx context.Context, progress *domain.GenerationProgress) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, progress)
	}
	if _, ok := m.byLesson[progress.LessonID]; !ok {
		return store.ErrProgressNotFound
	}
	m.byLesson[progress.LessonID] = progress
	return nil
}

func (m *mockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore { return m }

type mockUserStore struct {
	CreateFn             func(ctx context.Context, user *domain.User) error
	TrySpendGenerationFn func(ctx context.Context, id uuid.UUID) error

	byID   map[uuid.UUID]*domain.User
	spends []uuid.UUID
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, user); err != nil {
			return err
		}
	}
	if m.byID == nil {
		m.byID = make(map[uuid.UUID]*domain.User)
	}
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) TrySpendGeneration(ctx context.Context, id uuid.UUID) error {
	if m.TrySpendGenerationFn != nil {
		if err := m.TrySpendGenerationFn(ctx, id); err != nil {
			return err
		}
	}
	m.spends = append(m.spends, id)
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockImproveJobStore struct {
	CreateFn func(ctx context.Context, job *domain.ImproveJob) error
	UpdateFn func(ctx context.Context, job *domain.ImproveJob) error

	byID map[uuid.UUID]*domain.ImproveJob
}

func newMockImproveJobStore() *mockImproveJobStore {
	return &mockImproveJobStore{byID: make(map[uuid.UUID]*domain.ImproveJob)}
}

func (m *mockImproveJobStore) Create(ctx context.Context, job *domain.ImproveJob) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, job); err != nil {
			return err
		}
	}
	m.byID[job.ID] = job
	return nil
}

func (m *mockImproveJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImproveJob, error) {
	job, ok := m.byID[id]
	if !ok {
		return nil, store.ErrImproveJobNotFound
	}
	return job, nil
}

func (m *mockImproveJobStore) Update(ctx context.Context, job *domain.ImproveJob) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, job)
	}
	if _, ok := m.byID[job.ID]; !ok {
		return store.ErrImproveJobNotFound
	}
	m.byID[job.ID] = job
	return nil
}

func (m *mockImproveJobStore) WithTx(tx *sql.Tx) store.ImproveJobStore { return m }

type mockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.TaskRequestEvent) error

	emitted []*events.TaskRequestEvent
}

func (m *mockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if m.EmitEventFn != nil {
		if err := m.EmitEventFn(ctx, event); err != nil {
			return err
		}
	}
	m.emitted = append(m.emitted, event)
	return nil
}

// passthroughTx replaces the service's transaction runner with one that
// calls the function directly; the mock stores ignore the nil *sql.Tx.
func passthroughTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

func withPassthroughTx(t *testing.T, svc any) {
	t.Helper()

	switch impl := svc.(type) {
	case *lessonService:
		impl.runTx = passthroughTx
	case *improveService:
		impl.runTx = passthroughTx
	default:
		require.Failf(t, "unexpected service type", "%T", svc)
	}
}
