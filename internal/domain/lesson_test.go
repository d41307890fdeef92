package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLesson(t *testing.T) {
	t.Parallel()

	t.Run("valid lesson", func(t *testing.T) {
		t.Parallel()

		creatorID := uuid.New()
		lesson, err := NewLesson(creatorID, "Fractions", SubjectMath, LevelGrade5To7)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, lesson.ID)
		assert.Equal(t, creatorID, lesson.CreatorID)
		assert.Equal(t, "Fractions", lesson.Title)
		assert.False(t, lesson.CreatedAt.IsZero())
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			creator uuid.UUID
			title   string
			subject Subject
			level   Level
			wantErr error
		}{
			{"empty creator", uuid.Nil, "t", SubjectMath, LevelAdults, ErrEmptyLessonCreatorID},
			{"empty title", uuid.New(), "", SubjectMath, LevelAdults, ErrEmptyLessonTitle},
			{"bad subject", uuid.New(), "t", Subject("chemistry"), LevelAdults, ErrInvalidSubject},
			{"bad level", uuid.New(), "t", SubjectMath, Level("kindergarten"), ErrInvalidLevel},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := NewLesson(tt.creator, tt.title, tt.subject, tt.level)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestLesson_SubjectDisplay(t *testing.T) {
	t.Parallel()

	lesson := &Lesson{Subject: SubjectForeignLanguage}
	assert.Equal(t, "Foreign language", lesson.SubjectDisplay())

	lesson.Subject = SubjectOther
	assert.Equal(t, "General", lesson.SubjectDisplay())
}

func TestSection_ReplaceContent(t *testing.T) {
	t.Parallel()

	section, err := NewSection(uuid.New(), 1, "Intro", "original", false)
	require.NoError(t, err)

	require.NoError(t, section.ReplaceContent("rewritten"))
	assert.Equal(t, "rewritten", section.Content)

	assert.ErrorIs(t, section.ReplaceContent(""), ErrEmptySectionContent)
	assert.Equal(t, "rewritten", section.Content)
}

func TestNewSection_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewSection(uuid.Nil, 1, "t", "c", false)
	assert.ErrorIs(t, err, ErrEmptySectionLessonID)

	_, err = NewSection(uuid.New(), 0, "t", "c", false)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = NewSection(uuid.New(), 1, "", "c", false)
	assert.ErrorIs(t, err, ErrEmptySectionTitle)

	_, err = NewSection(uuid.New(), 1, "t", "", false)
	assert.ErrorIs(t, err, ErrEmptySectionContent)
}

func TestImproveJob_Lifecycle(t *testing.T) {
	t.Parallel()

	job, err := NewImproveJob(uuid.New(), ImproveModeSimplify)
	require.NoError(t, err)
	assert.Equal(t, ImproveStatusPending, job.Status)

	taskID := uuid.New()
	job.MarkInProgress(taskID)
	assert.Equal(t, ImproveStatusInProgress, job.Status)
	assert.Equal(t, taskID, job.TaskID)

	job.MarkDone("new content")
	assert.Equal(t, ImproveStatusDone, job.Status)
	assert.Equal(t, "new content", job.ResultContent)
}

func TestNewImproveJob_InvalidMode(t *testing.T) {
	t.Parallel()

	_, err := NewImproveJob(uuid.New(), ImproveMode("rewrite_in_latin"))
	assert.ErrorIs(t, err, ErrInvalidImproveMode)
}
