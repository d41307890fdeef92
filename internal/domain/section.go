package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Section
var (
	ErrEmptySectionID       = errors.New("section ID cannot be empty")
	ErrEmptySectionLessonID = errors.New("section lesson ID cannot be empty")
	ErrEmptySectionTitle    = errors.New("section title cannot be empty")
	ErrEmptySectionContent  = errors.New("section content cannot be empty")
	ErrInvalidPosition      = errors.New("section position must be positive")
)

// Section is one generated content unit of a lesson. Position is the
// 1-based order within the lesson; positions are renumbered to a contiguous
// range after generation finishes, so readers can rely on 1..N.
type Section struct {
	ID        uuid.UUID `json:"id"`
	LessonID  uuid.UUID `json:"lesson_id"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HasTask   bool      `json:"has_task"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSection creates a new Section with a generated ID and timestamps.
// Returns an error if validation fails.
func NewSection(lessonID uuid.UUID, position int, title, content string, hasTask bool) (*Section, error) {
	section := &Section{
		ID:        uuid.New(),
		LessonID:  lessonID,
		Position:  position,
		Title:     title,
		Content:   content,
		HasTask:   hasTask,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := section.Validate(); err != nil {
		return nil, err
	}

	return section, nil
}

// Validate checks if the Section has valid data.
func (s *Section) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySectionID
	}

	if s.LessonID == uuid.Nil {
		return ErrEmptySectionLessonID
	}

	if s.Position < 1 {
		return ErrInvalidPosition
	}

	if s.Title == "" {
		return ErrEmptySectionTitle
	}

	if s.Content == "" {
		return ErrEmptySectionContent
	}

	return nil
}

// ReplaceContent overwrites the section's content and bumps UpdatedAt.
// Returns an error if the new content is empty.
func (s *Section) ReplaceContent(content string) error {
	if content == "" {
		return ErrEmptySectionContent
	}

	s.Content = content
	s.UpdatedAt = time.Now().UTC()
	return nil
}
