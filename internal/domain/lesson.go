package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subject identifies the school subject a lesson is written for.
type Subject string

// Possible subject values
const (
	SubjectMath            Subject = "math"
	SubjectForeignLanguage Subject = "foreign_lang"
	SubjectRussian         Subject = "russian"
	SubjectIT              Subject = "it"
	SubjectSocialStudies   Subject = "social"
	SubjectHistory         Subject = "history"
	SubjectBiology         Subject = "biology"
	SubjectPhysics         Subject = "physics"
	SubjectOther           Subject = "other"
)

// Level identifies the audience a lesson targets.
type Level string

// Possible level values
const (
	LevelGrade1To4  Level = "grade_1_4"
	LevelGrade5To7  Level = "grade_5_7"
	LevelGrade8To11 Level = "grade_8_11"
	LevelUniversity Level = "university"
	LevelAdults     Level = "adults"
)

// Common validation errors for Lesson
var (
	ErrEmptyLessonID        = errors.New("lesson ID cannot be empty")
	ErrEmptyLessonCreatorID = errors.New("lesson creator ID cannot be empty")
	ErrEmptyLessonTitle     = errors.New("lesson title cannot be empty")
	ErrInvalidSubject       = errors.New("invalid lesson subject")
	ErrInvalidLevel         = errors.New("invalid lesson level")
)

// Lesson is a worksheet requested by a user. Its sections are generated
// asynchronously after creation; the lesson row itself only carries the
// request parameters.
type Lesson struct {
	ID        uuid.UUID `json:"id"`
	CreatorID uuid.UUID `json:"creator_id"`
	Title     string    `json:"title"`
	Subject   Subject   `json:"subject"`
	Level     Level     `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLesson creates a new Lesson with a generated ID and creation timestamp.
// Returns an error if validation fails.
func NewLesson(creatorID uuid.UUID, title string, subject Subject, level Level) (*Lesson, error) {
	lesson := &Lesson{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Title:     title,
		Subject:   subject,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}

	if err := lesson.Validate(); err != nil {
		return nil, err
	}

	return lesson, nil
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLessonID
	}

	if l.CreatorID == uuid.Nil {
		return ErrEmptyLessonCreatorID
	}

	if l.Title == "" {
		return ErrEmptyLessonTitle
	}

	if !isValidSubject(l.Subject) {
		return ErrInvalidSubject
	}

	if !isValidLevel(l.Level) {
		return ErrInvalidLevel
	}

	return nil
}

// SubjectDisplay returns the human-readable name of the lesson's subject,
// used when building generation prompts.
func (l *Lesson) SubjectDisplay() string {
	switch l.Subject {
	case SubjectMath:
		return "Mathematics"
	case SubjectForeignLanguage:
		return "Foreign language"
	case SubjectRussian:
		return "Russian"
	case SubjectIT:
		return "Computer science"
	case SubjectSocialStudies:
		return "Social studies"
	case SubjectHistory:
		return "History"
	case SubjectBiology:
		return "Biology"
	case SubjectPhysics:
		return "Physics"
	default:
		return "General"
	}
}

// LevelDisplay returns the human-readable name of the lesson's level.
func (l *Lesson) LevelDisplay() string {
	switch l.Level {
	case LevelGrade1To4:
		return "grades 1-4"
	case LevelGrade5To7:
		return "grades 5-7"
	case LevelGrade8To11:
		return "grades 8-11"
	case LevelUniversity:
		return "university"
	case LevelAdults:
		return "adults"
	default:
		return "any level"
	}
}

func isValidSubject(subject Subject) bool {
	switch subject {
	case SubjectMath, SubjectForeignLanguage, SubjectRussian, SubjectIT,
		SubjectSocialStudies, SubjectHistory, SubjectBiology, SubjectPhysics,
		SubjectOther:
		return true
	default:
		return false
	}
}

func isValidLevel(level Level) bool {
	switch level {
	case LevelGrade1To4, LevelGrade5To7, LevelGrade8To11, LevelUniversity, LevelAdults:
		return true
	default:
		return false
	}
}
