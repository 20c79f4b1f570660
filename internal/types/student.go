package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student is the per-learner memory document. List-valued fields live in JSON
// columns; the bounded ones (WeakTopics, SessionHistory) are append-then-trim
// and the trimming happens in the service layer, never here.
type Student struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"studentId"`
	Name           string                             `gorm:"not null;column:name" json:"name"`
	ClassLevel     string                             `gorm:"column:class_level" json:"classLevel"`
	Language       string                             `gorm:"column:language;default:'english'" json:"language"`
	WeakTopics     datatypes.JSONSlice[string]        `gorm:"column:weak_topics" json:"weakTopics"`
	MasteredTopics datatypes.JSONSlice[string]        `gorm:"column:mastered_topics" json:"masteredTopics"`
	SessionHistory datatypes.JSONSlice[SessionRecord] `gorm:"column:session_history" json:"sessionHistory"`
	Notes          datatypes.JSONSlice[NoteRecord]    `gorm:"column:notes" json:"notes"`
	LastSubject    string                             `gorm:"column:last_subject" json:"lastSubject"`
	LastChapter    string                             `gorm:"column:last_chapter" json:"lastChapter"`
	CreatedAt      time.Time                          `gorm:"not null" json:"createdAt"`
	LastActiveAt   time.Time                          `gorm:"column:last_active_at" json:"lastActiveAt"`
}

func (Student) TableName() string { return "student" }

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// SessionRecord is appended only at explicit session end.
type SessionRecord struct {
	Date    time.Time `json:"date"`
	Subject string    `json:"subject"`
	Chapter string    `json:"chapter"`
	Summary string    `json:"summary"`
}

// NoteRecord stores one saved voice-notes session.
type NoteRecord struct {
	Topic   string    `json:"topic"`
	Points  []string  `json:"points"`
	SavedAt time.Time `json:"savedAt"`
}

const (
	LanguageEnglish = "english"
	LanguageTamil   = "tamil"
)

func ValidLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageTamil
}
