package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Textbook holds one structured chapter. Read-only at runtime; rows are
// written by the out-of-band ingestion tooling.
type Textbook struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	ClassLevel    string                          `gorm:"column:class_level;not null;uniqueIndex:idx_textbook_key" json:"classLevel"`
	Subject       string                          `gorm:"column:subject;not null;uniqueIndex:idx_textbook_key" json:"subject"`
	ChapterNumber int                             `gorm:"column:chapter_number;not null;uniqueIndex:idx_textbook_key" json:"chapterNumber"`
	Title         string                          `gorm:"column:title;not null" json:"title"`
	Content       string                          `gorm:"column:content;not null" json:"content"`
	KeyPoints     datatypes.JSONSlice[string]     `gorm:"column:key_points" json:"keyPoints"`
	Vocabulary    datatypes.JSONSlice[VocabEntry] `gorm:"column:vocabulary" json:"vocabulary"`
	Examples      datatypes.JSONSlice[string]     `gorm:"column:examples" json:"examples"`
}

func (Textbook) TableName() string { return "textbook" }

func (t *Textbook) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type VocabEntry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// ChapterSummary is the list-view projection of a Textbook row.
type ChapterSummary struct {
	ChapterNumber int    `json:"chapterNumber"`
	Title         string `json:"title"`
}
