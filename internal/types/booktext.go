package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookText is the unstructured full-book extraction for one (class, subject)
// pair. It is only used as supplementary grounding text and is length-bounded
// by the consumer, never trusted as-is.
type BookText struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassLevel string    `gorm:"column:class_level;not null;uniqueIndex:idx_book_text_key" json:"classLevel"`
	Subject    string    `gorm:"column:subject;not null;uniqueIndex:idx_book_text_key" json:"subject"`
	RawText    string    `gorm:"column:raw_text" json:"rawText"`
}

func (BookText) TableName() string { return "book_text" }

func (b *BookText) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
