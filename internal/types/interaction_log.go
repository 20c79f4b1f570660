package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InteractionLog records one query/response exchange reported by a companion
// client, kept for offline review.
type InteractionLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Query     string    `gorm:"column:query" json:"query"`
	Response  string    `gorm:"column:response" json:"response"`
	Type      string    `gorm:"column:type" json:"type"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (InteractionLog) TableName() string { return "interaction_log" }

func (l *InteractionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return nil
}
