package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

type InteractionLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.InteractionLog) error
}

type interactionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionLogRepo(db *gorm.DB, baseLog *logger.Logger) InteractionLogRepo {
	return &interactionLogRepo{db: db, log: baseLog.With("repo", "InteractionLogRepo")}
}

func (ir *interactionLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.InteractionLog) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	return transaction.WithContext(ctx).Create(entry).Error
}
