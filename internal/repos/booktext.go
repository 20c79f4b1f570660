package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

type BookTextRepo interface {
	// GetRawText returns "" when no extraction exists for the pair.
	GetRawText(ctx context.Context, tx *gorm.DB, classLevel, subject string) (string, error)
}

type bookTextRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookTextRepo(db *gorm.DB, baseLog *logger.Logger) BookTextRepo {
	return &bookTextRepo{db: db, log: baseLog.With("repo", "BookTextRepo")}
}

func (br *bookTextRepo) GetRawText(ctx context.Context, tx *gorm.DB, classLevel, subject string) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var result types.BookText
	if err := transaction.WithContext(ctx).
		Where("class_level = ? AND subject = ?", classLevel, subject).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return result.RawText, nil
}
