package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

type TextbookRepo interface {
	// GetChapter returns (nil, nil) when the chapter does not exist; an
	// unresolved chapter is a soft condition for the chat flow.
	GetChapter(ctx context.Context, tx *gorm.DB, classLevel, subject string, chapterNumber int) (*types.Textbook, error)
	ListClasses(ctx context.Context, tx *gorm.DB) ([]string, error)
	ListSubjects(ctx context.Context, tx *gorm.DB, classLevel string) ([]string, error)
	ListChapters(ctx context.Context, tx *gorm.DB, classLevel, subject string) ([]types.ChapterSummary, error)
}

type textbookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTextbookRepo(db *gorm.DB, baseLog *logger.Logger) TextbookRepo {
	return &textbookRepo{db: db, log: baseLog.With("repo", "TextbookRepo")}
}

func (tr *textbookRepo) GetChapter(ctx context.Context, tx *gorm.DB, classLevel, subject string, chapterNumber int) (*types.Textbook, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var result types.Textbook
	if err := transaction.WithContext(ctx).
		Where("class_level = ? AND subject = ? AND chapter_number = ?", classLevel, subject, chapterNumber).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *textbookRepo) ListClasses(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var classes []string
	if err := transaction.WithContext(ctx).
		Model(&types.Textbook{}).
		Distinct("class_level").
		Pluck("class_level", &classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (tr *textbookRepo) ListSubjects(ctx context.Context, tx *gorm.DB, classLevel string) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var subjects []string
	if err := transaction.WithContext(ctx).
		Model(&types.Textbook{}).
		Where("class_level = ?", classLevel).
		Distinct("subject").
		Pluck("subject", &subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (tr *textbookRepo) ListChapters(ctx context.Context, tx *gorm.DB, classLevel, subject string) ([]types.ChapterSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var chapters []types.ChapterSummary
	if err := transaction.WithContext(ctx).
		Model(&types.Textbook{}).
		Select("chapter_number", "title").
		Where("class_level = ? AND subject = ?", classLevel, subject).
		Order("chapter_number ASC").
		Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}
