package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/clients/redis"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/repos"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

// ContentService serves read-only textbook lookups. Chapter fetches go
// through an optional redis read-through cache; content rows only change
// during out-of-band ingestion, so staleness is bounded by the TTL.
type ContentService interface {
	ListClasses(ctx context.Context) ([]string, error)
	ListSubjects(ctx context.Context, classLevel string) ([]string, error)
	ListChapters(ctx context.Context, classLevel, subject string) ([]types.ChapterSummary, error)
	GetChapter(ctx context.Context, classLevel, subject string, chapterNumber int) (*types.Textbook, error)
}

type contentService struct {
	log          *logger.Logger
	textbookRepo repos.TextbookRepo
	cache        redis.Cache
	cacheTTL     time.Duration
}

// NewContentService accepts a nil cache; lookups then always hit the store.
func NewContentService(log *logger.Logger, textbookRepo repos.TextbookRepo, cache redis.Cache, cacheTTL time.Duration) ContentService {
	return &contentService{
		log:          log.With("service", "ContentService"),
		textbookRepo: textbookRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func (cs *contentService) ListClasses(ctx context.Context) ([]string, error) {
	classes, err := cs.textbookRepo.ListClasses(ctx, nil)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	// Numeric class labels sort numerically ("5" before "10").
	sort.Slice(classes, func(i, j int) bool {
		a, aErr := strconv.Atoi(classes[i])
		b, bErr := strconv.Atoi(classes[j])
		if aErr != nil || bErr != nil {
			return classes[i] < classes[j]
		}
		return a < b
	})
	return classes, nil
}

func (cs *contentService) ListSubjects(ctx context.Context, classLevel string) ([]string, error) {
	subjects, err := cs.textbookRepo.ListSubjects(ctx, nil, classLevel)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	sort.Strings(subjects)
	return subjects, nil
}

func (cs *contentService) ListChapters(ctx context.Context, classLevel, subject string) ([]types.ChapterSummary, error) {
	chapters, err := cs.textbookRepo.ListChapters(ctx, nil, classLevel, strings.ToLower(subject))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return chapters, nil
}

func (cs *contentService) GetChapter(ctx context.Context, classLevel, subject string, chapterNumber int) (*types.Textbook, error) {
	subject = strings.ToLower(subject)
	key := fmt.Sprintf("chapter:%s:%s:%d", classLevel, subject, chapterNumber)

	if cs.cache != nil {
		if raw, ok := cs.cache.Get(ctx, key); ok {
			var cached types.Textbook
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
			cs.log.Warn("Dropping undecodable cache entry", "key", key)
		}
	}

	chapter, err := cs.textbookRepo.GetChapter(ctx, nil, classLevel, subject, chapterNumber)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	if chapter == nil {
		return nil, apierr.New(http.StatusNotFound, "chapter_not_found", errors.New("Chapter not found"))
	}

	if cs.cache != nil {
		if raw, err := json.Marshal(chapter); err == nil {
			cs.cache.Set(ctx, key, string(raw), cs.cacheTTL)
		}
	}
	return chapter, nil
}
