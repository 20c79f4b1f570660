package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/repos"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

type InteractionService interface {
	Log(ctx context.Context, query, response, interactionType string) error
}

type interactionService struct {
	log     *logger.Logger
	logRepo repos.InteractionLogRepo
}

func NewInteractionService(log *logger.Logger, logRepo repos.InteractionLogRepo) InteractionService {
	return &interactionService{
		log:     log.With("service", "InteractionService"),
		logRepo: logRepo,
	}
}

func (is *interactionService) Log(ctx context.Context, query, response, interactionType string) error {
	if strings.TrimSpace(query) == "" && strings.TrimSpace(response) == "" {
		return apierr.New(http.StatusBadRequest, "empty_interaction", errors.New("query or response is required"))
	}
	entry := &types.InteractionLog{
		Query:     query,
		Response:  response,
		Type:      interactionType,
		CreatedAt: time.Now().UTC(),
	}
	if err := is.logRepo.Create(ctx, nil, entry); err != nil {
		return apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return nil
}
