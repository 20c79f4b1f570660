package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/services"
)

type AIHandler struct {
	tutorService       services.TutorService
	interactionService services.InteractionService
}

func NewAIHandler(tutorService services.TutorService, interactionService services.InteractionService) *AIHandler {
	return &AIHandler{tutorService: tutorService, interactionService: interactionService}
}

func (ah *AIHandler) Chat(c *gin.Context) {
	var in services.ChatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	result, err := ah.tutorService.Chat(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AIHandler) EndSession(c *gin.Context) {
	var in services.EndSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	student, err := ah.tutorService.EndSession(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Session saved", "student": student})
}

type logInteractionRequest struct {
	Query    string `json:"query"`
	Response string `json:"response"`
	Type     string `json:"type"`
}

func (ah *AIHandler) LogInteraction(c *gin.Context) {
	var req logInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	if err := ah.interactionService.Log(c.Request.Context(), req.Query, req.Response, req.Type); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Interaction logged"})
}
