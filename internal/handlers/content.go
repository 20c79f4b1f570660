package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (ch *ContentHandler) ListClasses(c *gin.Context) {
	classes, err := ch.contentService.ListClasses(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"classes": classes})
}

func (ch *ContentHandler) ListSubjects(c *gin.Context) {
	subjects, err := ch.contentService.ListSubjects(c.Request.Context(), c.Param("class"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"subjects": subjects})
}

func (ch *ContentHandler) ListChapters(c *gin.Context) {
	chapters, err := ch.contentService.ListChapters(c.Request.Context(), c.Param("class"), c.Param("subject"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"chapters": chapters})
}

func (ch *ContentHandler) GetChapter(c *gin.Context) {
	chapterNumber, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapterNumber <= 0 {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_chapter", errors.New("chapter must be a positive number")))
		return
	}
	chapter, err := ch.contentService.GetChapter(c.Request.Context(), c.Param("class"), c.Param("subject"), chapterNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"chapter": chapter})
}
