package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/services"
)

type StudentHandler struct {
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

type loginRequest struct {
	Name       string `json:"name"`
	ClassLevel string `json:"classLevel"`
	Language   string `json:"language"`
}

// Login finds or creates a profile by name; the client tells new from
// returning students via isNew.
func (sh *StudentHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	result, err := sh.studentService.Login(c.Request.Context(), req.Name, req.ClassLevel, req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": result.Student, "isNew": result.IsNew})
}

func (sh *StudentHandler) Get(c *gin.Context) {
	student, err := sh.studentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": student})
}

func (sh *StudentHandler) Update(c *gin.Context) {
	var in services.StudentUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	student, err := sh.studentService.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": student})
}

func (sh *StudentHandler) Progress(c *gin.Context) {
	summary, err := sh.studentService.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, summary)
}

type saveNotesRequest struct {
	Topic  string   `json:"topic"`
	Points []string `json:"points"`
}

func (sh *StudentHandler) SaveNotes(c *gin.Context) {
	var req saveNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("invalid request body")))
		return
	}
	notes, err := sh.studentService.SaveNotes(c.Request.Context(), c.Param("id"), req.Topic, req.Points)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Notes saved", "notes": notes})
}
