package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
)

// ErrorEnvelope is the uniform failure body. Details carries the underlying
// cause when one exists; the error field stays user-presentable.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondError translates service errors into HTTP responses. Errors not
// wrapped in apierr.Error are treated as internal.
func RespondError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		c.JSON(ae.Status, ErrorEnvelope{Error: ae.Err.Error(), Details: ae.Details})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: "internal error", Details: err.Error()})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
