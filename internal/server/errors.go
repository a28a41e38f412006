package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "greentrip/internal/common/errors"
)

// writeError maps domain errors to HTTP responses. Validation failures are
// the only expected client-visible error class; everything else the pipeline
// recovers from internally, so a non-validation error here is a 500.
func writeError(c *gin.Context, err error) {
	var se *apperrors.StandardError
	if errors.As(err, &se) && se.Code == apperrors.ErrCodeValidationFailed {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    string(se.Code),
			"message": se.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL",
		"message": "internal error",
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    string(apperrors.ErrCodeValidationFailed),
		"message": message,
	})
}
