package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowx/knowx-back/internal/conversation"
	"github.com/knowx/knowx-back/internal/logger"
)

var log = logger.New("api")

// retryAfterSeconds is sent with 503 responses
const retryAfterSeconds = "5"

// respondError maps the conversation error taxonomy onto HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		validation  *conversation.ValidationError
		notFound    *conversation.NotFoundError
		unavailable *conversation.StoreUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
	case errors.As(err, &unavailable):
		log.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
