package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/knowx/knowx-back/internal/models"
)

// MessageService is what the message routes need from the conversation core
type MessageService interface {
	Conversations(ctx context.Context, self int64) ([]*models.ConversationSummary, error)
	OpenConversation(ctx context.Context, self, counterpart int64) ([]*models.ThreadMessage, error)
	UnreadTotal(ctx context.Context, self int64) (int64, error)
	MarkOne(ctx context.Context, messageID, self int64) (*models.Message, error)
	Send(ctx context.Context, sender int64, req models.MessageRequest) (*models.Message, error)
}

// MessageHandler handles message-related routes
type MessageHandler struct {
	Messages MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(svc MessageService) *MessageHandler {
	return &MessageHandler{Messages: svc}
}

// Register mounts the message routes. The group must already authenticate.
func (h *MessageHandler) Register(rg *gin.RouterGroup, sendLimit gin.HandlerFunc) {
	send := []gin.HandlerFunc{h.SendMessage}
	if sendLimit != nil {
		send = append([]gin.HandlerFunc{sendLimit}, send...)
	}

	rg.GET("/messages", h.GetConversations)
	rg.GET("/messages/conversations", h.GetConversations)
	rg.GET("/messages/unread-count", h.GetUnreadCount)
	rg.GET("/messages/conversation/:otherUserId", h.GetConversation)
	rg.POST("/messages", send...)
	rg.PUT("/messages/:id/read", h.MarkMessageAsRead)
}

func currentUser(c *gin.Context) (int64, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SendMessage handles the creation of a new message
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message, err := h.Messages.Send(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetConversations returns one summary per counterpart, most recent first
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversations, err := h.Messages.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetConversation returns the thread with another user and marks what they sent as read
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	otherUserID, ok := pathID(c, "otherUserId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	messages, err := h.Messages.OpenConversation(c.Request.Context(), userID, otherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetUnreadCount returns the unread badge count
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.Messages.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UnreadCountResponse{Count: count})
}

// MarkMessageAsRead marks a message addressed to the current user as read
func (h *MessageHandler) MarkMessageAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	messageID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	message, err := h.Messages.MarkOne(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read", "data": message})
}
