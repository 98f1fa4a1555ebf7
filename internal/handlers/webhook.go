package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/services/webhook"
	"github.com/promptdir/backend/pkg/logger"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type WebhookHandler struct {
	service *webhook.Service
}

func NewWebhookHandler(db *gorm.DB, cfg *config.IdentityConfig) *WebhookHandler {
	return &WebhookHandler{
		service: webhook.NewService(db, cfg),
	}
}

// Service exposes the webhook service for processor registration.
func (h *WebhookHandler) Service() *webhook.Service {
	return h.service
}

// HandleIdentity receives user lifecycle events from the identity
// provider. The delivery is verified against the signing secret before
// anything is parsed; unverifiable deliveries get 401 and are never
// enqueued.
func (h *WebhookHandler) HandleIdentity(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	msgID := c.GetHeader("svix-id")
	msgTimestamp := c.GetHeader("svix-timestamp")
	sigHeader := c.GetHeader("svix-signature")

	if err := h.service.Verify(msgID, msgTimestamp, sigHeader, body); err != nil {
		logger.Warnf("[Webhook] Rejected delivery %s: %v", msgID, err)
		response.Unauthorized(c, "invalid webhook signature")
		return
	}

	if err := h.service.Accept(body); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"received": true})
}
