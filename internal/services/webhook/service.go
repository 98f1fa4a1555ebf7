package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/pkg/logger"
	"gorm.io/gorm"
)

// Service accepts identity provider webhook deliveries and applies the
// user lifecycle events to the local user table.
type Service struct {
	db          *gorm.DB
	cfg         *config.IdentityConfig
	userService *services.UserService
}

// NewService creates a new webhook Service instance
func NewService(db *gorm.DB, cfg *config.IdentityConfig) *Service {
	return &Service{
		db:          db,
		cfg:         cfg,
		userService: services.NewUserService(db),
	}
}

// Verify checks a delivery's signature headers against the configured
// secret.
func (s *Service) Verify(msgID, msgTimestamp, sigHeader string, body []byte) error {
	if s.cfg.WebhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	tolerance := time.Duration(s.cfg.ToleranceSeconds) * time.Second
	return VerifySignature(s.cfg.WebhookSecret, msgID, msgTimestamp, sigHeader, body, tolerance)
}

// Accept parses a verified delivery into a sync task and hands it to the
// queue. The HTTP handler returns as soon as the task is enqueued.
func (s *Service) Accept(body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("invalid webhook payload: %w", err)
	}

	switch event.Type {
	case services.IdentityEventCreated, services.IdentityEventUpdated, services.IdentityEventDeleted:
	default:
		// Unknown event types are acknowledged and dropped so the
		// provider does not retry them.
		logger.Infof("[Webhook] Ignoring event type: %s", event.Type)
		return nil
	}

	if event.Data.ID == "" {
		return fmt.Errorf("webhook event missing user id")
	}

	task := &services.IdentitySyncTask{
		EventType: event.Type,
		SubjectID: event.Data.ID,
		Email:     event.Data.PrimaryEmail(),
		Name:      event.Data.DisplayName(),
	}

	queue := services.GetTaskQueue()
	if queue == nil {
		return s.Process(context.Background(), task)
	}
	return queue.Enqueue(task)
}

// Process applies one identity sync task. Registered as the processor for
// both the async worker and the sync queue fallback, and safe to replay.
func (s *Service) Process(ctx context.Context, task *services.IdentitySyncTask) error {
	logger.Infof("[Webhook] Applying %s for subject %s", task.EventType, task.SubjectID)

	switch task.EventType {
	case services.IdentityEventCreated, services.IdentityEventUpdated:
		_, err := s.userService.UpsertFromIdentity(services.IdentityProfile{
			SubjectID: task.SubjectID,
			Email:     task.Email,
			Name:      task.Name,
		})
		return err
	case services.IdentityEventDeleted:
		return s.userService.DeleteBySubject(task.SubjectID)
	default:
		return fmt.Errorf("unknown identity event: %s", task.EventType)
	}
}
