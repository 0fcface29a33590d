package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// reminderTitle is the fixed alert title; the task title rides in the subtitle.
const reminderTitle = "Plan Reminder"

// NotificationService converts task due timestamps into fire-once calendar
// alerts. Every request gets a freshly generated identifier, so alerts for
// different tasks never collide or overwrite each other.
type NotificationService struct {
	center ports.NotificationCenter
	config config.NotificationsConfig
	logger *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(center ports.NotificationCenter, cfg config.NotificationsConfig, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		center: center,
		config: cfg,
		logger: logger,
	}
}

// Start requests notification authorization once, at process startup. The
// result is unused: a denial simply makes later registrations no-ops at the
// center, and scheduling never re-checks authorization status.
func (s *NotificationService) Start(ctx context.Context) {
	alert, sound, badge := s.config.AuthorizationOptions()
	opts := ports.AuthorizationOptions{Alert: alert, Sound: sound, Badge: badge}

	if err := s.center.RequestAuthorization(ctx, opts); err != nil {
		s.logger.LogBackgroundSyncError("notification_authorization", err)
	}
}

// Schedule registers exactly one fire-once alert for the given wall-clock
// minute. Seconds are discarded. Registration errors are logged only; the
// caller is never alerted and nothing is retried. The generated request id
// is returned so a caller may cancel explicitly.
func (s *NotificationService) Schedule(ctx context.Context, title string, when time.Time) string {
	req := ports.NotificationRequest{
		ID: uuid.NewString(),
		Content: entities.NotificationContent{
			Title:    reminderTitle,
			Subtitle: title,
		},
		Trigger: entities.CalendarTriggerAt(when),
	}

	if err := s.center.AddRequest(ctx, req); err != nil {
		s.logger.LogBackgroundSyncError("notification_schedule", err, "request_id", req.ID)
		return req.ID
	}

	s.logger.Infow("Notification scheduled", "request_id", req.ID, "fires_at", when.Truncate(time.Minute))
	return req.ID
}

// Cancel retracts a previously scheduled alert by id. Nothing in the task
// lifecycle calls this automatically; deleting or editing a task leaves its
// alert in place.
func (s *NotificationService) Cancel(ctx context.Context, id string) {
	if err := s.center.RemoveRequest(ctx, id); err != nil {
		s.logger.LogBackgroundSyncError("notification_cancel", err, "request_id", id)
	}
}
