package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
)

func newNotificationService(center *fakeCenter) *NotificationService {
	cfg := config.NotificationsConfig{Alert: true, Sound: true, Badge: true}
	return NewNotificationService(center, cfg, logger.NewNop())
}

func TestStartRequestsAuthorizationOnce(t *testing.T) {
	center := newFakeCenter()
	svc := newNotificationService(center)

	svc.Start(context.Background())

	assert.Equal(t, 1, center.authCalls)
	assert.True(t, center.authOpts.Alert)
	assert.True(t, center.authOpts.Sound)
	assert.True(t, center.authOpts.Badge)
}

func TestStartSwallowsAuthorizationError(t *testing.T) {
	center := newFakeCenter()
	center.authErr = assert.AnError
	svc := newNotificationService(center)

	// Must not panic or propagate; the result is unused.
	svc.Start(context.Background())
	assert.Equal(t, 1, center.authCalls)
}

func TestScheduleGeneratesUniqueIDs(t *testing.T) {
	center := newFakeCenter()
	svc := newNotificationService(center)
	ctx := context.Background()
	when := time.Date(2026, time.June, 1, 8, 30, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := svc.Schedule(ctx, "same task title", when)
		assert.False(t, seen[id], "request id reused")
		seen[id] = true
	}

	assert.Len(t, center.added, 50)
}

func TestSchedulePayloadAndTrigger(t *testing.T) {
	center := newFakeCenter()
	svc := newNotificationService(center)

	when := time.Date(2026, time.June, 1, 8, 30, 45, 0, time.UTC)
	id := svc.Schedule(context.Background(), "Water the plants", when)

	require.Len(t, center.added, 1)
	req := center.added[0]

	assert.Equal(t, id, req.ID)
	assert.Equal(t, "Plan Reminder", req.Content.Title)
	assert.Equal(t, "Water the plants", req.Content.Subtitle)
	assert.Equal(t, 2026, req.Trigger.Year)
	assert.Equal(t, time.June, req.Trigger.Month)
	assert.Equal(t, 1, req.Trigger.Day)
	assert.Equal(t, 8, req.Trigger.Hour)
	assert.Equal(t, 30, req.Trigger.Minute)
}

func TestScheduleErrorIsSwallowed(t *testing.T) {
	center := newFakeCenter()
	center.addErr = assert.AnError
	svc := newNotificationService(center)

	id := svc.Schedule(context.Background(), "doomed", time.Now())
	assert.NotEmpty(t, id, "id is returned even when registration fails")
	assert.Empty(t, center.added)
}

func TestCancelRetractsByID(t *testing.T) {
	center := newFakeCenter()
	svc := newNotificationService(center)
	ctx := context.Background()

	id := svc.Schedule(ctx, "to cancel", time.Now().Add(time.Hour))
	svc.Cancel(ctx, id)

	require.Len(t, center.removed, 1)
	assert.Equal(t, id, center.removed[0])
}

func TestCancelErrorIsSwallowed(t *testing.T) {
	center := newFakeCenter()
	center.removeErr = assert.AnError
	svc := newNotificationService(center)

	svc.Cancel(context.Background(), "unknown")
	assert.Empty(t, center.removed)
}
