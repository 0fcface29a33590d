package notify

import (
	"context"
	"sync"
	"time"

	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// Delivery is an alert that reached its fire time
type Delivery struct {
	ID          string
	Title       string
	Subtitle    string
	DeliveredAt time.Time
}

// AuthorizationPolicy decides whether a permission request is granted
type AuthorizationPolicy func(opts ports.AuthorizationOptions) bool

// GrantAll authorizes every request
func GrantAll(ports.AuthorizationOptions) bool { return true }

// DenyAll refuses every request
func DenyAll(ports.AuthorizationOptions) bool { return false }

// Center is a local notification center. Each registered request arms one
// fire-once timer resolved from its calendar trigger; deliveries surface on
// a channel and in the log. Requests added without a granted authorization
// are dropped without error, matching how the OS treats a denied app.
type Center struct {
	logger *logger.Logger
	policy AuthorizationPolicy
	loc    *time.Location

	mu      sync.Mutex
	granted bool
	pending map[string]*time.Timer
	out     chan Delivery
	closed  bool
}

// NewCenter creates a notification center using the given grant policy
func NewCenter(logger *logger.Logger, policy AuthorizationPolicy) *Center {
	if policy == nil {
		policy = GrantAll
	}
	return &Center{
		logger:  logger,
		policy:  policy,
		loc:     time.Local,
		pending: make(map[string]*time.Timer),
		out:     make(chan Delivery, 64),
	}
}

// Deliveries exposes fired alerts
func (c *Center) Deliveries() <-chan Delivery {
	return c.out
}

// RequestAuthorization applies the grant policy. The outcome is recorded
// but not returned as an error; callers treat this as fire-and-forget.
func (c *Center) RequestAuthorization(ctx context.Context, opts ports.AuthorizationOptions) error {
	granted := c.policy(opts)

	c.mu.Lock()
	c.granted = granted
	c.mu.Unlock()

	c.logger.Infow("Notification authorization requested",
		"alert", opts.Alert, "sound", opts.Sound, "badge", opts.Badge, "granted", granted)
	return nil
}

// AddRequest arms a fire-once timer for the request's calendar trigger.
// With authorization missing the request is silently dropped.
func (c *Center) AddRequest(ctx context.Context, req ports.NotificationRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	if !c.granted {
		c.logger.Debugw("Notification request dropped, no authorization", "request_id", req.ID)
		return nil
	}

	fireAt := req.Trigger.FireTime(c.loc)
	wait := time.Until(fireAt)
	if wait < 0 {
		wait = 0
	}

	c.pending[req.ID] = time.AfterFunc(wait, func() {
		c.fire(req, fireAt)
	})

	return nil
}

// RemoveRequest cancels a pending request by id. Unknown ids are a no-op:
// the alert may already have fired.
func (c *Center) RemoveRequest(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.pending[id]; ok {
		timer.Stop()
		delete(c.pending, id)
	}

	return nil
}

// Close stops all pending timers
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for id, timer := range c.pending {
		timer.Stop()
		delete(c.pending, id)
	}
	close(c.out)
}

func (c *Center) fire(req ports.NotificationRequest, fireAt time.Time) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	delete(c.pending, req.ID)

	delivery := Delivery{
		ID:          req.ID,
		Title:       req.Content.Title,
		Subtitle:    req.Content.Subtitle,
		DeliveredAt: time.Now(),
	}

	select {
	case c.out <- delivery:
	default:
		// Nobody draining; the log entry below is the delivery record.
	}
	c.mu.Unlock()

	c.logger.Infow("Notification delivered",
		"request_id", req.ID, "subtitle", req.Content.Subtitle, "fired_at", fireAt)
}
