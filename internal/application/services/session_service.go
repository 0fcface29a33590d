package services

import (
	"context"
	"sync"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// SessionService tracks the identity provider's session state. It keeps one
// long-lived subscription to the provider and republishes every change to
// its own observers. The user handle and the verified flag always update
// together under the same lock, so observers never see a torn pair.
type SessionService struct {
	provider ports.IdentityProvider
	logger   *logger.Logger

	mu          sync.Mutex
	current     entities.Session
	subscribers map[int]func(entities.Session)
	nextSubID   int
	unsubscribe func()
}

// NewSessionService creates the tracker and attaches it to the provider's
// session-change notifications.
func NewSessionService(provider ports.IdentityProvider, logger *logger.Logger) *SessionService {
	s := &SessionService{
		provider:    provider,
		logger:      logger,
		current:     provider.CurrentSession(),
		subscribers: make(map[int]func(entities.Session)),
	}

	s.unsubscribe = provider.Subscribe(s.apply)

	return s
}

// Current returns the last published session state
func (s *SessionService) Current() entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh re-queries the provider for the freshest verification flag. The
// provider's push notifications may lag a just-completed verification or
// sign-in. On failure the previous state is retained and nothing is
// surfaced; routing stays resilient to transient network errors.
func (s *SessionService) Refresh(ctx context.Context) {
	session, err := s.provider.Reload(ctx)
	if err != nil {
		s.logger.LogBackgroundSyncError("session_refresh", err)
		return
	}

	s.apply(session)
}

// Subscribe registers fn for session updates and returns an unsubscribe
// function. fn is invoked once immediately with the current state.
func (s *SessionService) Subscribe(fn func(entities.Session)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close detaches the tracker from the provider
func (s *SessionService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// apply updates both session fields in one observable step and republishes.
func (s *SessionService) apply(session entities.Session) {
	s.mu.Lock()
	s.current = session
	fns := make([]func(entities.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.logger.LogSessionChange(session.SignedIn(), session.Verified)

	for _, fn := range fns {
		fn(session)
	}
}
