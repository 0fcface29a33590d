package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
)

func TestSessionTrackerStartsFromProviderState(t *testing.T) {
	provider := newFakeProvider()
	provider.current = entities.Session{User: &entities.UserHandle{ID: "u1"}, Verified: true}

	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	assert.True(t, svc.Current().Authenticated())
}

func TestSessionTrackerFollowsProviderChanges(t *testing.T) {
	provider := newFakeProvider()
	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	assert.False(t, svc.Current().SignedIn())

	_, err := provider.SignIn(context.Background(), "a@b.c", "pw")
	assert.NoError(t, err)
	assert.True(t, svc.Current().Authenticated())

	assert.NoError(t, provider.SignOut(context.Background()))
	assert.False(t, svc.Current().SignedIn())
}

func TestSessionTrackerNeverPublishesTornPair(t *testing.T) {
	provider := newFakeProvider()
	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	// Every observed state must be internally consistent: a verified
	// session always carries its user handle.
	var observed []entities.Session
	unsubscribe := svc.Subscribe(func(session entities.Session) {
		observed = append(observed, session)
	})
	defer unsubscribe()

	_, err := provider.CreateAccount(context.Background(), "a@b.c", "pw")
	assert.NoError(t, err)
	_, err = provider.SignIn(context.Background(), "a@b.c", "pw")
	assert.NoError(t, err)
	assert.NoError(t, provider.SignOut(context.Background()))

	for _, session := range observed {
		if session.Verified {
			assert.NotNil(t, session.User, "verified flag observed without a user handle")
		}
	}
}

func TestSessionSubscribeFiresImmediately(t *testing.T) {
	provider := newFakeProvider()
	provider.current = entities.Session{User: &entities.UserHandle{ID: "u1"}}

	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	calls := 0
	var last entities.Session
	unsubscribe := svc.Subscribe(func(session entities.Session) {
		calls++
		last = session
	})
	defer unsubscribe()

	assert.Equal(t, 1, calls)
	assert.True(t, last.SignedIn())
	assert.False(t, last.Verified)
}

func TestRefreshAppliesReloadedState(t *testing.T) {
	provider := newFakeProvider()
	provider.current = entities.Session{User: &entities.UserHandle{ID: "u1"}}

	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	// Verification completed out of band; only a reload sees it.
	provider.reloadWith = &entities.Session{User: &entities.UserHandle{ID: "u1"}, Verified: true}

	svc.Refresh(context.Background())
	assert.True(t, svc.Current().Authenticated())
}

func TestRefreshFailureRetainsPreviousState(t *testing.T) {
	provider := newFakeProvider()
	provider.current = entities.Session{User: &entities.UserHandle{ID: "u1"}, Verified: true}

	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	provider.reloadErr = assert.AnError

	svc.Refresh(context.Background())
	assert.True(t, svc.Current().Authenticated(), "transient reload failure must not sign the user out")
}

func TestSessionUnsubscribeStopsUpdates(t *testing.T) {
	provider := newFakeProvider()
	svc := NewSessionService(provider, logger.NewNop())
	defer svc.Close()

	calls := 0
	unsubscribe := svc.Subscribe(func(entities.Session) { calls++ })
	assert.Equal(t, 1, calls)

	unsubscribe()

	_, err := provider.SignIn(context.Background(), "a@b.c", "pw")
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
