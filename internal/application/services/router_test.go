package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
)

func TestRoute(t *testing.T) {
	handle := &entities.UserHandle{ID: "u1", Email: "a@b.c"}

	tests := []struct {
		name     string
		session  entities.Session
		expected entities.Flow
	}{
		{name: "Signed out", session: entities.Session{}, expected: entities.AuthFlow},
		{name: "Signed in, unverified", session: entities.Session{User: handle}, expected: entities.AuthFlow},
		{name: "Signed in, verified", session: entities.Session{User: handle, Verified: true}, expected: entities.MainFlow},
		{name: "Verified flag without user", session: entities.Session{Verified: true}, expected: entities.AuthFlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Route(tt.session))
		})
	}
}

func TestRouteMatchesAuthenticated(t *testing.T) {
	// The router has no judgement of its own; it mirrors Authenticated.
	sessions := []entities.Session{
		{},
		{User: &entities.UserHandle{ID: "u1"}},
		{User: &entities.UserHandle{ID: "u1"}, Verified: true},
		{Verified: true},
	}

	for _, session := range sessions {
		expected := entities.AuthFlow
		if session.Authenticated() {
			expected = entities.MainFlow
		}
		assert.Equal(t, expected, Route(session))
	}
}
