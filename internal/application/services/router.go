package services

import (
	"github.com/simgebenzerr/planner-core/internal/domain/entities"
)

// Route selects the top-level flow for a session. The main flow is chosen
// iff a user handle exists and the email is verified; every other
// combination yields the auth flow. Pure, no state of its own; callers
// re-evaluate it on every session tracker update.
func Route(session entities.Session) entities.Flow {
	if session.Authenticated() {
		return entities.MainFlow
	}
	return entities.AuthFlow
}
