package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

const usersCollection = "users"

// ProfileService reads and writes the user's display profile in the remote
// document store. There is no cache across fetches: every call re-queries.
// Remote failures are logged and swallowed; the caller keeps seeing the
// last-known (possibly stale or default) values.
type ProfileService struct {
	store  ports.DocumentStore
	logger *logger.Logger

	mu        sync.Mutex
	lastKnown map[string]entities.Profile
}

// NewProfileService creates a new profile service
func NewProfileService(store ports.DocumentStore, logger *logger.Logger) *ProfileService {
	return &ProfileService{
		store:     store,
		logger:    logger,
		lastKnown: make(map[string]entities.Profile),
	}
}

// Fetch loads the profile document for a user. A missing document yields the
// default profile rather than an error. A transport failure yields the
// last-known values for that user, or the default when none exist yet.
func (s *ProfileService) Fetch(ctx context.Context, userID string) entities.Profile {
	fields, err := s.store.Get(ctx, usersCollection, userID)
	if err != nil {
		if errors.Is(err, entities.ErrDocumentNotFound) {
			return entities.DefaultProfile()
		}

		s.logger.LogBackgroundSyncError("profile_fetch", err, "user_id", userID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if p, ok := s.lastKnown[userID]; ok {
			return p
		}
		return entities.DefaultProfile()
	}

	profile := profileFromFields(fields)

	s.mu.Lock()
	s.lastKnown[userID] = profile
	s.mu.Unlock()

	return profile
}

// Save writes only the supplied fields; everything else in the document is
// left untouched. Failures are logged and swallowed.
func (s *ProfileService) Save(ctx context.Context, userID string, req ports.UpdateProfileRequest) {
	fields := make(map[string]any)
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Surname != nil {
		fields["surname"] = *req.Surname
	}
	if req.AvatarIndex != nil {
		fields["avatarIndex"] = *req.AvatarIndex
	}

	if len(fields) == 0 {
		return
	}

	if err := s.store.Update(ctx, usersCollection, userID, fields); err != nil {
		s.logger.LogBackgroundSyncError("profile_save", err, "user_id", userID)
		return
	}

	s.mu.Lock()
	profile := s.lastKnown[userID]
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Surname != nil {
		profile.Surname = *req.Surname
	}
	if req.AvatarIndex != nil {
		profile.AvatarIndex = *req.AvatarIndex
	}
	s.lastKnown[userID] = profile
	s.mu.Unlock()
}

// Seed writes the full initial user document at registration time
func (s *ProfileService) Seed(ctx context.Context, userID string, req ports.SeedProfileRequest) {
	fields := map[string]any{
		"uid":         userID,
		"name":        req.Name,
		"surname":     req.Surname,
		"email":       req.Email,
		"gender":      req.Gender,
		"birthDate":   req.BirthDate.Format(time.RFC3339),
		"createdAt":   time.Now().Format(time.RFC3339),
		"avatarIndex": 0,
	}

	if err := s.store.Set(ctx, usersCollection, userID, fields); err != nil {
		s.logger.LogBackgroundSyncError("profile_seed", err, "user_id", userID)
	}
}

func profileFromFields(fields map[string]any) entities.Profile {
	profile := entities.DefaultProfile()

	if v, ok := fields["name"].(string); ok && v != "" {
		profile.Name = v
	}
	if v, ok := fields["surname"].(string); ok {
		profile.Surname = v
	}
	switch v := fields["avatarIndex"].(type) {
	case float64:
		profile.AvatarIndex = int(v)
	case int:
		profile.AvatarIndex = v
	case int64:
		profile.AvatarIndex = int(v)
	}
	if !entities.ValidAvatarIndex(profile.AvatarIndex) {
		profile.AvatarIndex = 0
	}

	return profile
}
