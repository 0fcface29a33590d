package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

const themeKey = "selectedTheme"

// ThemeService holds the process-wide theme preference. It is loaded once
// at startup from the local key-value store and persisted synchronously on
// every change.
type ThemeService struct {
	settings ports.SettingsRepository
	logger   *logger.Logger

	mu      sync.Mutex
	current entities.ThemeMode
}

// NewThemeService loads the persisted preference. An unset value (stored 0)
// defaults to dark.
func NewThemeService(ctx context.Context, settings ports.SettingsRepository, logger *logger.Logger) (*ThemeService, error) {
	saved, err := settings.GetInt(ctx, themeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme preference: %w", err)
	}

	mode := entities.ThemeMode(saved)
	if !mode.IsValid() {
		mode = entities.ThemeDark
	}

	return &ThemeService{
		settings: settings,
		logger:   logger,
		current:  mode,
	}, nil
}

// Current returns the active theme selection
func (s *ThemeService) Current() entities.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set persists a new selection before making it visible
func (s *ThemeService) Set(ctx context.Context, mode entities.ThemeMode) error {
	if !mode.IsValid() {
		return entities.ErrInvalidTheme
	}

	if err := s.settings.SetInt(ctx, themeKey, int(mode)); err != nil {
		return fmt.Errorf("failed to persist theme preference: %w", err)
	}

	s.mu.Lock()
	s.current = mode
	s.mu.Unlock()

	s.logger.Infow("Theme preference changed", "theme", mode.DisplayMode())
	return nil
}
