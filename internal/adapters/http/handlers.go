package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/simgebenzerr/planner-core/internal/adapters/identity"
	"github.com/simgebenzerr/planner-core/internal/application/services"
	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	provider *identity.Provider
	sessions *services.SessionService
	profiles *services.ProfileService
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider *identity.Provider, sessions *services.SessionService, profiles *services.ProfileService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		sessions: sessions,
		profiles: profiles,
		logger:   logger,
	}
}

// Register handles account creation: auth record, profile document seed,
// then the verification email.
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.provider.CreateAccount(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Errorw("Registration failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.profiles.Seed(c.Request().Context(), session.User.ID, ports.SeedProfileRequest{
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
	})

	if err := h.provider.SendVerificationEmail(c.Request().Context(), session.User.ID); err != nil {
		// The account exists either way; tell the user what happened.
		h.logger.Errorw("Verification email failed", "error", err, "user_id", session.User.ID)
		return c.JSON(http.StatusCreated, ports.MessageResponse{
			Message: "Account created, but the verification email could not be sent",
		})
	}

	return c.JSON(http.StatusCreated, ports.MessageResponse{
		Message: "Account created, check your inbox for the verification link",
	})
}

// Login signs the user in and rejects unverified accounts. The reload before
// the verified check picks up a verification completed since the last push.
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Errorw("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if refreshed, err := h.provider.Reload(c.Request().Context()); err != nil {
		h.logger.LogBackgroundSyncError("reload_after_signin", err)
	} else {
		session = refreshed
	}

	if !session.Verified {
		_ = h.provider.SignOut(c.Request().Context())
		return echo.NewHTTPError(http.StatusForbidden,
			"Please confirm your account through the verification link sent to your email")
	}

	token, err := h.provider.IssueToken(session)
	if err != nil {
		h.logger.Errorw("Token issue failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, ports.LoginResponse{
		Token:   token,
		Session: session,
		Flow:    services.Route(session),
	})
}

// Logout ends the current session
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.provider.SignOut(c.Request().Context()); err != nil {
		h.logger.Errorw("Logout failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Signed out"})
}

// Verify completes email verification with a token
func (h *AuthHandler) Verify(c echo.Context) error {
	var req ports.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provider.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		h.logger.Errorw("Email verification failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid verification token")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Email verified"})
}

// GetSession returns the tracked session state and the routed flow
func (h *AuthHandler) GetSession(c echo.Context) error {
	session := h.sessions.Current()
	return c.JSON(http.StatusOK, ports.SessionResponse{
		Session: session,
		Flow:    services.Route(session),
	})
}

// RefreshSession re-queries the provider for the freshest state
func (h *AuthHandler) RefreshSession(c echo.Context) error {
	h.sessions.Refresh(c.Request().Context())

	session := h.sessions.Current()
	return c.JSON(http.StatusOK, ports.SessionResponse{
		Session: session,
		Flow:    services.Route(session),
	})
}

// TaskHandler handles task store requests
type TaskHandler struct {
	taskService   *services.TaskService
	notifications *services.NotificationService
	logger        *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, notifications *services.NotificationService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateTask validates the form input and saves the task. The empty-title
// rule lives here, not in the store.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, entities.ErrEmptyTitle.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not save the task")
	}

	if req.Notify {
		h.notifications.Schedule(c.Request().Context(), task.Title, task.Due)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks returns all tasks ordered by due timestamp ascending
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load tasks")
	}

	return c.JSON(http.StatusOK, tasks)
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask mutates task fields in place
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Title != nil && *req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, entities.ErrEmptyTitle.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Errorw("Update task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleTask flips a task's completion flag
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	task, err := h.taskService.ToggleTask(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task permanently. Any alert scheduled for the task
// stays registered.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// AnalyticsHandler serves completion statistics
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	logger    *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// GetStats returns the derivations over the current task snapshot
func (h *AnalyticsHandler) GetStats(c echo.Context) error {
	stats, err := h.analytics.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Analytics snapshot failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not compute statistics")
	}

	return c.JSON(http.StatusOK, stats)
}

// ProfileHandler handles remote profile requests
type ProfileHandler struct {
	profiles *services.ProfileService
	logger   *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *services.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetProfile re-fetches the signed-in user's profile document
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not signed in")
	}

	profile := h.profiles.Fetch(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile writes only the supplied fields
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not signed in")
	}

	var req ports.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.AvatarIndex != nil && !entities.ValidAvatarIndex(*req.AvatarIndex) {
		return echo.NewHTTPError(http.StatusBadRequest, entities.ErrInvalidAvatar.Error())
	}

	h.profiles.Save(c.Request().Context(), userID, req)

	// Background-sync semantics: the write outcome is not surfaced.
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Profile update submitted"})
}

// ThemeHandler handles theme preference requests
type ThemeHandler struct {
	themes *services.ThemeService
	logger *logger.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themes *services.ThemeService, logger *logger.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

type themeResponse struct {
	Theme       entities.ThemeMode `json:"theme"`
	DisplayMode string             `json:"display_mode"`
}

type setThemeRequest struct {
	Theme entities.ThemeMode `json:"theme"`
}

// GetTheme returns the active selection and its derived display mode
func (h *ThemeHandler) GetTheme(c echo.Context) error {
	mode := h.themes.Current()
	return c.JSON(http.StatusOK, themeResponse{Theme: mode, DisplayMode: mode.DisplayMode()})
}

// SetTheme persists a new selection
func (h *ThemeHandler) SetTheme(c echo.Context) error {
	var req setThemeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.themes.Set(c.Request().Context(), req.Theme); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mode := h.themes.Current()
	return c.JSON(http.StatusOK, themeResponse{Theme: mode, DisplayMode: mode.DisplayMode()})
}

// getUserIDFromContext extracts the authenticated user id set by the auth
// middleware
func getUserIDFromContext(c echo.Context) string {
	if v, ok := c.Get("user").(string); ok {
		return v
	}
	return ""
}
