package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simgebenzerr/planner-core/internal/domain/entities"
)

// TaskService interface for task store operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (*entities.Task, error)
	ToggleTask(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ListTasks(ctx context.Context) ([]*entities.Task, error)
	Subscribe(fn func(snapshot []*entities.Task)) func()
}

// SessionService interface for the session state tracker
type SessionService interface {
	Current() entities.Session
	Refresh(ctx context.Context)
	Subscribe(fn func(entities.Session)) func()
}

// ProfileService interface for remote profile sync
type ProfileService interface {
	Fetch(ctx context.Context, userID string) entities.Profile
	Save(ctx context.Context, userID string, req UpdateProfileRequest)
	Seed(ctx context.Context, userID string, req SeedProfileRequest)
}

// NotificationService interface for the notification scheduler
type NotificationService interface {
	Start(ctx context.Context)
	Schedule(ctx context.Context, title string, when time.Time) string
	Cancel(ctx context.Context, id string)
}

// ThemeService interface for the theme preference store
type ThemeService interface {
	Current() entities.ThemeMode
	Set(ctx context.Context, mode entities.ThemeMode) error
}

// Request/Response Types

// Task related types
type CreateTaskRequest struct {
	Title  string    `json:"title" validate:"required"`
	Note   string    `json:"note"`
	Due    time.Time `json:"due" validate:"required"`
	Notify bool      `json:"notify"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty"`
	Note        *string    `json:"note"`
	Due         *time.Time `json:"due"`
	IsCompleted *bool      `json:"is_completed"`
}

// Profile related types
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	AvatarIndex *int    `json:"avatar_index" validate:"omitempty,min=0"`
}

// SeedProfileRequest carries the initial document written at registration
type SeedProfileRequest struct {
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	BirthDate time.Time `json:"birth_date"`
}

// Auth related types
type RegisterRequest struct {
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required,min=6"`
	PasswordConfirm string    `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string    `json:"name"`
	Surname         string    `json:"surname"`
	Gender          string    `json:"gender"`
	BirthDate       time.Time `json:"birth_date"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token   string           `json:"token"`
	Session entities.Session `json:"session"`
	Flow    entities.Flow    `json:"flow"`
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type SessionResponse struct {
	Session entities.Session `json:"session"`
	Flow    entities.Flow    `json:"flow"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
