package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/simgebenzerr/planner-core/internal/domain/entities"
)

// TaskRepository defines the interface for local task persistence
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDue returns every task ordered by due timestamp ascending.
	// An empty store yields an empty slice, not an error.
	ListByDue(ctx context.Context) ([]*entities.Task, error)
	Count(ctx context.Context) (int64, error)
}

// SettingsRepository is the local key-value persistence collaborator.
// Unset keys read back as 0.
type SettingsRepository interface {
	GetInt(ctx context.Context, key string) (int, error)
	SetInt(ctx context.Context, key string, value int) error
}

// DocumentStore is the remote key-addressed, field-structured persistence
// collaborator. Documents are addressed by collection and id.
type DocumentStore interface {
	// Get returns the document's fields, or entities.ErrDocumentNotFound
	// when the document is absent.
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	// Set overwrites the whole document.
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	// Update merges the supplied fields into the document; fields not
	// named are left untouched.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}

// AccountRepository defines persistence for identity provider accounts
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	MarkVerified(ctx context.Context, token string) (*entities.Account, error)
}

// IdentityProvider is the external identity collaborator. Session changes
// are pushed to subscribers; Reload re-queries for the freshest state.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (entities.Session, error)
	CreateAccount(ctx context.Context, email, password string) (entities.Session, error)
	SignOut(ctx context.Context) error
	SendVerificationEmail(ctx context.Context, userID string) error
	Reload(ctx context.Context) (entities.Session, error)
	CurrentSession() entities.Session
	// Subscribe registers fn for session-change notifications and returns
	// an unsubscribe function.
	Subscribe(fn func(entities.Session)) func()
}

// AuthorizationOptions mirror the alert/sound/badge permission request
type AuthorizationOptions struct {
	Alert bool
	Sound bool
	Badge bool
}

// NotificationRequest is a fire-once alert registration
type NotificationRequest struct {
	ID      string
	Content entities.NotificationContent
	Trigger entities.CalendarTrigger
}

// NotificationCenter is the OS-level notification collaborator
type NotificationCenter interface {
	// RequestAuthorization is fire-and-forget; the result is unused by
	// callers and scheduling is never gated on it.
	RequestAuthorization(ctx context.Context, opts AuthorizationOptions) error
	AddRequest(ctx context.Context, req NotificationRequest) error
	RemoveRequest(ctx context.Context, id string) error
}
