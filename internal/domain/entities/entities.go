package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrNotSignedIn        = errors.New("no user is signed in")
	ErrEmptyTitle         = errors.New("task title must not be empty")
	ErrInvalidTheme       = errors.New("invalid theme selection")
	ErrInvalidAvatar      = errors.New("avatar index out of range")
)

// ThemeMode is the persisted theme selection (1 light, 2 dark)
type ThemeMode int

const (
	ThemeLight ThemeMode = 1
	ThemeDark  ThemeMode = 2
)

func (m ThemeMode) IsValid() bool {
	return m == ThemeLight || m == ThemeDark
}

// DisplayMode maps the stored selection to the presentation color scheme name.
func (m ThemeMode) DisplayMode() string {
	switch m {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return ""
	}
}

// Flow identifies which top-level navigation flow the router selects.
type Flow string

const (
	AuthFlow Flow = "auth"
	MainFlow Flow = "main"
)

// Task represents a single planned item in the local store
type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Note        string    `json:"note" db:"note"`
	Due         time.Time `json:"due" db:"due"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewTask builds a task with a freshly generated immutable id.
func NewTask(title, note string, due time.Time) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New(),
		Title:     title,
		Note:      note,
		Due:       due,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ToggleCompleted flips the completion flag in place.
func (t *Task) ToggleCompleted() {
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = time.Now()
}

// HasTitle reports whether the title is non-empty after trimming.
// The store itself accepts any input; this check belongs to the form boundary.
func (t *Task) HasTitle() bool {
	return strings.TrimSpace(t.Title) != ""
}

// UserHandle identifies the currently signed-in identity provider user
type UserHandle struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the identity provider's view of the current user.
// The zero value means nobody is signed in.
type Session struct {
	User     *UserHandle `json:"user"`
	Verified bool        `json:"verified"`
}

// Authenticated reports whether the session qualifies for the main flow:
// a user handle must exist and its email must be verified. A signed-in but
// unverified user is not authenticated for routing purposes.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Verified
}

// SignedIn checks only the nullness of the user handle.
func (s Session) SignedIn() bool {
	return s.User != nil
}

// Profile is the user's display profile stored in the remote document store
type Profile struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	AvatarIndex int    `json:"avatar_index"`
}

// DefaultProfile is returned when no document exists for a user yet.
func DefaultProfile() Profile {
	return Profile{Name: "unnamed", Surname: "", AvatarIndex: 0}
}

// AvatarPalette is the fixed set of selectable avatars. Profile.AvatarIndex
// values index into this slice.
var AvatarPalette = []string{
	"blue-purple",
	"pink-red",
	"purple-pink",
	"cyan-blue",
	"green-teal",
}

// ValidAvatarIndex reports whether idx addresses a palette entry.
func ValidAvatarIndex(idx int) bool {
	return idx >= 0 && idx < len(AvatarPalette)
}

// NotificationContent is the payload of a scheduled local alert
type NotificationContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// CalendarTrigger fires once at the next wall-clock match of its fields.
// Seconds and sub-minute precision are intentionally discarded.
type CalendarTrigger struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
}

// CalendarTriggerAt extracts the trigger components from a point in time.
func CalendarTriggerAt(when time.Time) CalendarTrigger {
	return CalendarTrigger{
		Year:   when.Year(),
		Month:  when.Month(),
		Day:    when.Day(),
		Hour:   when.Hour(),
		Minute: when.Minute(),
	}
}

// FireTime resolves the trigger to a concrete time in loc.
func (ct CalendarTrigger) FireTime(loc *time.Location) time.Time {
	return time.Date(ct.Year, ct.Month, ct.Day, ct.Hour, ct.Minute, 0, 0, loc)
}

// Account is an identity provider user record
type Account struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	EmailVerified     bool      `json:"email_verified" db:"email_verified"`
	VerificationToken *string   `json:"-" db:"verification_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Handle derives the session user handle for the account.
func (a *Account) Handle() *UserHandle {
	return &UserHandle{ID: a.ID.String(), Email: a.Email}
}

// Stats are the pure derivations over a task snapshot
type Stats struct {
	CompletedCount int     `json:"completed_count"`
	PendingCount   int     `json:"pending_count"`
	TotalCount     int     `json:"total_count"`
	SuccessRatio   float64 `json:"success_ratio"`
}
