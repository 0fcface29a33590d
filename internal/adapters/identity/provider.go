package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// Claims represents the session token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider is the identity collaborator backing session state. It tracks a
// single current session (one signed-in user per process) and pushes every
// session change to subscribers.
type Provider struct {
	accounts ports.AccountRepository
	config   config.IdentityConfig
	logger   *logger.Logger

	mu          sync.Mutex
	current     entities.Session
	subscribers map[int]func(entities.Session)
	nextSubID   int
}

// NewProvider creates a new identity provider
func NewProvider(accounts ports.AccountRepository, cfg config.IdentityConfig, logger *logger.Logger) *Provider {
	return &Provider{
		accounts:    accounts,
		config:      cfg,
		logger:      logger,
		subscribers: make(map[int]func(entities.Session)),
	}
}

// SignIn authenticates with email and password. Signing in does not require
// a verified email; the verified flag simply rides along in the session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (entities.Session, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		p.logger.Warnw("Sign-in attempt with unknown email", "email", email)
		return entities.Session{}, entities.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		p.logger.Warnw("Sign-in attempt with invalid password", "email", email)
		return entities.Session{}, entities.ErrInvalidCredentials
	}

	session := entities.Session{User: account.Handle(), Verified: account.EmailVerified}
	p.setCurrent(session)

	p.logger.Infow("User signed in", "user_id", account.ID, "verified", account.EmailVerified)
	return session, nil
}

// CreateAccount registers a new account and signs it in, unverified.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (entities.Session, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entities.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &entities.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := p.accounts.Create(ctx, account); err != nil {
		return entities.Session{}, fmt.Errorf("failed to create account: %w", err)
	}

	session := entities.Session{User: account.Handle(), Verified: false}
	p.setCurrent(session)

	p.logger.Infow("Account created", "user_id", account.ID, "email", account.Email)
	return session, nil
}

// SignOut ends the current session
func (p *Provider) SignOut(ctx context.Context) error {
	p.setCurrent(entities.Session{})
	p.logger.Info("User signed out")
	return nil
}

// SendVerificationEmail issues a fresh verification token for the user.
// There is no mail transport here; the token is surfaced through the log
// the way a hosted provider would send a link.
func (p *Provider) SendVerificationEmail(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	if err := p.accounts.SetVerificationToken(ctx, id, token); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	p.logger.Infow("Verification email sent", "user_id", userID, "token", token)
	return nil
}

// VerifyEmail completes verification for the account holding the token and
// refreshes the current session if it belongs to that account.
func (p *Provider) VerifyEmail(ctx context.Context, token string) error {
	account, err := p.accounts.MarkVerified(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	p.mu.Lock()
	sameUser := p.current.User != nil && p.current.User.ID == account.ID.String()
	p.mu.Unlock()

	if sameUser {
		p.setCurrent(entities.Session{User: account.Handle(), Verified: true})
	}

	p.logger.Infow("Email verified", "user_id", account.ID)
	return nil
}

// Reload re-queries the backend for the current user's freshest state and
// applies it. With nobody signed in it returns the empty session.
func (p *Provider) Reload(ctx context.Context) (entities.Session, error) {
	p.mu.Lock()
	user := p.current.User
	p.mu.Unlock()

	if user == nil {
		return entities.Session{}, nil
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return entities.Session{}, fmt.Errorf("invalid user id: %w", err)
	}

	account, err := p.accounts.GetByID(ctx, id)
	if err != nil {
		return entities.Session{}, fmt.Errorf("failed to reload account: %w", err)
	}

	session := entities.Session{User: account.Handle(), Verified: account.EmailVerified}
	p.setCurrent(session)

	return session, nil
}

// CurrentSession returns the provider's current session
func (p *Provider) CurrentSession() entities.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn for session-change notifications
func (p *Provider) Subscribe(fn func(entities.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// IssueToken signs a session token for the API surface
func (p *Provider) IssueToken(session entities.Session) (string, error) {
	if session.User == nil {
		return "", entities.ErrNotSignedIn
	}

	claims := &Claims{
		UserID: session.User.ID,
		Email:  session.User.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.config.TokenExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    p.config.Issuer,
			Subject:   session.User.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(p.config.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a session token
func (p *Provider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(p.config.TokenSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// setCurrent swaps the session and fans the change out to subscribers.
// Both session fields travel together in one step.
func (p *Provider) setCurrent(session entities.Session) {
	p.mu.Lock()
	p.current = session
	fns := make([]func(entities.Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}
