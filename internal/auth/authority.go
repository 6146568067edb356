package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

// Users is the slice of the user repository the authority needs.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ReplacePassword(ctx context.Context, id int64, check func(currentHash string) error, newHash string) error
}

// ErrAlreadyAuthenticated is returned by Login for a request that already
// carries a session.
var ErrAlreadyAuthenticated = apperrors.New(apperrors.CodeAlreadyAuthenticated, "user is already logged in, please logout first")

// Options configures an Authority.
type Options struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	BcryptCost   int
}

// Authority owns the per-client login state machine: a request is either
// anonymous or bound to exactly one live session.
type Authority struct {
	users    Users
	sessions SessionStore
	opts     Options
	now      func() time.Time
}

func NewAuthority(users Users, sessions SessionStore, opts Options) *Authority {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Authority{users: users, sessions: sessions, opts: opts, now: time.Now}
}

// Login verifies the credentials and opens a session. It returns the session
// and the signed token to hand back as the cookie value.
func (a *Authority) Login(ctx context.Context, username, password string) (*models.Session, string, error) {
	if _, ok := FromContext(ctx); ok {
		return nil, "", ErrAlreadyAuthenticated
	}
	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return nil, "", apperrors.New(apperrors.CodeForbidden, "incorrect password")
	}
	s, err := a.sessions.Create(ctx, u.Profile(), a.now().Add(a.opts.TTL))
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	tok, err := SignSessionToken(a.opts.Secret, s.ID, s.ExpiresAt)
	if err != nil {
		_ = a.sessions.Delete(ctx, s.ID)
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return s, tok, nil
}

// Logout ends the bound session. It is a no-op for anonymous callers.
func (a *Authority) Logout(ctx context.Context) error {
	s, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return a.sessions.Delete(ctx, s.ID)
}

// CurrentUser returns the profile snapshot of the bound session.
func (a *Authority) CurrentUser(ctx context.Context) (models.Profile, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return models.Profile{}, apperrors.ErrUnauthorized
	}
	return s.Profile, nil
}

// RefreshProfile replaces the snapshot bound to the current session, e.g.
// after the user edited their name or email.
func (a *Authority) RefreshProfile(ctx context.Context, p models.Profile) error {
	s, ok := FromContext(ctx)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if err := a.sessions.UpdateProfile(ctx, s.ID, p); err != nil {
		return fmt.Errorf("refresh session profile: %w", err)
	}
	s.Profile = p
	return nil
}

// ChangePassword replaces the current user's password after checking old.
func (a *Authority) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	p, err := a.CurrentUser(ctx)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword, a.opts.BcryptCost)
	if err != nil {
		return err
	}
	return a.users.ReplacePassword(ctx, p.ID, func(current string) error {
		if !VerifyPassword(oldPassword, current) {
			return apperrors.New(apperrors.CodeForbidden, "incorrect password")
		}
		return nil
	}, hash)
}

// Resolve maps a cookie token to its live session.
func (a *Authority) Resolve(ctx context.Context, token string) (*models.Session, error) {
	id, err := ParseSessionToken(token, a.opts.Secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid session token", err)
	}
	s, err := a.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "session expired", err)
		}
		return nil, err
	}
	if s.Expired(a.now()) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "session expired")
	}
	return s, nil
}

// CookieName returns the name of the session cookie.
func (a *Authority) CookieName() string { return a.opts.CookieName }
