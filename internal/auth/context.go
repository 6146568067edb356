package auth

import (
	"context"

	"taskManagementAPI/models"
)

type sessionKey struct{}

// WithSession stores the resolved session in context.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext retrieves the session from context (if any).
func FromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*models.Session)
	return s, ok && s != nil
}
