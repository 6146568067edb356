package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "taskManagementAPI/internal/errors"
)

// LoadSession resolves the session cookie and binds the session to the
// request context. Requests without a valid cookie continue anonymously.
func LoadSession(a *Authority) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(a.CookieName())
		if err != nil || tok == "" {
			c.Next()
			return
		}
		s, err := a.Resolve(c.Request.Context(), tok)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeUnknown {
				log.Printf("resolve session: %v", err)
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireAuthenticated aborts anonymous requests with 401.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": apperrors.ErrUnauthorized.Message})
			return
		}
		c.Next()
	}
}

// SetCookie writes the session cookie.
func (a *Authority) SetCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (a *Authority) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
