package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskManagementAPI/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(a *Authority) *gin.Engine {
	r := gin.New()
	r.Use(LoadSession(a))
	r.GET("/open", func(c *gin.Context) {
		_, ok := FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	r.GET("/closed", RequireAuthenticated(), func(c *gin.Context) {
		p, _ := a.CurrentUser(c.Request.Context())
		c.String(http.StatusOK, p.Username)
	})
	return r
}

func TestMiddleware_GuardsRoutes(t *testing.T) {
	a := NewAuthority(nil, NewMemorySessionStore(), Options{Secret: testSecret, BcryptCost: bcrypt.MinCost})
	r := newGuardedRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/closed", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad cookie: got %d want 401", w.Code)
	}

	s, err := a.sessions.Create(context.Background(), models.Profile{ID: 7, Username: "zoe"}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	tok, _ := SignSessionToken(testSecret, s.ID, s.ExpiresAt)
	req = httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "zoe" {
		t.Fatalf("valid cookie: got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("open route: got %d", w.Code)
	}
}

func TestSetAndClearCookie(t *testing.T) {
	a := NewAuthority(nil, NewMemorySessionStore(), Options{Secret: testSecret, CookieName: "sid", CookieSecure: true})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	a.SetCookie(c, "tok", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "sid" || ck.Value != "tok" || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
		t.Fatalf("unexpected cookie: %+v", ck)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	a.ClearCookie(c)
	ck = w.Result().Cookies()[0]
	if ck.MaxAge >= 0 || ck.Value != "" {
		t.Fatalf("cookie not cleared: %+v", ck)
	}
}
