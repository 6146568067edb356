package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskManagementAPI/internal/auth"
	"taskManagementAPI/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	hash, err := auth.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	u, err := s.Users.Create(c.Request.Context(), models.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusCreated, u.Profile())
}

func (s *Server) login(c *gin.Context) {
	if _, ok := auth.FromContext(c.Request.Context()); ok {
		writeError(c, auth.ErrAlreadyAuthenticated, 0)
		return
	}
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	sess, token, err := s.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	s.Auth.SetCookie(c, token, sess.ExpiresAt)
	c.JSON(http.StatusOK, sess.Profile)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.Auth.Logout(c.Request.Context()); err != nil {
		writeError(c, err, 0)
		return
	}
	s.Auth.ClearCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) getUser(c *gin.Context) {
	p, err := s.Auth.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateUser(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	u, err := s.Users.UpdateProfile(ctx, me.ID, req.Name, req.Email)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	p := u.Profile()
	if err := s.Auth.RefreshProfile(ctx, p); err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) changePassword(c *gin.Context) {
	var req passwordRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	if err := s.Auth.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.Status(http.StatusNoContent)
}
