package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

var errNoSuchProject = apperrors.New(apperrors.CodeNotFound, "that project does not exist")

type projectRequest struct {
	Title string `json:"title" binding:"required"`
}

func (s *Server) listProjects(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	projects, total, err := s.Projects.List(ctx, me.ID, page)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Project]{Total: total, Data: projects})
}

func (s *Server) createProject(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	var req projectRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	p, err := s.Projects.Create(ctx, me.ID, req.Title)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	id, err := pathID(c, "id", errNoSuchProject)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	p, err := s.Projects.Get(ctx, me.ID, id)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	id, err := pathID(c, "id", errNoSuchProject)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	var req projectRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, 0)
		return
	}
	p, err := s.Projects.Update(ctx, me.ID, id, req.Title)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	id, err := pathID(c, "id", errNoSuchProject)
	if err != nil {
		writeError(c, err, 0)
		return
	}
	if err := s.Projects.Delete(ctx, me.ID, id); err != nil {
		writeError(c, err, 0)
		return
	}
	c.Status(http.StatusNoContent)
}
