// Package httpserver exposes the REST API over gin.
package httpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskManagementAPI/internal/auth"
	"taskManagementAPI/repository"
)

// Server bundles the dependencies of the REST handlers.
type Server struct {
	Users      repository.UserRepositoryI
	Projects   repository.ProjectRepositoryI
	Tasks      repository.TaskRepositoryI
	Auth       *auth.Authority
	BcryptCost int
}

// NewRouter builds the gin engine with every route mounted under basePath.
func NewRouter(s *Server, basePath string) *gin.Engine {
	if s == nil || s.Auth == nil {
		panic("server dependencies are required")
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(), tracing(), auth.LoadSession(s.Auth))

	root := r.Group(basePath)
	root.POST("/user/register", s.register)
	root.POST("/user/login", s.login)
	root.POST("/user/logout", s.logout)

	authed := root.Group("", auth.RequireAuthenticated())
	authed.GET("/user", s.getUser)
	authed.PUT("/user", s.updateUser)
	authed.PUT("/user/password", s.changePassword)

	authed.GET("/projects", s.listProjects)
	authed.POST("/projects", s.createProject)
	authed.GET("/projects/:id", s.getProject)
	authed.PUT("/projects/:id", s.updateProject)
	authed.DELETE("/projects/:id", s.deleteProject)

	authed.GET("/projects/:id/tasks", s.listTasks)
	authed.POST("/projects/:id/tasks", s.createTask)
	authed.GET("/projects/:id/tasks/:tid", s.getTask)
	authed.PUT("/projects/:id/tasks/:tid", s.updateTask)
	authed.DELETE("/projects/:id/tasks/:tid", s.deleteTask)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})
	return r
}

// StartHTTP serves h on addr and returns a shutdown function.
func StartHTTP(addr string, h http.Handler) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http serve: %v", err)
		}
	}()
	return srv.Shutdown, nil
}
