package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

var errNoSuchTask = apperrors.New(apperrors.CodeNotFound, "that task does not exist")

// Missing projects and tasks are reported as 400 on every task route.
const taskNotFound = http.StatusBadRequest

type createTaskRequest struct {
	Title   string     `json:"title" binding:"required"`
	Order   *int       `json:"order" binding:"omitempty,min=0,max=2147483647"`
	DueDate *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title     string     `json:"title" binding:"required"`
	Order     *int       `json:"order" binding:"required,min=0,max=2147483647"`
	DueDate   *time.Time `json:"due_date"`
	Completed *bool      `json:"completed" binding:"required"`
}

// taskScope resolves the caller and the project/task ids of a task route.
// withTask controls whether :tid is read.
func (s *Server) taskScope(c *gin.Context, withTask bool) (owner, project, task int64, ok bool) {
	me, err := s.Auth.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err, taskNotFound)
		return 0, 0, 0, false
	}
	project, err = pathID(c, "id", errNoSuchProject)
	if err != nil {
		writeError(c, err, taskNotFound)
		return 0, 0, 0, false
	}
	if withTask {
		task, err = pathID(c, "tid", errNoSuchTask)
		if err != nil {
			writeError(c, err, taskNotFound)
			return 0, 0, 0, false
		}
	}
	return me.ID, project, task, true
}

func (s *Server) listTasks(c *gin.Context) {
	owner, project, _, ok := s.taskScope(c, false)
	if !ok {
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	tasks, total, err := s.Tasks.List(c.Request.Context(), owner, project, page)
	if err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Task]{Total: total, Data: tasks})
}

func (s *Server) createTask(c *gin.Context) {
	owner, project, _, ok := s.taskScope(c, false)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	nt := models.NewTask{Title: req.Title, Order: models.AutoOrder, DueDate: req.DueDate}
	if req.Order != nil {
		nt.Order = *req.Order
	}
	t, err := s.Tasks.Create(c.Request.Context(), owner, project, nt)
	if err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) getTask(c *gin.Context) {
	owner, project, id, ok := s.taskScope(c, true)
	if !ok {
		return
	}
	t, err := s.Tasks.Get(c.Request.Context(), owner, project, id)
	if err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) updateTask(c *gin.Context) {
	owner, project, id, ok := s.taskScope(c, true)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	t, err := s.Tasks.Update(c.Request.Context(), owner, project, id, models.TaskUpdate{
		Title:     req.Title,
		Order:     *req.Order,
		DueDate:   req.DueDate,
		Completed: *req.Completed,
	})
	if err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c *gin.Context) {
	owner, project, id, ok := s.taskScope(c, true)
	if !ok {
		return
	}
	if err := s.Tasks.Delete(c.Request.Context(), owner, project, id); err != nil {
		writeError(c, err, taskNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
