package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

const (
	taskColumns   = `t.id, t.project_id, t.title, t."order", t.creation_date, t.due_date, t.completed`
	msgOrderTaken = "that order is already used by another task of this project"
)

var (
	errTaskNotFound   = apperrors.New(apperrors.CodeNotFound, "that task does not exist")
	errOrderExhausted = apperrors.New(apperrors.CodeConflict, "no order is left above the highest task of this project")
)

// TaskRepository stores tasks and assigns their order. Tasks are only
// reachable through a project owned by the caller.
type TaskRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the tasks of a project, highest order first. A project the
// owner cannot see yields an empty list.
func (r *TaskRepository) List(ctx context.Context, ownerID, projectID int64, page Page) ([]models.Task, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	const scope = ` FROM task t JOIN project p ON p.id = t.project_id
		WHERE t.project_id = ? AND p.user_id = ?`
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+scope, projectID, ownerID); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	limit, args := page.clause()
	query := `SELECT ` + taskColumns + scope + ` ORDER BY t."order" DESC, t.id DESC` + limit
	out := []models.Task{}
	if err := r.db.SelectContext(ctx, &out, query, append([]any{projectID, ownerID}, args...)...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return out, total, nil
}

// NextOrder returns one past the highest order in the project, or 1 for an
// empty project. It must run inside the transaction that uses the value.
func (r *TaskRepository) NextOrder(ctx context.Context, tx *sqlx.Tx, projectID int64) (int, error) {
	top, err := topOrder(ctx, tx, projectID)
	if err != nil {
		return 0, err
	}
	if top >= models.MaxOrder {
		return 0, errOrderExhausted
	}
	return top + 1, nil
}

func topOrder(ctx context.Context, tx *sqlx.Tx, projectID int64) (int, error) {
	var top int
	if err := tx.GetContext(ctx, &top, `SELECT COALESCE(MAX("order"), 0) FROM task WHERE project_id = ?`, projectID); err != nil {
		return 0, fmt.Errorf("top task order: %w", err)
	}
	return top, nil
}

func checkOrder(order int) error {
	if order < 0 {
		return apperrors.New(apperrors.CodeValidation, "order must not be negative")
	}
	if order > models.MaxOrder {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("order must be at most %d", models.MaxOrder))
	}
	return nil
}

// Create inserts a task into a project owned by ownerID. An AutoOrder task is
// placed above every existing sibling.
func (r *TaskRepository) Create(ctx context.Context, ownerID, projectID int64, nt models.NewTask) (*models.Task, error) {
	if err := checkOrder(nt.Order); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t := models.Task{
		ProjectID:    projectID,
		Title:        nt.Title,
		Order:        nt.Order,
		CreationDate: r.now(),
		DueDate:      utcPtr(nt.DueDate),
	}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := getProject(ctx, tx, ownerID, projectID); err != nil {
			return err
		}
		if t.Order == models.AutoOrder {
			next, err := r.NextOrder(ctx, tx, projectID)
			if err != nil {
				return err
			}
			t.Order = next
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO task (project_id, title, "order", creation_date, due_date, completed) VALUES (?, ?, ?, ?, ?, 0)`,
			projectID, t.Title, t.Order, t.CreationDate, t.DueDate)
		if err != nil {
			return mapWriteErr("insert task", err, msgOrderTaken)
		}
		t.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read task id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Get(ctx context.Context, ownerID, projectID, id int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return getTask(ctx, r.db, ownerID, projectID, id)
}

// Update replaces every mutable field of a task. AutoOrder moves the task to
// the top of its project.
func (r *TaskRepository) Update(ctx context.Context, ownerID, projectID, id int64, u models.TaskUpdate) (*models.Task, error) {
	if err := checkOrder(u.Order); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out *models.Task
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getTask(ctx, tx, ownerID, projectID, id)
		if err != nil {
			return err
		}
		order := u.Order
		if order == models.AutoOrder {
			top, err := topOrder(ctx, tx, projectID)
			if err != nil {
				return err
			}
			// Already on top: keep the current rank instead of climbing by one.
			if top == current.Order {
				order = current.Order
			} else if order, err = r.NextOrder(ctx, tx, projectID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE task SET title = ?, "order" = ?, due_date = ?, completed = ? WHERE id = ? AND project_id = ?`,
			u.Title, order, utcPtr(u.DueDate), u.Completed, id, projectID); err != nil {
			return mapWriteErr("update task", err, msgOrderTaken)
		}
		out, err = getTask(ctx, tx, ownerID, projectID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a task. Orders of the remaining tasks are left untouched.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, projectID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM task WHERE id = ? AND project_id IN (SELECT id FROM project WHERE id = ? AND user_id = ?)`,
		id, projectID, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errTaskNotFound
	}
	return nil
}

func getTask(ctx context.Context, q sqlx.QueryerContext, ownerID, projectID, id int64) (*models.Task, error) {
	var t models.Task
	err := sqlx.GetContext(ctx, q, &t, `SELECT `+taskColumns+` FROM task t JOIN project p ON p.id = t.project_id
		WHERE t.id = ? AND t.project_id = ? AND p.user_id = ?`, id, projectID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
