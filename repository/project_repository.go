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
	projectColumns  = `id, user_id, title, creation_date, last_updated`
	msgProjectTitle = "you are already using that project title"
)

var errProjectNotFound = apperrors.New(apperrors.CodeNotFound, "that project does not exist")

// ProjectRepository stores projects. Every query is scoped by owner so a
// project of another user behaves exactly like a missing one.
type ProjectRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the owner's projects, most recently updated first, together
// with the unpaginated total.
func (r *ProjectRepository) List(ctx context.Context, ownerID int64, page Page) ([]models.Project, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM project WHERE user_id = ?`, ownerID); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	limit, args := page.clause()
	query := `SELECT ` + projectColumns + ` FROM project WHERE user_id = ?
		ORDER BY last_updated DESC, id DESC` + limit
	out := []models.Project{}
	if err := r.db.SelectContext(ctx, &out, query, append([]any{ownerID}, args...)...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return out, total, nil
}

// Create inserts a project. Titles are unique per owner.
func (r *ProjectRepository) Create(ctx context.Context, ownerID int64, title string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO project (user_id, title, creation_date, last_updated) VALUES (?, ?, ?, ?)`,
		ownerID, title, now, now)
	if err != nil {
		return nil, mapWriteErr("insert project", err, msgProjectTitle)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read project id: %w", err)
	}
	return &models.Project{ID: id, UserID: ownerID, Title: title, CreationDate: now, LastUpdated: now}, nil
}

func (r *ProjectRepository) Get(ctx context.Context, ownerID, id int64) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return getProject(ctx, r.db, ownerID, id)
}

// Update renames a project and refreshes its last_updated stamp.
func (r *ProjectRepository) Update(ctx context.Context, ownerID, id int64, title string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out *models.Project
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE project SET title = ?, last_updated = ? WHERE id = ? AND user_id = ?`,
			title, r.now(), id, ownerID)
		if err != nil {
			return mapWriteErr("update project", err, msgProjectTitle)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errProjectNotFound
		}
		out, err = getProject(ctx, tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a project and its tasks in one transaction.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := getProject(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

func getProject(ctx context.Context, q sqlx.QueryerContext, ownerID, id int64) (*models.Project, error) {
	var p models.Project
	err := sqlx.GetContext(ctx, q, &p, `SELECT `+projectColumns+` FROM project WHERE id = ? AND user_id = ?`, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}
