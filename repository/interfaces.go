package repository

import (
	"context"
	"time"

	"taskManagementAPI/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u models.NewUser) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error)
	ReplacePassword(ctx context.Context, id int64, check func(currentHash string) error, newHash string) error
}

// ProjectRepositoryI defines owner-scoped operations on Project entities.
type ProjectRepositoryI interface {
	List(ctx context.Context, ownerID int64, page Page) ([]models.Project, int, error)
	Create(ctx context.Context, ownerID int64, title string) (*models.Project, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Project, error)
	Update(ctx context.Context, ownerID, id int64, title string) (*models.Project, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// TaskRepositoryI defines operations on Task entities, scoped through the
// owning project's user.
type TaskRepositoryI interface {
	List(ctx context.Context, ownerID, projectID int64, page Page) ([]models.Task, int, error)
	Create(ctx context.Context, ownerID, projectID int64, t models.NewTask) (*models.Task, error)
	Get(ctx context.Context, ownerID, projectID, id int64) (*models.Task, error)
	Update(ctx context.Context, ownerID, projectID, id int64, u models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, ownerID, projectID, id int64) error
}

// SessionRepositoryI persists server-side sessions.
type SessionRepositoryI interface {
	Create(ctx context.Context, p models.Profile, expiresAt time.Time) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ UserRepositoryI    = (*UserRepository)(nil)
	_ ProjectRepositoryI = (*ProjectRepository)(nil)
	_ TaskRepositoryI    = (*TaskRepository)(nil)
	_ SessionRepositoryI = (*SessionRepository)(nil)
)
