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
	userColumns  = `id, name, email, username, password`
	msgUserTaken = "that username/email is already taken"
)

var errUserNotFound = apperrors.New(apperrors.CodeNotFound, "that user does not exist")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account. Username and email must be unused.
func (r *UserRepository) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO "user" (name, email, username, password) VALUES (?, ?, ?, ?)`,
		nu.Name, nu.Email, nu.Username, nu.PasswordHash)
	if err != nil {
		return nil, mapWriteErr("insert user", err, msgUserTaken)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}
	return &models.User{
		ID:           id,
		Name:         nu.Name,
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
	}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM "user" WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := getUser(ctx, r.db, `SELECT `+userColumns+` FROM "user" WHERE username = ?`, username)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "that username does not exist")
	}
	return u, err
}

// UpdateProfile replaces the name and email of an account.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out *models.User
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE "user" SET name = ?, email = ? WHERE id = ?`, name, email, id)
		if err != nil {
			return mapWriteErr("update user", err, msgUserTaken)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errUserNotFound
		}
		out, err = getUser(ctx, tx, `SELECT `+userColumns+` FROM "user" WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplacePassword reads the stored hash, hands it to check and, if check
// accepts it, stores newHash. Everything happens in one transaction so a
// concurrent change cannot slip between verification and write.
func (r *UserRepository) ReplacePassword(ctx context.Context, id int64, check func(currentHash string) error, newHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current string
		err := tx.GetContext(ctx, &current, `SELECT password FROM "user" WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errUserNotFound
		}
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE "user" SET password = ? WHERE id = ?`, newHash, id); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

func getUser(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, q, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
