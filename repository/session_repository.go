package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

var errSessionNotFound = apperrors.New(apperrors.CodeNotFound, "session not found")

// SessionRepository keeps sessions in the session table so that several
// server processes sharing one database also share logins.
type SessionRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

type sessionRow struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Profile   string    `db:"profile"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Create stores a new session for p under a random id.
func (r *SessionRepository) Create(ctx context.Context, p models.Profile, expiresAt time.Time) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	s := &models.Session{ID: uuid.NewString(), Profile: p, ExpiresAt: expiresAt.UTC()}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO session (id, user_id, profile, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, p.ID, string(raw), s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// Get returns a live session. Expired sessions are reported as missing.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var row sessionRow
	err := r.db.GetContext(ctx, &row, `SELECT id, user_id, profile, expires_at FROM session WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s := &models.Session{ID: row.ID, ExpiresAt: row.ExpiresAt}
	if s.Expired(r.now()) {
		return nil, errSessionNotFound
	}
	if err := json.Unmarshal([]byte(row.Profile), &s.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return s, nil
}

// UpdateProfile rewrites the snapshot bound to a session.
func (r *SessionRepository) UpdateProfile(ctx context.Context, id string, p models.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE session SET profile = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errSessionNotFound
	}
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions that expired at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
