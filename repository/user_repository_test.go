package repository

import (
	"context"
	"errors"
	"testing"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/internal/testutil"
	"taskManagementAPI/models"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userrepo_create")
	repo := NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.Create(ctx, models.NewUser{Name: "Alice", Email: "alice@example.com", Username: "alice", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Username != "alice" {
		t.Fatalf("unexpected created user: %+v", u)
	}

	g, err := repo.GetByID(ctx, u.ID)
	if err != nil || g.Email != "alice@example.com" || g.PasswordHash != "h1" {
		t.Fatalf("get by id: %v %+v", err, g)
	}
	g2, err := repo.GetByUsername(ctx, "alice")
	if err != nil || g2.ID != u.ID {
		t.Fatalf("get by username: %v %+v", err, g2)
	}

	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserRepository_DuplicateUsernameOrEmail(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userrepo_dup")
	repo := NewUserRepository(d)
	ctx := context.Background()

	if _, err := repo.Create(ctx, models.NewUser{Name: "A", Email: "a@example.com", Username: "a", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, models.NewUser{Name: "B", Email: "b@example.com", Username: "a", PasswordHash: "x"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate username: expected conflict, got %v", err)
	}
	_, err = repo.Create(ctx, models.NewUser{Name: "B", Email: "a@example.com", Username: "b", PasswordHash: "x"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userrepo_update")
	repo := NewUserRepository(d)
	ctx := context.Background()

	a := testutil.SeedUser(t, d, "ann", "x")
	testutil.SeedUser(t, d, "bob", "x")

	u, err := repo.UpdateProfile(ctx, a, "Ann B", "ann.b@example.com")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Ann B" || u.Email != "ann.b@example.com" || u.Username != "ann" {
		t.Fatalf("unexpected user after update: %+v", u)
	}
	if _, err := repo.UpdateProfile(ctx, a, "Ann", "bob@example.com"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict on taken email, got %v", err)
	}
	if _, err := repo.UpdateProfile(ctx, 12345, "x", "x@example.com"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserRepository_ReplacePassword(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userrepo_password")
	repo := NewUserRepository(d)
	ctx := context.Background()

	id := testutil.SeedUser(t, d, "carol", "old-hash")

	reject := errors.New("nope")
	err := repo.ReplacePassword(ctx, id, func(current string) error {
		if current != "old-hash" {
			t.Fatalf("check saw %q", current)
		}
		return reject
	}, "new-hash")
	if !errors.Is(err, reject) {
		t.Fatalf("expected check error, got %v", err)
	}
	u, _ := repo.GetByID(ctx, id)
	if u.PasswordHash != "old-hash" {
		t.Fatalf("hash changed despite rejected check: %q", u.PasswordHash)
	}

	if err := repo.ReplacePassword(ctx, id, func(string) error { return nil }, "new-hash"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	u, _ = repo.GetByID(ctx, id)
	if u.PasswordHash != "new-hash" {
		t.Fatalf("hash not replaced: %q", u.PasswordHash)
	}
}
