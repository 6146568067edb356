package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/internal/testutil"
	"taskManagementAPI/models"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestProjectRepository_CRUD(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "projectrepo_crud")
	repo := NewProjectRepository(d)
	ctx := context.Background()
	owner := testutil.SeedUser(t, d, "alice", "x")

	p, err := repo.Create(ctx, owner, "Home")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 || !p.CreationDate.Equal(p.LastUpdated) {
		t.Fatalf("unexpected project: %+v", p)
	}

	g, err := repo.Get(ctx, owner, p.ID)
	if err != nil || g.Title != "Home" {
		t.Fatalf("get: %v %+v", err, g)
	}

	u, err := repo.Update(ctx, owner, p.ID, "House")
	if err != nil || u.Title != "House" {
		t.Fatalf("update: %v %+v", err, u)
	}
	if u.LastUpdated.Before(p.LastUpdated) {
		t.Fatalf("last_updated went backwards: %v < %v", u.LastUpdated, p.LastUpdated)
	}

	if err := repo.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, owner, p.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, owner, p.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestProjectRepository_TitleUniquePerOwner(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "projectrepo_unique")
	repo := NewProjectRepository(d)
	ctx := context.Background()
	alice := testutil.SeedUser(t, d, "alice", "x")
	bob := testutil.SeedUser(t, d, "bob", "x")

	if _, err := repo.Create(ctx, alice, "Work"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, alice, "Work"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := repo.Create(ctx, bob, "Work"); err != nil {
		t.Fatalf("other owner may reuse title: %v", err)
	}

	other, err := repo.Create(ctx, alice, "Play")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Update(ctx, alice, other.ID, "Work"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("rename onto taken title: expected conflict, got %v", err)
	}

	list, total, err := repo.List(ctx, alice, Page{})
	if err != nil || total != 2 || len(list) != 2 {
		t.Fatalf("list after conflicts: %v total=%d len=%d", err, total, len(list))
	}
}

func TestProjectRepository_OwnerIsolation(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "projectrepo_isolation")
	repo := NewProjectRepository(d)
	ctx := context.Background()
	alice := testutil.SeedUser(t, d, "alice", "x")
	bob := testutil.SeedUser(t, d, "bob", "x")

	p, err := repo.Create(ctx, alice, "Secret")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Get(ctx, bob, p.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := repo.Update(ctx, bob, p.ID, "Mine"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := repo.Delete(ctx, bob, p.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
	list, total, err := repo.List(ctx, bob, Page{})
	if err != nil || total != 0 || len(list) != 0 {
		t.Fatalf("bob sees projects: %v total=%d %+v", err, total, list)
	}
	if g, err := repo.Get(ctx, alice, p.ID); err != nil || g.Title != "Secret" {
		t.Fatalf("alice's project changed: %v %+v", err, g)
	}
}

func TestProjectRepository_ListOrderAndPaging(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "projectrepo_list")
	repo := NewProjectRepository(d)
	repo.now = stepClock()
	ctx := context.Background()
	owner := testutil.SeedUser(t, d, "alice", "x")

	var ids []int64
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		p, err := repo.Create(ctx, owner, title)
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, p.ID)
	}
	// Touching "b" moves it to the front.
	if _, err := repo.Update(ctx, owner, ids[1], "b2"); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, total, err := repo.List(ctx, owner, Page{})
	if err != nil || total != 5 {
		t.Fatalf("list: %v total=%d", err, total)
	}
	want := []string{"b2", "e", "d", "c", "a"}
	for i, p := range all {
		if p.Title != want[i] {
			t.Fatalf("position %d: got %q want %q", i, p.Title, want[i])
		}
	}

	page2, total, err := repo.List(ctx, owner, Page{Page: 2, Limit: 2})
	if err != nil || total != 5 || len(page2) != 2 || page2[0].Title != "d" || page2[1].Title != "c" {
		t.Fatalf("page 2: %v total=%d %+v", err, total, page2)
	}
	page0, _, err := repo.List(ctx, owner, Page{Page: -3, Limit: 2})
	if err != nil || len(page0) != 2 || page0[0].Title != "b2" {
		t.Fatalf("page < 1 should behave as page 1: %v %+v", err, page0)
	}
	beyond, total, err := repo.List(ctx, owner, Page{Page: 9, Limit: 2})
	if err != nil || total != 5 || len(beyond) != 0 {
		t.Fatalf("page past the end: %v total=%d %+v", err, total, beyond)
	}
}

func TestProjectRepository_DeleteRemovesTasks(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "projectrepo_cascade")
	projects := NewProjectRepository(d)
	tasks := NewTaskRepository(d)
	ctx := context.Background()
	owner := testutil.SeedUser(t, d, "alice", "x")

	p, err := projects.Create(ctx, owner, "Doomed")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := tasks.Create(ctx, owner, p.ID, models.NewTask{Title: "t"}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if err := projects.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int
	if err := d.GetContext(ctx, &n, `SELECT COUNT(*) FROM task WHERE project_id = ?`, p.ID); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("%d tasks survived their project", n)
	}
}
