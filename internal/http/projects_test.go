package httpserver

import (
	"fmt"
	"net/http"
	"testing"
)

type projectBody struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	CreationDate string `json:"creation_date"`
	LastUpdated  string `json:"last_updated"`
}

func TestProjectRoutes(t *testing.T) {
	cl := newClient(t, newTestRouter(t, "http_projects", ""))
	register(t, cl, "alice", "pw")
	login(t, cl, "alice", "pw")

	var p projectBody
	expect(t, cl.do(http.MethodPost, "/projects", map[string]string{"title": "Garden"}), http.StatusCreated, &p)
	if p.ID == 0 || p.CreationDate == "" || p.LastUpdated == "" {
		t.Fatalf("unexpected project: %+v", p)
	}
	path := fmt.Sprintf("/projects/%d", p.ID)

	var got projectBody
	expect(t, cl.do(http.MethodGet, path, nil), http.StatusOK, &got)
	if got.Title != "Garden" {
		t.Fatalf("get: %+v", got)
	}
	expect(t, cl.do(http.MethodPut, path, map[string]string{"title": "Orchard"}), http.StatusOK, &got)
	if got.Title != "Orchard" {
		t.Fatalf("update: %+v", got)
	}
	expect(t, cl.do(http.MethodPut, path, map[string]string{}), http.StatusBadRequest, nil)

	expect(t, cl.do(http.MethodGet, "/projects/9999", nil), http.StatusNotFound, nil)
	expect(t, cl.do(http.MethodGet, "/projects/abc", nil), http.StatusNotFound, nil)
	expect(t, cl.do(http.MethodPut, "/projects/9999", map[string]string{"title": "x"}), http.StatusNotFound, nil)

	expect(t, cl.do(http.MethodDelete, path, nil), http.StatusNoContent, nil)
	expect(t, cl.do(http.MethodDelete, path, nil), http.StatusNotFound, nil)
	expect(t, cl.do(http.MethodGet, path, nil), http.StatusNotFound, nil)
}

func TestProjectRoutes_OtherUsersProjectIsInvisible(t *testing.T) {
	h := newTestRouter(t, "http_projects_isolation", "")
	alice := newClient(t, h)
	register(t, alice, "alice", "pw")
	login(t, alice, "alice", "pw")
	bob := newClient(t, h)
	register(t, bob, "bob", "pw")
	login(t, bob, "bob", "pw")

	var p projectBody
	expect(t, alice.do(http.MethodPost, "/projects", map[string]string{"title": "Private"}), http.StatusCreated, &p)
	path := fmt.Sprintf("/projects/%d", p.ID)

	var mine, theirs message
	expect(t, bob.do(http.MethodGet, path, nil), http.StatusNotFound, &theirs)
	expect(t, bob.do(http.MethodGet, "/projects/9999", nil), http.StatusNotFound, &mine)
	if mine.Message != theirs.Message {
		t.Fatalf("responses reveal existence: %q vs %q", mine.Message, theirs.Message)
	}
	expect(t, bob.do(http.MethodPut, path, map[string]string{"title": "Hijacked"}), http.StatusNotFound, nil)
	expect(t, bob.do(http.MethodDelete, path, nil), http.StatusNotFound, nil)

	var list struct {
		Total int `json:"total"`
	}
	expect(t, bob.do(http.MethodGet, "/projects", nil), http.StatusOK, &list)
	if list.Total != 0 {
		t.Fatalf("bob sees %d projects", list.Total)
	}
	// Same title is fine for a different owner.
	expect(t, bob.do(http.MethodPost, "/projects", map[string]string{"title": "Private"}), http.StatusCreated, nil)
}

func TestProjectRoutes_Pagination(t *testing.T) {
	cl := newClient(t, newTestRouter(t, "http_projects_paging", ""))
	register(t, cl, "alice", "pw")
	login(t, cl, "alice", "pw")
	for i := 0; i < 5; i++ {
		expect(t, cl.do(http.MethodPost, "/projects", map[string]string{"title": fmt.Sprintf("p%d", i)}), http.StatusCreated, nil)
	}

	var list struct {
		Total int           `json:"total"`
		Data  []projectBody `json:"data"`
	}
	expect(t, cl.do(http.MethodGet, "/projects?page=2&limit=2", nil), http.StatusOK, &list)
	if list.Total != 5 || len(list.Data) != 2 {
		t.Fatalf("page 2: total=%d len=%d", list.Total, len(list.Data))
	}
	expect(t, cl.do(http.MethodGet, "/projects?limit=2", nil), http.StatusOK, &list)
	if len(list.Data) != 5 {
		t.Fatalf("limit without page should not slice: len=%d", len(list.Data))
	}
	expect(t, cl.do(http.MethodGet, "/projects?page=0&limit=2", nil), http.StatusOK, &list)
	if len(list.Data) != 2 {
		t.Fatalf("page 0 should act as page 1: len=%d", len(list.Data))
	}
	expect(t, cl.do(http.MethodGet, "/projects?page=x&limit=2", nil), http.StatusBadRequest, nil)
	expect(t, cl.do(http.MethodGet, "/projects?page=1&limit=0", nil), http.StatusBadRequest, nil)
}
