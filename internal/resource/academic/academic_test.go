package academic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/uleam-conecta/conecta-go/internal/domain/academic"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
)

func newTestModule(t *testing.T, handler http.Handler) (*Module, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := rest.New(rest.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	return New(api, query.New(nil), nil), srv
}

func TestFaculties_BareArrayResponse(t *testing.T) {
	m, _ := newTestModule(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"f1","name":"Ciencias de la Vida"},{"id":"f2","name":"Ingeniería"}]`))
	}))

	faculties, err := m.Faculties(context.Background())
	if err != nil {
		t.Fatalf("faculties: %v", err)
	}
	if len(faculties) != 2 || faculties[1].Name != "Ingeniería" {
		t.Fatalf("faculties = %+v", faculties)
	}
}

func TestCareers_NoFacultyMeansNoRequest(t *testing.T) {
	var hits int32
	m, _ := newTestModule(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`[]`))
	}))

	careers, err := m.Careers(context.Background(), "")
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	if careers == nil || len(careers) != 0 {
		t.Fatalf("careers = %#v, want empty non-nil list", careers)
	}
	if hits != 0 {
		t.Fatalf("server saw %d requests with no faculty selected", hits)
	}
}

func TestCareers_ScopedPerFaculty(t *testing.T) {
	var hits int32
	m, _ := newTestModule(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Query().Get("facultyId") {
		case "f1":
			w.Write([]byte(`[{"id":"c1","name":"Biología","facultyId":"f1"}]`))
		case "f2":
			w.Write([]byte(`[{"id":"c2","name":"Sistemas","facultyId":"f2"}]`))
		default:
			t.Errorf("careers queried without facultyId")
			w.Write([]byte(`[]`))
		}
	}))

	first, err := m.Careers(context.Background(), "f1")
	if err != nil {
		t.Fatalf("careers f1: %v", err)
	}
	second, err := m.Careers(context.Background(), "f2")
	if err != nil {
		t.Fatalf("careers f2: %v", err)
	}
	if first[0].ID != "c1" || second[0].ID != "c2" {
		t.Fatalf("career lists crossed faculties: %+v / %+v", first, second)
	}

	// Returning to a previously selected faculty is a cache hit.
	if _, err := m.Careers(context.Background(), "f1"); err != nil {
		t.Fatalf("careers f1 again: %v", err)
	}
	if hits != 2 {
		t.Fatalf("server hits = %d, want 2", hits)
	}
}

func TestCareersFor_FollowsSelection(t *testing.T) {
	m, _ := newTestModule(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"c1","name":"Biología","facultyId":"f1"}]`))
	}))

	var sel academic.Selection
	careers, err := m.CareersFor(context.Background(), &sel)
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	if len(careers) != 0 {
		t.Fatalf("careers without selection = %+v", careers)
	}

	sel.SetFaculty("f1")
	careers, err = m.CareersFor(context.Background(), &sel)
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	if len(careers) != 1 {
		t.Fatalf("careers = %+v", careers)
	}
}
