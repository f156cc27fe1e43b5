package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func newTestClient(t *testing.T, srvURL string, opts ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL: srvURL,
		Retry:   RetryConfig{MaxAttempts: 1, RetryableStatusCodes: []int{500, 502, 503}},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_TokenReadPerRequest(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	token := "first"
	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.Tokens = tokenFunc(func() string { return token })
	})

	if _, err := c.Get(context.Background(), "/users/me", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	token = "second"
	if _, err := c.Get(context.Background(), "/users/me", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	token = ""
	if _, err := c.Get(context.Background(), "/faculties", nil); err != nil {
		t.Fatalf("get: %v", err)
	}

	want := []string{"Bearer first", "Bearer second", ""}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("request %d Authorization = %q, want %q", i, got[i], w)
		}
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.Get(context.Background(), "/services", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestClient_QueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.RawQuery; got != "categoryId=3&page=2" {
			t.Errorf("query = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	q := url.Values{}
	q.Set("page", "2")
	q.Set("categoryId", "3")
	if _, err := c.Get(context.Background(), "/services/search/advanced", q); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestClient_APIErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Servicio no encontrado"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Get(context.Background(), "/services/nope", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Servicio no encontrado" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound = false")
	}
}

func TestClient_GetRetriesServerFaults(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.Retry = RetryConfig{
			MaxAttempts:          3,
			InitialBackoff:       time.Millisecond,
			MaxBackoff:           5 * time.Millisecond,
			RetryableStatusCodes: []int{500},
		}
	})

	resp, err := c.Get(context.Background(), "/services", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if hits != 3 {
		t.Fatalf("server hits = %d, want 3", hits)
	}
}

func TestClient_MutationsAreNeverRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.Retry = RetryConfig{
			MaxAttempts:          3,
			InitialBackoff:       time.Millisecond,
			RetryableStatusCodes: []int{500},
		}
	})

	_, err := c.Do(context.Background(), http.MethodPost, "/orders", nil, map[string]string{"serviceId": "s1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1", hits)
	}
}

func TestClient_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{"order":{"id":"o1"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Do(context.Background(), http.MethodPost, "/orders", nil, map[string]string{"serviceId": "s1"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var out struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	if err := resp.JSON(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Order.ID != "o1" {
		t.Fatalf("order id = %q", out.Order.ID)
	}
}

func TestClient_DoMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("title"); got != "Tutoría de Cálculo I" {
			t.Errorf("title = %q", got)
		}
		f, hdr, err := r.FormFile("images")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		f.Close()
		if hdr.Filename != "cover.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	fields := url.Values{}
	fields.Set("title", "Tutoría de Cálculo I")
	files := []File{{Field: "images", Name: "cover.png", ContentType: "image/png", Content: []byte("png-bytes")}}
	if _, err := c.DoMultipart(context.Background(), http.MethodPost, "/services", fields, files); err != nil {
		t.Fatalf("multipart: %v", err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/services", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
