package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"invoizo/internal/adapters/web"
	"invoizo/internal/ai"
	"invoizo/internal/app"
	"invoizo/internal/export"
	"invoizo/internal/store"
)

func newServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	return newServerOn(t, store.NewMemoryStore())
}

func newServerOn(t *testing.T, s store.Store) (*httptest.Server, *http.Client) {
	t.Helper()
	svc := app.NewAppService(s, ai.NewCFO("", ""), &export.Archiver{Store: s})
	srv := httptest.NewServer(web.NewHandler(svc, web.Options{JWTSecret: "test-secret"}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return srv, &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func signup(t *testing.T, srv *httptest.Server, c *http.Client) {
	t.Helper()
	status, body := do(t, c, http.MethodPost, srv.URL+"/api/auth/signup", map[string]any{
		"business": map[string]string{"name": "Sharma Traders"},
		"admin": map[string]string{
			"username":        "owner",
			"name":            "Owner",
			"password":        "s3cret-pass",
			"confirmPassword": "s3cret-pass",
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("signup: want 201, got %d: %s", status, body)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return e
}

func TestHealth(t *testing.T) {
	srv, c := newServer(t)
	status, body := do(t, c, http.MethodGet, srv.URL+"/api/health", nil)
	if status != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("health: got %d %s", status, body)
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	srv, c := newServer(t)
	status, body := do(t, c, http.MethodGet, srv.URL+"/api/customers", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", status)
	}
	if e := decodeError(t, body); e.Code != "UNAUTHORIZED" {
		t.Errorf("code: want UNAUTHORIZED, got %q", e.Code)
	}
}

func TestSignupLoginAndMe(t *testing.T) {
	srv, c := newServer(t)
	signup(t, srv, c)

	status, body := do(t, c, http.MethodGet, srv.URL+"/api/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("me: want 200, got %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"owner"`) {
		t.Errorf("me: want username in body, got %s", body)
	}

	// A second signup is refused.
	status, _ = do(t, c, http.MethodPost, srv.URL+"/api/auth/signup", map[string]any{
		"business": map[string]string{"name": "Other"},
		"admin":    map[string]string{"username": "x", "password": "another-pass", "confirmPassword": "another-pass"},
	})
	if status != http.StatusConflict {
		t.Errorf("second signup: want 409, got %d", status)
	}

	jar, _ := cookiejar.New(nil)
	fresh := &http.Client{Jar: jar}
	status, _ = do(t, fresh, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{"username": "owner", "password": "wrong-pass"})
	if status != http.StatusUnauthorized {
		t.Errorf("bad login: want 401, got %d", status)
	}
	status, _ = do(t, fresh, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{"username": "owner", "password": "s3cret-pass"})
	if status != http.StatusOK {
		t.Fatalf("login: want 200, got %d", status)
	}
	status, _ = do(t, fresh, http.MethodGet, srv.URL+"/api/customers", nil)
	if status != http.StatusOK {
		t.Errorf("customers after login: want 200, got %d", status)
	}
}

func TestErrorMapping(t *testing.T) {
	srv, c := newServer(t)
	signup(t, srv, c)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown customer", http.MethodGet, "/api/customers/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"blank customer name", http.MethodPost, "/api/customers", map[string]string{"name": " "}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"bad email", http.MethodPost, "/api/customers", map[string]string{"name": "A", "email": "nope"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad year", http.MethodGet, "/api/dashboard?year=abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad day date", http.MethodPut, "/api/book-keeping/31-07-2024", map[string]any{"entries": []any{}}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"cfo without key", http.MethodPost, "/api/cfo/query", map[string]string{"query": "How are we doing?"}, http.StatusServiceUnavailable, "AI_NOT_CONFIGURED"},
		{"backup without bucket", http.MethodPost, "/api/backup", nil, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, c, tc.method, srv.URL+tc.path, tc.body)
			if status != tc.status {
				t.Fatalf("want %d, got %d: %s", tc.status, status, body)
			}
			if e := decodeError(t, body); e.Code != tc.code {
				t.Errorf("code: want %s, got %q", tc.code, e.Code)
			}
		})
	}

	_, body := do(t, c, http.MethodPost, srv.URL+"/api/customers", map[string]string{"name": "A", "email": "nope"})
	if e := decodeError(t, body); e.Fields["email"] == "" {
		t.Errorf("want an email field error, got %+v", e.Fields)
	}
}

func TestUnreadableStoreValueIsConflict(t *testing.T) {
	s := store.NewMemoryStore()
	srv, c := newServerOn(t, s)
	signup(t, srv, c)
	if err := s.Put(context.Background(), store.KeySuppliers, []byte(`{broken`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries := []map[string]any{{"acCode": "CASH-001", "acHead": "Cash Account", "credit": 40}}
	status, body := do(t, c, http.MethodPut, srv.URL+"/api/book-keeping/2024-07-01", map[string]any{"entries": entries})
	if status != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", status, body)
	}
	if e := decodeError(t, body); e.Code != "STORE_MALFORMED" {
		t.Errorf("code: want STORE_MALFORMED, got %q", e.Code)
	}
}

func TestCustomerCRUD(t *testing.T) {
	srv, c := newServer(t)
	signup(t, srv, c)

	status, body := do(t, c, http.MethodPost, srv.URL+"/api/customers", map[string]string{"name": "Ramesh Stores", "phone": "98765"})
	if status != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", status, body)
	}
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		t.Fatalf("create: bad body %s (%v)", body, err)
	}

	status, body = do(t, c, http.MethodGet, srv.URL+"/api/customers?search=ramesh", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "Ramesh Stores") {
		t.Fatalf("search: got %d %s", status, body)
	}

	status, _ = do(t, c, http.MethodDelete, srv.URL+"/api/customers/"+created.ID, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", status)
	}
	status, _ = do(t, c, http.MethodGet, srv.URL+"/api/customers/"+created.ID, nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete: want 404, got %d", status)
	}
}

func TestInventoryExport(t *testing.T) {
	srv, c := newServer(t)
	signup(t, srv, c)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/inventory/export?format=csv", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: want 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, ".csv") {
		t.Errorf("content disposition: got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, c := newServer(t)
	do(t, c, http.MethodGet, srv.URL+"/api/health", nil)
	status, body := do(t, c, http.MethodGet, srv.URL+"/metrics", nil)
	if status != http.StatusOK {
		t.Fatalf("metrics: want 200, got %d", status)
	}
	if !strings.Contains(string(body), "http_requests_total") {
		t.Errorf("metrics: request counter missing")
	}
}
