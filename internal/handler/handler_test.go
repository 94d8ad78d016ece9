package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/queryai/queryai/internal/handler"
	"github.com/queryai/queryai/internal/mockdata"
	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/schema"
	"github.com/queryai/queryai/internal/store"
)

func recordsRouter(repo store.RecordRepository) http.Handler {
	h := handler.NewRecordsHandler(repo)
	r := chi.NewRouter()
	r.Post("/records/{table}", h.Create)
	r.Get("/records/{table}", h.List)
	return r
}

// ─── Records ──────────────────────────────────────────────────────────────────

func TestCreateRecordUnknownTable(t *testing.T) {
	r := recordsRouter(store.NewMemStore(schema.Names()))
	req := httptest.NewRequest(http.MethodPost, "/records/invoices", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "invalid table name" {
		t.Errorf("message = %q, want %q", resp.Message, "invalid table name")
	}
}

func TestCreateRecordValidationFailure(t *testing.T) {
	r := recordsRouter(store.NewMemStore(schema.Names()))
	req := httptest.NewRequest(http.MethodPost, "/records/users", strings.NewReader(`{"email":"a@b.com"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Message != "Full Name is required" {
		t.Errorf("message = %q, want %q", resp.Message, "Full Name is required")
	}
}

func TestCreateRecordSuccess(t *testing.T) {
	r := recordsRouter(store.NewMemStore(schema.Names()))
	body := `{"name":"Grace Hopper","email":"grace@example.com","status":"active","city":"Boston"}`
	req := httptest.NewRequest(http.MethodPost, "/records/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp models.RecordResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.Message != "User created successfully" {
		t.Errorf("message = %q, want %q", resp.Message, "User created successfully")
	}
	if resp.Data["id"] == nil {
		t.Error("created record should carry an id")
	}
	if resp.Data["created_at"] == nil {
		t.Error("created record should carry created_at")
	}
	if resp.Data["name"] != "Grace Hopper" {
		t.Errorf("name = %v, want Grace Hopper", resp.Data["name"])
	}
}

func TestListRecords(t *testing.T) {
	repo := store.NewMemStore(schema.Names())
	r := recordsRouter(repo)

	for _, name := range []string{"Ada", "Alan"} {
		body, _ := json.Marshal(map[string]any{
			"name": name, "email": name + "@example.com", "status": "active",
		})
		req := httptest.NewRequest(http.MethodPost, "/records/users", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("seed create failed: %d %s", rr.Code, rr.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/records/users", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.RecordListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Errorf("count = %d, len(data) = %d, want 2/2", resp.Count, len(resp.Data))
	}
}

func TestListRecordsEmpty(t *testing.T) {
	r := recordsRouter(store.NewMemStore(schema.Names()))
	req := httptest.NewRequest(http.MethodGet, "/records/orders", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.RecordListResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
	if resp.Data == nil {
		t.Error("data should be an empty array, not null")
	}
}

// ─── Usage ────────────────────────────────────────────────────────────────────

func TestUsageNotConfigured(t *testing.T) {
	h := handler.NewUsageHandler(nil, "demo@queryai.com")
	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	rr := httptest.NewRecorder()
	h.Usage(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "Database not configured" {
		t.Errorf("error = %q, want %q", resp["error"], "Database not configured")
	}
	if resp["message"] != "Set DATABASE_URL to enable usage tracking" {
		t.Errorf("message = %q", resp["message"])
	}
}

// ─── Health ───────────────────────────────────────────────────────────────────

func TestHealthNoDatabase(t *testing.T) {
	h := handler.NewHealthHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Checks["database"] != "disabled" {
		t.Errorf("database check = %q, want disabled", resp.Checks["database"])
	}
}

// ─── Chat request validation ──────────────────────────────────────────────────

func chatHandler() *handler.ChatHandler {
	return handler.NewChatHandler(nil, mockdata.Instant{}, nil, nil, "demo@queryai.com", 0)
}

func TestChatStreamAgentNotConfigured(t *testing.T) {
	h := chatHandler()
	req := httptest.NewRequest(http.MethodPost, "/chat-stream", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	rr := httptest.NewRecorder()
	h.ChatStream(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without an agent, got %d", rr.Code)
	}
}

func TestChatRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty messages", `{"messages":[]}`},
		{"invalid role", `{"messages":[{"role":"system","content":"x"}]}`},
		{"malformed body", `{"messages":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req models.ChatRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if err == nil {
				err = req.Validate()
			}
			if err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestChatMessageContentForms(t *testing.T) {
	var req models.ChatRequest
	body := `{"messages":[
		{"role":"user","content":"plain string"},
		{"role":"assistant","content":[{"type":"text","text":"parts "},{"type":"text","text":"form"}]}
	]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := req.Messages[0].Text(); got != "plain string" {
		t.Errorf("string content = %q", got)
	}
	if got := req.Messages[1].Text(); got != "parts form" {
		t.Errorf("parts content = %q", got)
	}
	if got := req.LastUserText(); got != "plain string" {
		t.Errorf("last user text = %q", got)
	}
}
