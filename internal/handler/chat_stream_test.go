package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/queryai/queryai/internal/agent"
	"github.com/queryai/queryai/internal/handler"
	"github.com/queryai/queryai/internal/mockdata"
	"github.com/queryai/queryai/internal/models"
)

func sseEvents(events ...string) string {
	var sb strings.Builder
	for _, e := range events {
		var head struct {
			Type string `json:"type"`
		}
		json.Unmarshal([]byte(e), &head)
		fmt.Fprintf(&sb, "event: %s\ndata: %s\n\n", head.Type, e)
	}
	return sb.String()
}

func generateSQLTurn() string {
	input := `{\"query\":\"SELECT * FROM users\",\"explanation\":\"All users\",\"database\":\"PostgreSQL\"}`
	return sseEvents(
		`{"type":"message_start","message":{"id":"msg_h1","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":1}}}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Querying users."}}`,
		`{"type":"content_block_stop","index":0}`,
		`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_h1","name":"generateSQL","input":{}}}`,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"`+input+`"}}`,
		`{"type":"content_block_stop","index":1}`,
		`{"type":"message_delta","delta":{"stop_reason":"tool_use","stop_sequence":null},"usage":{"output_tokens":9}}`,
		`{"type":"message_stop"}`,
	)
}

func answerTurn(text string) string {
	return sseEvents(
		`{"type":"message_start","message":{"id":"msg_h2","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":1}}}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%q}}`, text),
		`{"type":"content_block_stop","index":0}`,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":6}}`,
		`{"type":"message_stop"}`,
	)
}

// parseStream splits an SSE response body into decoded chunks and reports
// whether the [DONE] terminator was present.
func parseStream(t *testing.T, body string) ([]models.StreamChunk, bool) {
	t.Helper()
	var chunks []models.StreamChunk
	sawDone := false
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			sawDone = true
			continue
		}
		var c models.StreamChunk
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			t.Fatalf("stream line is not valid JSON: %q: %v", payload, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, sawDone
}

func streamHandler(upstreamURL string, timeout time.Duration) *handler.ChatHandler {
	a := agent.NewSQLAgent("test-key", "claude-sonnet-4-5", upstreamURL+"/", 1024)
	return handler.NewChatHandler(a, mockdata.Instant{}, nil, nil, "demo@queryai.com", timeout)
}

func TestChatStreamToolRoundTrip(t *testing.T) {
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if call == 1 {
			io.WriteString(w, generateSQLTurn())
		} else {
			io.WriteString(w, answerTurn("Here are your 8 users."))
		}
	}))
	defer srv.Close()

	h := streamHandler(srv.URL, 10*time.Second)
	req := httptest.NewRequest(http.MethodPost, "/chat-stream",
		strings.NewReader(`{"messages":[{"role":"user","content":"show me all users"}]}`))
	rr := httptest.NewRecorder()
	h.ChatStream(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	chunks, sawDone := parseStream(t, rr.Body.String())
	if !sawDone {
		t.Error("stream missing [DONE] terminator")
	}

	var toolCall, toolResult *models.StreamChunk
	text := ""
	for i := range chunks {
		switch chunks[i].Type {
		case models.ChunkText:
			text += chunks[i].Text
		case models.ChunkToolCall:
			toolCall = &chunks[i]
		case models.ChunkToolResult:
			toolResult = &chunks[i]
		case models.ChunkError:
			t.Errorf("unexpected error chunk: %s", chunks[i].Error)
		}
	}

	if toolCall == nil || toolCall.ToolName != "generateSQL" {
		t.Fatalf("missing generateSQL tool-call chunk, chunks: %+v", chunks)
	}
	if toolResult == nil {
		t.Fatal("missing tool-result chunk")
	}
	var result map[string]any
	if err := json.Unmarshal(toolResult.Result, &result); err != nil {
		t.Fatalf("tool result not valid JSON: %v", err)
	}
	if result["rowCount"] != float64(8) {
		t.Errorf("rowCount = %v, want 8", result["rowCount"])
	}
	if !strings.Contains(text, "Here are your 8 users.") {
		t.Errorf("final answer missing from text chunks: %q", text)
	}
}

func TestChatStreamClientCancellation(t *testing.T) {
	delivered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, sseEvents(
			`{"type":"message_start","message":{"id":"msg_c2","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":1}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Thinking"}}`,
		))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		close(delivered)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-delivered
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	h := streamHandler(srv.URL, 10*time.Second)
	req := httptest.NewRequest(http.MethodPost, "/chat-stream",
		strings.NewReader(`{"messages":[{"role":"user","content":"slow question"}]}`)).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.ChatStream(rr, req)

	chunks, sawDone := parseStream(t, rr.Body.String())
	if sawDone {
		t.Error("cancelled stream must not emit the [DONE] terminator")
	}
	for _, c := range chunks {
		if c.Type == models.ChunkError {
			t.Errorf("cancelled stream must not emit an error chunk, got %q", c.Error)
		}
	}
}

func TestChatStreamUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"model unavailable"}}`)
	}))
	defer srv.Close()

	h := streamHandler(srv.URL, 10*time.Second)
	req := httptest.NewRequest(http.MethodPost, "/chat-stream",
		strings.NewReader(`{"messages":[{"role":"user","content":"hello"}]}`))
	rr := httptest.NewRecorder()
	h.ChatStream(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("stream errors are delivered in-band, want 200, got %d", rr.Code)
	}
	chunks, sawDone := parseStream(t, rr.Body.String())
	if !sawDone {
		t.Error("failed stream still terminates with [DONE]")
	}
	foundError := false
	for _, c := range chunks {
		if c.Type == models.ChunkError {
			foundError = true
			if c.Error == "" {
				t.Error("error chunk has empty message")
			}
		}
	}
	if !foundError {
		t.Errorf("expected an error chunk, chunks: %+v", chunks)
	}
}
