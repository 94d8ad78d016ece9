package models

import "encoding/json"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RecordResponse is returned by POST /records/{table}
type RecordResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message,omitempty"`
}

// RecordListResponse is returned by GET /records/{table}
type RecordListResponse struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Count   int              `json:"count"`
}

// UsageResponse is returned by GET /usage
type UsageResponse struct {
	Stats          UsageStats      `json:"stats"`
	RecentRequests []RecentRequest `json:"recentRequests"`
}

// UsageStats mirrors the user_usage_stats aggregate row. Zero values are
// served when the user has no recorded usage yet.
type UsageStats struct {
	TotalRequests int64   `json:"total_requests"`
	TotalTokens   int64   `json:"total_tokens"`
	TotalCost     float64 `json:"total_cost"`
	LastRequestAt *string `json:"last_request_at"`
}

// RecentRequest is one row of the recent-requests listing.
type RecentRequest struct {
	ID          string  `json:"id"`
	Model       string  `json:"model"`
	TotalTokens int64   `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
	DurationMs  int64   `json:"duration_ms"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// Stream chunk types for the /chat-stream SSE protocol.
const (
	ChunkText       = "text"
	ChunkToolCall   = "tool-call"
	ChunkToolResult = "tool-result"
	ChunkError      = "error"
)

// StreamChunk is one line of the /chat-stream response. Exactly the fields
// for the given Type are populated; the stream is terminated by a literal
// [DONE] data line rather than a chunk.
type StreamChunk struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}
