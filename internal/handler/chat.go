package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/queryai/queryai/internal/agent"
	"github.com/queryai/queryai/internal/mockdata"
	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/security"
	"github.com/queryai/queryai/internal/telemetry"
	"github.com/queryai/queryai/internal/tokenizer"
	"github.com/queryai/queryai/internal/tools"
	"github.com/rs/zerolog/log"
)

// callerHeader identifies the requesting user; absent callers share the
// configured demo identity.
const callerHeader = "x-caller-id"

// ChatHandler handles POST /chat-stream
type ChatHandler struct {
	agent      *agent.SQLAgent
	exec       mockdata.Executor
	store      *telemetry.Store
	audit      *security.AuditLogger
	estimator  *tokenizer.Estimator
	demoUserID string
	timeout    time.Duration
}

func NewChatHandler(
	sqlAgent *agent.SQLAgent,
	exec mockdata.Executor,
	store *telemetry.Store,
	audit *security.AuditLogger,
	demoUserID string,
	timeout time.Duration,
) *ChatHandler {
	return &ChatHandler{
		agent:      sqlAgent,
		exec:       exec,
		store:      store,
		audit:      audit,
		estimator:  tokenizer.New(),
		demoUserID: demoUserID,
		timeout:    timeout,
	}
}

// ChatStream handles POST /chat-stream
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "AI agent is not configured")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		models.WriteError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	userID := r.Header.Get(callerHeader)
	if userID == "" {
		userID = h.demoUserID
	}
	naturalQuery := req.LastUserText()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sse := &sseWriter{w: w, f: flusher}

	agentTools := []tools.Tool{
		tools.GenerateSQLTool(h.exec, h.store, h.audit, userID, naturalQuery),
		tools.ShowFormTool(),
	}

	start := time.Now()
	res, err := h.agent.Stream(ctx, agent.SystemPrompt, agent.BuildHistory(req.Messages), agentTools, sse)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		// A gone client gets no further chunks and no accounting row.
		if r.Context().Err() != nil {
			log.Info().Str("user_id", userID).Msg("chat stream cancelled by client")
			return
		}

		errMsg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			errMsg = fmt.Sprintf("request timed out after %s", h.timeout)
		}
		log.Error().Err(err).Str("user_id", userID).Msg("chat stream failed")

		sse.chunk(models.StreamChunk{Type: models.ChunkError, Error: errMsg})
		sse.done()
		h.record(req, res, userID, durationMs, "error", errMsg)
		return
	}

	sse.done()
	h.record(req, res, userID, durationMs, "success", "")
}

// record persists the request's accounting row after the stream has been
// delivered. Failures are logged and swallowed so billing never breaks
// the response the client already received.
func (h *ChatHandler) record(
	req models.ChatRequest,
	res *agent.Result,
	userID string,
	durationMs int64,
	status, errMsg string,
) {
	if h.store == nil {
		return
	}

	promptTokens := res.Usage.PromptTokens
	completionTokens := res.Usage.CompletionTokens
	if promptTokens == 0 && completionTokens == 0 {
		// The upstream never reported usage (for example an early
		// failure); estimate locally so the row is never empty.
		texts := make([]string, 0, len(req.Messages))
		for _, m := range req.Messages {
			texts = append(texts, m.Text())
		}
		promptTokens = int64(h.estimator.CountConversation(texts))
		completionTokens = int64(h.estimator.CountText(res.Text))
	}

	metric := telemetry.AIRequestMetric{
		UserID:           userID,
		Model:            h.agent.Model(),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		DurationMs:       durationMs,
		Status:           status,
		ErrorMessage:     errMsg,
		RequestData: map[string]any{
			"message": telemetry.Snapshot(req.LastUserText()),
		},
		ResponseData: map[string]any{
			"content":   telemetry.Snapshot(res.Text),
			"toolsUsed": res.ToolsUsed,
		},
	}

	// Background context: the client connection may already be gone and
	// must not cancel the accounting write.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.store.RecordRequest(ctx, metric); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to record ai request")
	}
}

// sseWriter frames chunks as server-sent events and flushes each one so
// deltas reach the client immediately.
type sseWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (s *sseWriter) chunk(c models.StreamChunk) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

func (s *sseWriter) done() {
	fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.f.Flush()
}

func (s *sseWriter) Text(text string) error {
	return s.chunk(models.StreamChunk{Type: models.ChunkText, Text: text})
}

func (s *sseWriter) ToolCall(id, name string, args json.RawMessage) error {
	return s.chunk(models.StreamChunk{
		Type:       models.ChunkToolCall,
		ToolCallID: id,
		ToolName:   name,
		Args:       args,
	})
}

func (s *sseWriter) ToolResult(id, name string, result json.RawMessage) error {
	return s.chunk(models.StreamChunk{
		Type:       models.ChunkToolResult,
		ToolCallID: id,
		ToolName:   name,
		Result:     result,
	})
}
