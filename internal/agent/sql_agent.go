package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/tools"
	"github.com/rs/zerolog/log"
)

// ToolCall represents a tool invocation request from the LLM
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ChunkWriter receives the incremental output of a streaming session.
// Implementations forward chunks to the client; a write error means the
// caller is gone and the session should stop.
type ChunkWriter interface {
	Text(text string) error
	ToolCall(id, name string, args json.RawMessage) error
	ToolResult(id, name string, result json.RawMessage) error
}

// Usage aggregates token counts across all model turns of one session.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Result is the outcome of a completed streaming session.
type Result struct {
	Text      string
	Usage     Usage
	ToolsUsed []string
}

// SQLAgent wraps the Anthropic SDK for a streaming multi-turn tool-calling loop
type SQLAgent struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewSQLAgent creates an agent backed by Anthropic Claude or a compatible provider
func NewSQLAgent(apiKey, model, baseURL string, maxTokens int) *SQLAgent {
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &SQLAgent{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Model returns the configured model identifier.
func (a *SQLAgent) Model() string {
	return a.model
}

// BuildHistory converts client-supplied chat messages into model message
// params. Empty messages are dropped.
func BuildHistory(msgs []models.ChatMessage) []anthropic.MessageParam {
	history := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		switch m.Role {
		case "assistant":
			history = append(history, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			history = append(history, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return history
}

// Stream runs the agent loop against the model, forwarding text deltas and
// tool activity to w as they happen. Tool execution failures are folded
// back into the conversation as error results and never abort the stream;
// a cancelled ctx or a dead ChunkWriter ends the session immediately.
func (a *SQLAgent) Stream(
	ctx context.Context,
	systemPrompt string,
	history []anthropic.MessageParam,
	agentTools []tools.Tool,
	w ChunkWriter,
) (*Result, error) {
	anthToolParams := make([]anthropic.ToolUnionUnionParam, len(agentTools))
	for i, t := range agentTools {
		var propsRaw interface{}
		if props, ok := t.InputSchema["properties"]; ok {
			propsRaw = props
		}

		schema := map[string]interface{}{
			"type":       "object",
			"properties": propsRaw,
		}
		if required, ok := t.InputSchema["required"]; ok {
			schema["required"] = required
		}
		anthToolParams[i] = anthropic.ToolParam{
			Name:        anthropic.String(t.Name),
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.F[interface{}](schema),
		}
	}

	messages := make([]anthropic.MessageParam, len(history))
	copy(messages, history)

	res := &Result{}
	maxIter := 10

	for iter := 0; iter < maxIter; iter++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			Tools:     anthropic.F(anthToolParams),
		}
		if systemPrompt != "" {
			params.System = anthropic.F([]anthropic.TextBlockParam{
				anthropic.NewTextBlock(systemPrompt),
			})
		}

		stream := a.client.Messages.NewStreaming(ctx, params)
		message := anthropic.Message{}

		for stream.Next() {
			event := stream.Current()
			message.Accumulate(event)

			switch delta := event.Delta.(type) {
			case anthropic.ContentBlockDeltaEventDelta:
				if delta.Text != "" {
					if err := w.Text(delta.Text); err != nil {
						return res, fmt.Errorf("client write failed: %w", err)
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return res, fmt.Errorf("model stream failed: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Usage.PromptTokens += message.Usage.InputTokens
		res.Usage.CompletionTokens += message.Usage.OutputTokens

		// Collect text and tool calls from the accumulated message
		var textContent string
		var pendingToolCalls []ToolCall

		for _, block := range message.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textContent += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]interface{}
				if err := json.Unmarshal(b.Input, &input); err != nil {
					log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]interface{}{}
				}
				pendingToolCalls = append(pendingToolCalls, ToolCall{
					ID:    b.ID,
					Name:  b.Name,
					Input: input,
				})
			}
		}
		res.Text += textContent

		log.Debug().
			Int("iter", iter).
			Str("stop_reason", string(message.StopReason)).
			Int("tool_calls", len(pendingToolCalls)).
			Msg("agent iteration")

		isDone := message.StopReason == "end_turn" ||
			message.StopReason == "stop_sequence" ||
			message.StopReason == "max_tokens" ||
			len(pendingToolCalls) == 0
		if isDone {
			return res, nil
		}

		messages = append(messages, message.ToParam())

		// Execute tools and fold results back into the conversation
		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pendingToolCalls {
			res.ToolsUsed = append(res.ToolsUsed, tc.Name)

			args, _ := json.Marshal(tc.Input)
			if err := w.ToolCall(tc.ID, tc.Name, args); err != nil {
				return res, fmt.Errorf("client write failed: %w", err)
			}

			result, execErr := executeTool(ctx, tc, agentTools)
			if execErr != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Warn().Err(execErr).Str("tool", tc.Name).Msg("tool execution error")
				result = fmt.Sprintf("error: %v", execErr)
			}

			if err := w.ToolResult(tc.ID, tc.Name, resultPayload(result, execErr)); err != nil {
				return res, fmt.Errorf("client write failed: %w", err)
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, result, execErr != nil))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return res, fmt.Errorf("agent loop exceeded max iterations (%d)", maxIter)
}

func executeTool(ctx context.Context, tc ToolCall, agentTools []tools.Tool) (string, error) {
	for _, t := range agentTools {
		if t.Name == tc.Name {
			return t.Execute(ctx, tc.Input)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", tc.Name)
}

// resultPayload renders a tool result as JSON for the stream. Successful
// tools already return JSON; failures are wrapped in an error object.
func resultPayload(result string, execErr error) json.RawMessage {
	if execErr == nil && json.Valid([]byte(result)) {
		return json.RawMessage(result)
	}
	b, _ := json.Marshal(map[string]string{"error": result})
	return b
}
