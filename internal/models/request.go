package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatMessage is one entry in the conversation history supplied by the
// client. Content is either a plain string or an array of typed parts;
// both forms decode into the Parts slice.
type ChatMessage struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"content"`
}

// MessagePart is a single content part of a ChatMessage.
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// UnmarshalJSON accepts both {"content":"hi"} and
// {"content":[{"type":"text","text":"hi"}]}.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Parts = nil

	if len(raw.Content) == 0 {
		return nil
	}
	if raw.Content[0] == '"' {
		var text string
		if err := json.Unmarshal(raw.Content, &text); err != nil {
			return err
		}
		m.Parts = []MessagePart{{Type: "text", Text: text}}
		return nil
	}
	return json.Unmarshal(raw.Content, &m.Parts)
}

// Text returns the concatenated text content of the message.
func (m *ChatMessage) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// ChatRequest for POST /chat-stream
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// Validate checks roles and rejects empty histories.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, m := range r.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			return fmt.Errorf("messages[%d]: invalid role %q", i, m.Role)
		}
	}
	return nil
}

// LastUserText returns the text of the most recent user message, or "".
func (r *ChatRequest) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Text()
		}
	}
	return ""
}
