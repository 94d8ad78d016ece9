// Package security carries the audit trail for model-driven query
// execution. Identifying values are hashed before logging.
package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs tool invocations with hashed identifiers.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogToolInvocation records a tool execution event. SQL text and user
// identity are hashed so the audit trail never leaks query contents.
func (a *AuditLogger) LogToolInvocation(
	toolName, userID, sql string,
	executionTimeMs int64,
	rowCount int,
	success bool,
) {
	if a == nil || !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "tool_audit").
		Str("tool", toolName).
		Str("user_hash", hashStr(userID)[:16]).
		Int64("execution_time_ms", executionTimeMs).
		Int("row_count", rowCount).
		Bool("success", success)

	if sql != "" {
		evt = evt.Str("sql_hash", hashStr(sql)[:16])
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}
