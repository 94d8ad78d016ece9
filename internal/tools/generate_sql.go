package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/queryai/queryai/internal/mockdata"
	"github.com/queryai/queryai/internal/security"
	"github.com/queryai/queryai/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// GenerateSQLArgs are the validated inputs of the generateSQL tool.
type GenerateSQLArgs struct {
	Query       string `json:"query"`
	Explanation string `json:"explanation"`
	Database    string `json:"database"`
}

// QueryResult is the generateSQL tool output.
type QueryResult struct {
	Query         string         `json:"query"`
	Explanation   string         `json:"explanation"`
	Database      string         `json:"database"`
	Results       []mockdata.Row `json:"results"`
	RowCount      int            `json:"rowCount"`
	ExecutionTime string         `json:"executionTime"`
}

// GenerateSQLTool executes a model-written SQL query against the mock
// executor. When a telemetry store is configured the execution is recorded
// asynchronously; recording failures never reach the stream.
func GenerateSQLTool(
	exec mockdata.Executor,
	st *telemetry.Store,
	audit *security.AuditLogger,
	userID, naturalQuery string,
) Tool {
	return Tool{
		Name:        "generateSQL",
		Description: "Generate and execute a SQL query based on the user's natural language request",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The SQL query to execute",
				},
				"explanation": map[string]interface{}{
					"type":        "string",
					"description": "Clear explanation of what the query does and why",
				},
				"database": map[string]interface{}{
					"type":        "string",
					"description": "Target database type (e.g., PostgreSQL, MySQL)",
				},
			},
			"required": []string{"query", "explanation", "database"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			var args GenerateSQLArgs
			if err := decodeArgs(input, &args); err != nil {
				return "", err
			}
			if args.Query == "" {
				return "", fmt.Errorf("query is required")
			}

			start := time.Now()
			rows, err := exec.Execute(ctx, args.Query)
			if err != nil {
				return "", fmt.Errorf("execute query: %w", err)
			}
			execMs := time.Since(start).Milliseconds()

			if st != nil {
				// Fire-and-forget; the parent request row does not exist
				// yet, so the metric keeps the provisional id.
				go func() {
					rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					err := st.RecordQueryExecution(rctx, telemetry.QueryExecutionMetric{
						AIRequestID:     telemetry.ProvisionalRequestID,
						UserID:          userID,
						NaturalQuery:    naturalQuery,
						GeneratedSQL:    args.Query,
						DatabaseName:    args.Database,
						RowsReturned:    len(rows),
						ExecutionTimeMs: execMs,
						Success:         true,
					})
					if err != nil {
						log.Warn().Err(err).Msg("failed to record query execution")
					}
				}()
			}

			audit.LogToolInvocation("generateSQL", userID, args.Query, execMs, len(rows), true)

			result := QueryResult{
				Query:         args.Query,
				Explanation:   args.Explanation,
				Database:      args.Database,
				Results:       rows,
				RowCount:      len(rows),
				ExecutionTime: fmt.Sprintf("%dms", execMs),
			}
			b, err := json.Marshal(result)
			if err != nil {
				return "", fmt.Errorf("marshal result: %w", err)
			}
			return string(b), nil
		},
	}
}

// decodeArgs converts the model-supplied argument map into a typed struct
// so tool handlers never work with duck-typed payloads.
func decodeArgs(input map[string]interface{}, out any) error {
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode tool input: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode tool input: %w", err)
	}
	return nil
}
