// Package telemetry persists per-request usage accounting: one immutable
// row per model invocation, one per tool-triggered query, and a running
// per-user aggregate.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/queryai/queryai/internal/models"
)

// ErrNotConfigured is returned by read operations when no database is
// configured. Write operations on a nil store are skipped by callers.
var ErrNotConfigured = errors.New("telemetry: database not configured")

// ProvisionalRequestID marks query execution rows written before their
// parent request row exists. Rows carrying it are not linkable to a
// parent; uncorrelated by design, preserved from the demo's behavior.
const ProvisionalRequestID = "temp-id"

// snapshotLimit bounds the request/response text persisted per request.
const snapshotLimit = 100

// AIRequestMetric describes one model invocation.
type AIRequestMetric struct {
	ConversationID   string
	UserID           string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	DurationMs       int64
	Status           string
	ErrorMessage     string
	RequestData      map[string]any
	ResponseData     map[string]any
}

// QueryExecutionMetric describes one tool-triggered mock query.
type QueryExecutionMetric struct {
	AIRequestID     string
	UserID          string
	NaturalQuery    string
	GeneratedSQL    string
	DatabaseName    string
	RowsReturned    int
	ExecutionTimeMs int64
	Success         bool
	ErrorMessage    string
}

// Store is the Postgres-backed accounting store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection, and applies the
// schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("telemetry: parse database url: %w", err)
	}
	cfg.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("telemetry: ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, ddl := range schemas {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("telemetry: migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordRequest appends one ai_requests row and folds its totals into the
// per-user aggregate. Both writes happen in one transaction so a
// concurrent reader never observes the row without its aggregate update.
// Returns the new row's id.
func (s *Store) RecordRequest(ctx context.Context, m AIRequestMetric) (string, error) {
	totalTokens := m.PromptTokens + m.CompletionTokens
	promptCost, completionCost := Cost(m.Model, m.PromptTokens, m.CompletionTokens)
	totalCost := promptCost + completionCost

	status := m.Status
	if status == "" {
		status = "success"
	}

	id := uuid.NewString()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("telemetry: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ai_requests
			(id, conversation_id, user_id, model, prompt_tokens, completion_tokens,
			 total_tokens, prompt_cost, completion_cost, total_cost, duration_ms,
			 status, error_message, request_data, response_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		id, nullable(m.ConversationID), m.UserID, m.Model,
		m.PromptTokens, m.CompletionTokens, totalTokens,
		promptCost, completionCost, totalCost,
		m.DurationMs, status, nullable(m.ErrorMessage),
		jsonOrNil(m.RequestData), jsonOrNil(m.ResponseData),
	)
	if err != nil {
		return "", fmt.Errorf("telemetry: insert ai_request: %w", err)
	}

	if err := upsertUsage(ctx, tx, m.UserID, totalTokens, totalCost); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("telemetry: commit: %w", err)
	}
	return id, nil
}

// RecordQueryExecution appends one query_executions row. No aggregate
// side effects.
func (s *Store) RecordQueryExecution(ctx context.Context, m QueryExecutionMetric) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO query_executions
			(id, ai_request_id, user_id, natural_query, generated_sql,
			 database_name, rows_returned, execution_time_ms, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.NewString(), m.AIRequestID, m.UserID, m.NaturalQuery,
		nullable(m.GeneratedSQL), nullable(m.DatabaseName),
		m.RowsReturned, m.ExecutionTimeMs, m.Success, nullable(m.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("telemetry: insert query_execution: %w", err)
	}
	return nil
}

// UpsertUserUsage atomically folds one request's deltas into the user's
// aggregate row, creating it on first use. Safe under concurrent writers
// for the same user: the database upsert serializes the additions, so
// totals always reflect the sum of all deltas.
func (s *Store) UpsertUserUsage(ctx context.Context, userID string, tokensDelta int64, costDelta float64) error {
	return upsertUsage(ctx, s.pool, userID, tokensDelta, costDelta)
}

// execer is satisfied by both pgxpool.Pool and pgx.Tx so the upsert can
// run standalone or inside the RecordRequest transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertUsage(ctx context.Context, db execer, userID string, tokensDelta int64, costDelta float64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_usage_stats
			(user_id, total_requests, total_tokens, total_cost, last_request_at, updated_at)
		VALUES ($1, 1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_requests = user_usage_stats.total_requests + 1,
			total_tokens = user_usage_stats.total_tokens + EXCLUDED.total_tokens,
			total_cost = user_usage_stats.total_cost + EXCLUDED.total_cost,
			last_request_at = NOW(),
			updated_at = NOW()`,
		userID, tokensDelta, costDelta,
	)
	if err != nil {
		return fmt.Errorf("telemetry: upsert usage: %w", err)
	}
	return nil
}

// GetUserUsageStats returns the aggregate for userID, or nil if the user
// has no recorded usage.
func (s *Store) GetUserUsageStats(ctx context.Context, userID string) (*models.UsageStats, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	row := s.pool.QueryRow(ctx, `
		SELECT total_requests, total_tokens, total_cost,
		       to_char(last_request_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
		FROM user_usage_stats
		WHERE user_id = $1`,
		userID,
	)

	var stats models.UsageStats
	err := row.Scan(&stats.TotalRequests, &stats.TotalTokens, &stats.TotalCost, &stats.LastRequestAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry: get usage stats: %w", err)
	}
	return &stats, nil
}

// GetRecentRequests returns up to limit ai_requests rows for userID, most
// recent first.
func (s *Store) GetRecentRequests(ctx context.Context, userID string, limit int) ([]models.RecentRequest, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, model, total_tokens, total_cost,
		       COALESCE(duration_ms, 0), status,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
		FROM ai_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: get recent requests: %w", err)
	}
	defer rows.Close()

	requests := []models.RecentRequest{}
	for rows.Next() {
		var r models.RecentRequest
		if err := rows.Scan(&r.ID, &r.Model, &r.TotalTokens, &r.TotalCost, &r.DurationMs, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("telemetry: scan recent request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("telemetry: iterate recent requests: %w", err)
	}
	return requests, nil
}

// Snapshot truncates free text to the persisted snapshot limit.
func Snapshot(text string) string {
	if len(text) > snapshotLimit {
		return text[:snapshotLimit]
	}
	return text
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonOrNil(m map[string]any) []byte {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}
