package telemetry

// DDL for all telemetry tables, applied idempotently at startup.

const schemaAIRequests = `
CREATE TABLE IF NOT EXISTS ai_requests (
    id UUID PRIMARY KEY,
    conversation_id TEXT,
    user_id TEXT NOT NULL,
    model TEXT NOT NULL,
    prompt_tokens BIGINT NOT NULL DEFAULT 0,
    completion_tokens BIGINT NOT NULL DEFAULT 0,
    total_tokens BIGINT NOT NULL DEFAULT 0,
    prompt_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    completion_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    duration_ms BIGINT,
    status TEXT NOT NULL DEFAULT 'success',
    error_message TEXT,
    request_data JSONB,
    response_data JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ai_requests_user_created
    ON ai_requests(user_id, created_at DESC);
`

const schemaQueryExecutions = `
CREATE TABLE IF NOT EXISTS query_executions (
    id UUID PRIMARY KEY,
    ai_request_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    natural_query TEXT NOT NULL,
    generated_sql TEXT,
    database_name TEXT,
    rows_returned INTEGER,
    execution_time_ms BIGINT,
    success BOOLEAN NOT NULL,
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_query_executions_user
    ON query_executions(user_id, created_at DESC);
`

const schemaUserUsageStats = `
CREATE TABLE IF NOT EXISTS user_usage_stats (
    user_id TEXT PRIMARY KEY,
    total_requests BIGINT NOT NULL DEFAULT 0,
    total_tokens BIGINT NOT NULL DEFAULT 0,
    total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_request_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var schemas = []string{
	schemaAIRequests,
	schemaQueryExecutions,
	schemaUserUsageStats,
}
