package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 4096

	// Ceiling for one chat request including tool execution; the
	// platform kills the stream past this point.
	DefaultChatTimeoutSec = 30

	DefaultDemoUserID = "demo@queryai.com"

	DefaultCORSMaxAge = 300
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
