// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "ADVISOR_PORT"
	EnvLogLevel        = "ADVISOR_LOG_LEVEL"
	EnvShutdownTimeout = "ADVISOR_SHUTDOWN_TIMEOUT"
	EnvServerName      = "ADVISOR_SERVER_NAME"
	EnvInstanceID      = "ADVISOR_INSTANCE_ID"

	// Data
	EnvDataDir     = "ADVISOR_DATA_DIR"
	EnvDatasetPath = "ADVISOR_DATASET_PATH"

	// Matching
	EnvMatchPolicy = "ADVISOR_MATCH_POLICY"
	EnvMatchLimit  = "ADVISOR_MATCH_LIMIT"

	// Chat
	EnvHistoryWindow  = "ADVISOR_HISTORY_WINDOW"
	EnvMaxQueryLength = "ADVISOR_MAX_QUERY_LENGTH"

	// LLM
	EnvLLMProvider    = "ADVISOR_LLM_PROVIDER"
	EnvLLMModel       = "ADVISOR_LLM_MODEL"
	EnvLLMTimeout     = "ADVISOR_LLM_TIMEOUT"
	EnvLLMTemperature = "ADVISOR_LLM_TEMPERATURE"
	EnvGeminiAPIKey   = "ADVISOR_GEMINI_API_KEY"
	EnvGroqAPIKey     = "ADVISOR_GROQ_API_KEY"
	EnvCerebrasAPIKey = "ADVISOR_CEREBRAS_API_KEY"
	EnvOpenAIAPIKey   = "ADVISOR_OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "ADVISOR_OPENAI_BASE_URL"

	// Rate Limits
	EnvLLMRateBurst   = "ADVISOR_LLM_RATE_BURST"
	EnvLLMRatePerHour = "ADVISOR_LLM_RATE_PER_HOUR"

	// R2 Dataset Source
	EnvR2Enabled         = "ADVISOR_R2_ENABLED"
	EnvR2AccountID       = "ADVISOR_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "ADVISOR_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "ADVISOR_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "ADVISOR_R2_BUCKET_NAME"
	EnvR2DatasetKey      = "ADVISOR_R2_DATASET_KEY"

	// Sentry Feature
	EnvSentryEnabled     = "ADVISOR_SENTRY_ENABLED"
	EnvSentryDSN         = "ADVISOR_SENTRY_DSN"
	EnvSentryEnvironment = "ADVISOR_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "ADVISOR_SENTRY_RELEASE"
	EnvSentrySampleRate  = "ADVISOR_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "ADVISOR_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "ADVISOR_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "ADVISOR_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "ADVISOR_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "ADVISOR_METRICS_USERNAME"
	EnvMetricsPassword    = "ADVISOR_METRICS_PASSWORD"
)
