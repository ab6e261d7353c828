package model

// ================ Config ================
type GuardConfig struct {
	MaxMessageLength int `envconfig:"GUARD_MAX_MESSAGE_LENGTH" default:"1000"`
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.0"`
}

type RewriterModelConfig struct {
	Model       string  `envconfig:"REWRITER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"REWRITER_MAX_TOKENS" default:"300"`
	Temperature float32 `envconfig:"REWRITER_TEMPERATURE" default:"0.75"`
}

type SessionConfig struct {
	Backend       string `envconfig:"SESSION_STORE" default:"memory"`
	TTL           string `envconfig:"SESSION_TTL" default:"24h"`
	SweepInterval string `envconfig:"SESSION_SWEEP_INTERVAL" default:"10m"`
}
