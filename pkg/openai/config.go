package openai

import "time"

// Config holds the OpenAI client settings.
type Config struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ChatModel   string        `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	VisionModel string        `env:"OPENAI_VISION_MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens   int           `env:"OPENAI_MAX_TOKENS" envDefault:"800"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT" envDefault:"30s"`
}
