package gemini

import (
	"errors"
	"os"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey           string
	Model            string
	TranscriberModel string
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	transcriber := os.Getenv("GEMINI_TRANSCRIBE_MODEL")
	if transcriber == "" {
		transcriber = model
	}

	return &Config{
		APIKey:           apiKey,
		Model:            model,
		TranscriberModel: transcriber,
	}, nil
}
