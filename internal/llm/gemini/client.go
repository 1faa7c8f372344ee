package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"saylo/internal/llm"
	"saylo/internal/models"
)

const transcribePrompt = "Transcribe this interview answer verbatim. Return only the spoken words, no commentary."

// Client represents a Gemini LLM client. It also serves as the audio
// transcriber for spoken answers.
type Client struct {
	client *genai.Client
	config *Config
}

var (
	_ llm.Provider    = (*Client)(nil)
	_ llm.Transcriber = (*Client)(nil)
)

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	startTime := time.Now()

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return nil, classifyError(ctx, err, "Failed to generate content")
	}

	text, err := responseText(result)
	if err != nil {
		return nil, err
	}

	return &models.GenerationResponse{
		Content: text,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       "gemini",
			Model:          c.config.Model,
			RequestID:      requestID,
		},
	}, nil
}

// Transcribe sends the recording inline with a transcription instruction.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty audio payload",
		}
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	result, err := c.client.Models.GenerateContent(ctx, c.config.TranscriberModel, contents, nil)
	if err != nil {
		return "", classifyError(ctx, err, "Failed to transcribe audio")
	}
	return responseText(result)
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

func classifyError(ctx context.Context, err error, message string) error {
	code := llm.ErrCodeServiceDown
	switch {
	case isRateLimitError(err):
		code = llm.ErrCodeRateLimit
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		code = llm.ErrCodeTimeout
	}
	return &llm.ProviderError{
		Provider: "gemini",
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
