package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"saylo/internal/models"
)

type testProvider struct{}

func (testProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{Content: "ok"}, nil
}

func (testProvider) GetProviderName() string { return "test" }

func TestProviderErrorError(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "failed"}
	if err.Error() != "gemini error: failed" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	wrapped := &ProviderError{Provider: "gemini", Message: "failed", Err: errors.New("detail")}
	if got := wrapped.Error(); got != "gemini error: failed (detail)" {
		t.Fatalf("unexpected wrapped error message: %s", got)
	}
}

func TestIsRateLimited(t *testing.T) {
	rl := &ProviderError{Provider: "gemini", Code: ErrCodeRateLimit}
	if !IsRateLimited(fmt.Errorf("generate: %w", rl)) {
		t.Fatal("expected wrapped rate limit error to be detected")
	}
	if IsRateLimited(&ProviderError{Code: ErrCodeServiceDown}) {
		t.Fatal("service down is not a rate limit")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Fatal("plain errors are not rate limits")
	}
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test_provider", func() (Provider, error) {
		return testProvider{}, nil
	})
	defer delete(factories, "test_provider")

	provider, err := NewProvider("test_provider")
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if name := provider.GetProviderName(); name != "test" {
		t.Fatalf("expected provider name test, got %s", name)
	}

	if names := Providers(); len(names) != 1 || names[0] != "test_provider" {
		t.Fatalf("unexpected registered providers %v", names)
	}

	_, err = NewProvider("missing")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "test_provider") {
		t.Fatalf("expected registered names in error, got %v", err)
	}
}
