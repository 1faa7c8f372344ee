package interviewer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"saylo/internal/events"
	"saylo/internal/models"
	"saylo/internal/prompts"
	"saylo/internal/questionbank"
)

type stubProvider struct {
	generate func(prompt string) (string, error)
}

func (p *stubProvider) GenerateContent(_ context.Context, prompt, _ string) (*models.GenerationResponse, error) {
	text, err := p.generate(prompt)
	if err != nil {
		return nil, err
	}
	return &models.GenerationResponse{Content: text}, nil
}

func (p *stubProvider) GetProviderName() string { return "stub" }

type stubTranscriber struct {
	text string
	err  error
}

func (t *stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return t.text, t.err
}

type recordingHistory struct {
	mu      sync.Mutex
	records []models.InterviewHistory
	err     error
}

func (h *recordingHistory) Create(record *models.InterviewHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, *record)
	return h.err
}

func (h *recordingHistory) List(limit int) ([]models.InterviewHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit > 0 && limit < len(h.records) {
		return h.records[:limit], nil
	}
	return h.records, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SessionEnded
}

func (p *recordingPublisher) PublishSessionEnded(_ context.Context, e events.SessionEnded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	svc       *Service
	store     *MemoryStore
	history   *recordingHistory
	publisher *recordingPublisher
}

func newFixture(t *testing.T, provider *stubProvider, opts Options) *fixture {
	t.Helper()
	bank, err := questionbank.NewEmbeddedBank()
	if err != nil {
		t.Fatalf("failed to load question bank: %v", err)
	}
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)

	f := &fixture{store: store, history: &recordingHistory{}, publisher: &recordingPublisher{}}
	deps := Deps{
		Prompts:   pm,
		Bank:      bank,
		Store:     store,
		History:   f.history,
		Publisher: f.publisher,
		Logger:    zap.NewNop(),
	}
	if provider != nil {
		deps.Provider = provider
	}
	f.svc = NewService(deps, opts)
	return f
}

func startRequest() *models.StartInterviewRequest {
	return &models.StartInterviewRequest{Role: "frontend", Difficulty: "medium", Topic: models.DefaultTopic}
}

// routes a prompt to a canned reply by its opening line
func byPromptKind(question, evaluation, feedback string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, "You are a professional interviewer"):
			return question, nil
		case strings.HasPrefix(prompt, "You are evaluating"):
			return evaluation, nil
		case strings.HasPrefix(prompt, "You are a senior interviewer"):
			return feedback, nil
		}
		return "", errors.New("unexpected prompt")
	}
}

const detailedAnswer = "In my last role I led the migration of our dashboard to React. For example, " +
	"I split the work into small releases, wrote the migration guide and paired with each teammate. " +
	"We achieved a forty percent faster load time and the project was successful."
