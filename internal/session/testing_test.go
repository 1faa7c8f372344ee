package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"saylo/internal/models"
)

type submission struct {
	sessionID string
	answer    string
	audio     []byte
	metrics   *models.NonVerbalMetrics
}

// fakeService records every call. Unset fns panic so tests fail loudly on
// unexpected calls.
type fakeService struct {
	startFn   func(ctx context.Context, role, difficulty, topic string) (*StartResult, error)
	submitFn  func(ctx context.Context, sub submission) (*AnswerResult, error)
	endFn     func(ctx context.Context, sessionID string) (*models.Feedback, error)
	historyFn func(ctx context.Context) ([]models.HistoryItem, error)

	mu      sync.Mutex
	submits []submission
	ends    []string
}

func (f *fakeService) StartInterview(ctx context.Context, role, difficulty, topic string) (*StartResult, error) {
	if f.startFn == nil {
		panic("unexpected call to StartInterview")
	}
	return f.startFn(ctx, role, difficulty, topic)
}

func (f *fakeService) SubmitAnswer(ctx context.Context, sessionID, answer string, metrics *models.NonVerbalMetrics) (*AnswerResult, error) {
	return f.record(ctx, submission{sessionID: sessionID, answer: answer, metrics: metrics})
}

func (f *fakeService) SubmitAudioAnswer(ctx context.Context, sessionID string, audio []byte, _ string, metrics *models.NonVerbalMetrics) (*AnswerResult, error) {
	return f.record(ctx, submission{sessionID: sessionID, audio: audio, metrics: metrics})
}

func (f *fakeService) record(ctx context.Context, sub submission) (*AnswerResult, error) {
	if f.submitFn == nil {
		panic("unexpected call to SubmitAnswer")
	}
	f.mu.Lock()
	f.submits = append(f.submits, sub)
	f.mu.Unlock()
	return f.submitFn(ctx, sub)
}

func (f *fakeService) EndInterview(ctx context.Context, sessionID string) (*models.Feedback, error) {
	f.mu.Lock()
	f.ends = append(f.ends, sessionID)
	f.mu.Unlock()
	if f.endFn == nil {
		return nil, nil
	}
	return f.endFn(ctx, sessionID)
}

func (f *fakeService) GetHistory(ctx context.Context) ([]models.HistoryItem, error) {
	if f.historyFn == nil {
		panic("unexpected call to GetHistory")
	}
	return f.historyFn(ctx)
}

func (f *fakeService) submissions() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission(nil), f.submits...)
}

func startsWith(question string) func(context.Context, string, string, string) (*StartResult, error) {
	return func(context.Context, string, string, string) (*StartResult, error) {
		return &StartResult{SessionID: "s1", QuestionID: "q1", Question: question, Stage: "introduction"}, nil
	}
}

// scripted replies with the next question in order and completes once the
// list is exhausted.
func scripted(score float64, questions ...string) func(context.Context, submission) (*AnswerResult, error) {
	var mu sync.Mutex
	return func(context.Context, submission) (*AnswerResult, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(questions) == 0 {
			return &AnswerResult{Completed: &Completion{Feedback: &models.Feedback{OverallScore: score}}}, nil
		}
		next := questions[0]
		questions = questions[1:]
		return &AnswerResult{Next: &NextQuestion{Text: next, Stage: "technical_deep_dive"}}, nil
	}
}

// fakeTicker hands each countdown task its own channel so tests decide when
// a second passes.
type fakeTicker struct {
	mu sync.Mutex
	ch chan time.Time
}

func (f *fakeTicker) new(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)
	f.mu.Lock()
	f.ch = ch
	f.mu.Unlock()
	return ch, func() {}
}

func (f *fakeTicker) tick(t *testing.T, n int) {
	t.Helper()
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	for i := 0; i < n; i++ {
		select {
		case ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatalf("countdown stopped receiving ticks after %d of %d", i, n)
		}
	}
}

func newController(t *testing.T, service *fakeService, opts Options) (*Controller, *fakeTicker) {
	t.Helper()
	c := New(service, opts)
	ticker := &fakeTicker{}
	c.timer.newTicker = ticker.new
	t.Cleanup(c.Close)
	return c, ticker
}

func startLive(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.StartInterview(context.Background(), "frontend", models.DifficultyMedium); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
}
