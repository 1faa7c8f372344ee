// Package session drives one practice interview from setup to feedback: it
// sequences the phases, owns the per-question countdown and the proctoring
// sampler, and talks to the question service.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saylo/internal/models"
	"saylo/internal/proctoring"
)

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseSetup        Phase = "setup"
	PhaseInstructions Phase = "instructions"
	PhaseLive         Phase = "live"
	PhaseCompleted    Phase = "completed"
)

var (
	// ErrSubmissionInFlight rejects a call made while another request for the
	// same session has not returned.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrInvalidPhase       = errors.New("operation not allowed in current phase")
	// ErrSessionReset is returned by a call whose session was reset before
	// its response arrived. The response is discarded.
	ErrSessionReset = errors.New("session was reset")
)

func phaseError(op string, phase Phase) error {
	return fmt.Errorf("%s in phase %q: %w", op, phase, ErrInvalidPhase)
}

type Question struct {
	ID         string `json:"id"`
	Text       string `json:"question"`
	Category   string `json:"category"`
	UserAnswer string `json:"user_answer"`
}

// State is a snapshot of the controller. Slices are copies.
type State struct {
	Phase             Phase               `json:"phase"`
	SessionID         string              `json:"session_id"`
	Role              string              `json:"role"`
	Difficulty        string              `json:"difficulty"`
	Topic             string              `json:"topic"`
	Questions         []Question          `json:"questions"`
	CurrentIndex      int                 `json:"current_index"`
	Answer            string              `json:"answer"` // buffered, not yet submitted
	TimeLeft          int                 `json:"time_left"`
	IsSubmitting      bool                `json:"is_submitting"`
	Error             string              `json:"error,omitempty"`
	Feedback          *models.Feedback    `json:"feedback,omitempty"`
	StartedAt         time.Time           `json:"started_at"`
	EndedAt           *time.Time          `json:"ended_at,omitempty"`
	ProctoringEnabled bool                `json:"proctoring_enabled"`
	Counters          proctoring.Counters `json:"counters"`
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (s State) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// StartResult is the service's reply to a new session.
type StartResult struct {
	SessionID  string
	QuestionID string
	Question   string
	Stage      string
}

func (r *StartResult) Validate() error {
	if r.SessionID == "" {
		return errors.New("start response is missing session_id")
	}
	if r.Question == "" {
		return errors.New("start response is missing the first question")
	}
	return nil
}

// NextQuestion is the outcome of an answer that keeps the interview going.
type NextQuestion struct {
	ID         string
	Text       string
	Stage      string
	Evaluation *models.Evaluation
}

// Completion is the outcome of the final answer.
type Completion struct {
	Feedback *models.Feedback
}

// AnswerResult holds exactly one of Next or Completed. Transcript is set for
// audio answers.
type AnswerResult struct {
	Next       *NextQuestion
	Completed  *Completion
	Transcript string
}

func (r *AnswerResult) Validate() error {
	switch {
	case r.Next != nil && r.Completed != nil:
		return errors.New("answer result is both completed and continuing")
	case r.Next == nil && r.Completed == nil:
		return errors.New("answer result has neither a next question nor completion")
	case r.Next != nil && r.Next.Text == "":
		return errors.New("answer result is missing the next question")
	case r.Completed != nil && r.Completed.Feedback != nil:
		return r.Completed.Feedback.Validate()
	}
	return nil
}

// QuestionService is the remote question and feedback service.
type QuestionService interface {
	StartInterview(ctx context.Context, role, difficulty, topic string) (*StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string, metrics *models.NonVerbalMetrics) (*AnswerResult, error)
	SubmitAudioAnswer(ctx context.Context, sessionID string, audio []byte, mimeType string, metrics *models.NonVerbalMetrics) (*AnswerResult, error)
	EndInterview(ctx context.Context, sessionID string) (*models.Feedback, error)
	GetHistory(ctx context.Context) ([]models.HistoryItem, error)
}
