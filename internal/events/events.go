// Package events carries interview lifecycle events between the interview
// service and the backend over Redis pub/sub and, optionally, RabbitMQ.
package events

import (
	"context"
	"errors"
	"time"

	"saylo/internal/models"
)

const (
	ChannelSessionEnded = "session_ended"
	// routing key on the topic exchange
	RoutingSessionEnded = "interview.session_ended"
)

// end reasons
const (
	ReasonCompleted = "completed"
	ReasonEnded     = "ended"
	ReasonAbandoned = "abandoned"
)

type SessionEnded struct {
	SessionID     string                   `json:"session_id"`
	InterviewID   string                   `json:"interview_id,omitempty"`
	Role          string                   `json:"role"`
	Difficulty    string                   `json:"difficulty"`
	Topic         string                   `json:"topic"`
	QuestionCount int                      `json:"question_count"`
	Reason        string                   `json:"reason"`
	Feedback      *models.Feedback         `json:"feedback,omitempty"`
	Metrics       *models.NonVerbalMetrics `json:"metrics,omitempty"`
	StartedAt     time.Time                `json:"started_at"`
	EndedAt       time.Time                `json:"ended_at"`
}

type Publisher interface {
	PublishSessionEnded(ctx context.Context, event SessionEnded) error
}

// MultiPublisher fans one event out to every configured publisher.
type MultiPublisher []Publisher

func (m MultiPublisher) PublishSessionEnded(ctx context.Context, event SessionEnded) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSessionEnded(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
