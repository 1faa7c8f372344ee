package interviewer

import (
	"context"
	"errors"
	"time"

	"saylo/internal/models"
)

var ErrSessionNotFound = errors.New("interview session not found")

// Store keeps live interview sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*models.InterviewSession, error)
	Save(ctx context.Context, session *models.InterviewSession) error
	Delete(ctx context.Context, id string) error
	// ListIdle returns unfinished sessions last updated before the cutoff.
	ListIdle(ctx context.Context, before time.Time) ([]*models.InterviewSession, error)
}
