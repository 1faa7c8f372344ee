package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord is the backend's bookkeeping entry for one interview attempt.
type InterviewRecord struct {
	gorm.Model
	UserID    uint            `gorm:"not null;index" json:"userId"`
	JobTitle  string          `gorm:"not null" json:"jobTitle"`
	Status    string          `gorm:"not null;default:in-progress" json:"status"`
	StartTime time.Time       `gorm:"not null" json:"startTime"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
	Feedback  *RecordFeedback `gorm:"serializer:json" json:"feedback,omitempty"`
	Metrics   *RecordMetrics  `gorm:"serializer:json" json:"metrics,omitempty"`
}

// InterviewHistory represents a completed interview session on the
// interview service.
type InterviewHistory struct {
	gorm.Model
	SessionID     string            `gorm:"uniqueIndex;not null" json:"sessionId"`
	InterviewID   string            `gorm:"index" json:"interviewId,omitempty"`
	Role          string            `gorm:"not null" json:"role"`
	Difficulty    string            `json:"difficulty"`
	Topic         string            `json:"topic"`
	QuestionCount int               `json:"questionCount"`
	Transcript    []TranscriptEntry `gorm:"serializer:json;type:text" json:"transcript"`
	Feedback      *Feedback         `gorm:"serializer:json;type:text" json:"feedback,omitempty"`
	StartedAt     time.Time         `json:"startedAt"`
	EndedAt       time.Time         `json:"endedAt"`
	DurationSec   int               `json:"durationSeconds"`
	Exported      bool              `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt    *time.Time        `json:"exportedAt,omitempty"`
}

func (h *InterviewHistory) ToHistoryItem() HistoryItem {
	ended := h.EndedAt
	return HistoryItem{
		SessionID:     h.SessionID,
		Role:          h.Role,
		Difficulty:    h.Difficulty,
		Topic:         h.Topic,
		StartedAt:     h.StartedAt,
		EndedAt:       &ended,
		QuestionCount: h.QuestionCount,
		Feedback:      h.Feedback,
	}
}

// TrainingDataPoint represents a single training example in JSONL format for Gemini fine-tuning
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}
