package models

import "time"

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// raw output of an LLM call
type GenerationResponse struct {
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
}

type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	RequestID      string `json:"request_id"`
}

// StartInterviewResponse carries the session id and the opening question.
type StartInterviewResponse struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	QuestionID string `json:"question_id"`
	Stage      string `json:"stage"`
}

// ChatResponse is returned for both text and audio answers.
type ChatResponse struct {
	IsCompleted  bool        `json:"is_completed"`
	NextQuestion string      `json:"next_question,omitempty"`
	QuestionID   string      `json:"question_id,omitempty"`
	Stage        string      `json:"stage,omitempty"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
	Feedback     *Feedback   `json:"feedback,omitempty"`
	Transcript   string      `json:"transcript,omitempty"`
}

type EndInterviewResponse struct {
	Status   string    `json:"status"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// HistoryItem is one past session as listed by the history endpoint.
type HistoryItem struct {
	SessionID     string     `json:"session_id"`
	Role          string     `json:"role"`
	Difficulty    string     `json:"difficulty"`
	Topic         string     `json:"topic"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	QuestionCount int        `json:"question_count"`
	Feedback      *Feedback  `json:"feedback,omitempty"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
