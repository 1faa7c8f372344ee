package models

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type StartInterviewRequest struct {
	Role       string `json:"role"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
	// optional id of the backend interview record this session belongs to
	InterviewID string `json:"interview_id,omitempty"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role field is required"}
	}

	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if !ValidDifficulties[r.Difficulty] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: easy, medium, hard",
		}
	}

	if strings.TrimSpace(r.Topic) == "" {
		r.Topic = DefaultTopic
	}
	return nil
}

type ChatRequest struct {
	SessionID        string            `json:"session_id"`
	Answer           string            `json:"answer"`
	NonVerbalMetrics *NonVerbalMetrics `json:"non_verbal_metrics,omitempty"`
}

// An empty answer is accepted: the client submits one when the question
// timer runs out.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "session_id is required"}
	}
	if r.NonVerbalMetrics != nil {
		return r.NonVerbalMetrics.Validate()
	}
	return nil
}

func (m *NonVerbalMetrics) Validate() error {
	fields := map[string]float64{
		"eye_contact": m.EyeContact,
		"nervousness": m.Nervousness,
		"posture":     m.Posture,
		"clarity":     m.Clarity,
		"confidence":  m.Confidence,
	}
	var details []ValidationErrorDetail
	for name, v := range fields {
		if v < 0 || v > 10 {
			details = append(details, ValidationErrorDetail{Field: name, Reason: "must be between 0 and 10"})
		}
	}
	if len(details) > 0 {
		return &ErrorResponse{
			Code:    "invalid_metrics",
			Message: "non_verbal_metrics out of range",
			Details: details,
		}
	}
	return nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	var details []ValidationErrorDetail
	if strings.TrimSpace(r.Name) == "" {
		details = append(details, ValidationErrorDetail{Field: "name", Reason: "Name is required"})
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !emailPattern.MatchString(r.Email) {
		details = append(details, ValidationErrorDetail{Field: "email", Reason: "Please provide a valid email"})
	}
	if len(r.Password) < 6 {
		details = append(details, ValidationErrorDetail{Field: "password", Reason: "Password must be at least 6 characters long"})
	}
	if len(details) > 0 {
		return &ErrorResponse{Code: "validation_error", Message: "Invalid registration details", Details: details}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !emailPattern.MatchString(r.Email) {
		return &ErrorResponse{Code: "invalid_email", Message: "Please provide a valid email"}
	}
	if r.Password == "" {
		return &ErrorResponse{Code: "missing_password", Message: "Password is required"}
	}
	return nil
}

type CreateResumeRequest struct {
	FileName   string            `json:"fileName"`
	ParsedData *ParsedResumeData `json:"parsedData,omitempty"`
}

func (r *CreateResumeRequest) Validate() error {
	if strings.TrimSpace(r.FileName) == "" {
		return &ErrorResponse{Code: "missing_file_name", Message: "fileName is required"}
	}
	return nil
}

type CreateInterviewRecordRequest struct {
	JobTitle string `json:"jobTitle"`
}

func (r *CreateInterviewRecordRequest) Validate() error {
	if strings.TrimSpace(r.JobTitle) == "" {
		return &ErrorResponse{Code: "missing_job_title", Message: "jobTitle is required"}
	}
	return nil
}
