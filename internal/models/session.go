package models

import "time"

type TranscriptEntry struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	QuestionID string `json:"question_id,omitempty"`
}

// InterviewSession is the interviewer's working state for one live session.
// It is serialized into the session store between requests.
type InterviewSession struct {
	ID                string             `json:"id"`
	InterviewID       string             `json:"interview_id,omitempty"`
	Role              string             `json:"role"`
	Difficulty        string             `json:"difficulty"`
	Topic             string             `json:"topic"`
	Stage             string             `json:"stage"`
	History           []TranscriptEntry  `json:"history"`
	Evaluations       []Evaluation       `json:"evaluations"`
	StrongAreas       []string           `json:"strong_areas"`
	WeakAreas         []string           `json:"weak_areas"`
	CriticalMistakes  []string           `json:"critical_mistakes"`
	DifficultyHistory []string           `json:"difficulty_history"`
	Metrics           []NonVerbalMetrics `json:"metrics"`
	CurrentQuestionID string             `json:"current_question_id"`
	AskedQuestions    []string           `json:"asked_questions"`
	Completed         bool               `json:"completed"`
	Feedback          *Feedback          `json:"feedback,omitempty"`
	StartedAt         time.Time          `json:"started_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	EndedAt           *time.Time         `json:"ended_at,omitempty"`
}

// AnswerCount is the number of answers the candidate has given so far.
func (s *InterviewSession) AnswerCount() int {
	n := 0
	for _, e := range s.History {
		if e.Role == TranscriptRoleUser {
			n++
		}
	}
	return n
}

// CurrentQuestion returns the most recent interviewer message.
func (s *InterviewSession) CurrentQuestion() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == TranscriptRoleAI {
			return s.History[i].Content
		}
	}
	return ""
}
