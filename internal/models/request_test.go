package models

import (
	"strings"
	"testing"
	"time"
)

func expectErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s but got nil", code)
	}
	resp, ok := err.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", err)
	}
	if resp.Code != code {
		t.Fatalf("expected error code %s, got %s", code, resp.Code)
	}
}

func TestErrorResponse_Error(t *testing.T) {
	err := &ErrorResponse{Code: "bad", Message: "failed"}
	if err.Error() != "bad: failed" {
		t.Fatalf("unexpected error text %s", err.Error())
	}
}

func TestValidDifficultiesList(t *testing.T) {
	if got := strings.Join(ValidDifficultiesList(), ","); got != "easy,medium,hard" {
		t.Fatalf("unexpected difficulties: %s", got)
	}
}

func TestStartInterviewRequestValidate(t *testing.T) {
	t.Run("missing role", func(t *testing.T) {
		expectErrCode(t, (&StartInterviewRequest{Role: "   "}).Validate(), "missing_role")
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		expectErrCode(t, (&StartInterviewRequest{Role: "SWE", Difficulty: "extreme"}).Validate(), "invalid_difficulty")
	})

	t.Run("defaults", func(t *testing.T) {
		req := &StartInterviewRequest{Role: " Data Scientist "}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Role != "Data Scientist" || req.Difficulty != DefaultDifficulty || req.Topic != DefaultTopic {
			t.Fatalf("defaults not applied: %+v", req)
		}
	})

	t.Run("normalizes difficulty", func(t *testing.T) {
		req := &StartInterviewRequest{Role: "SWE", Difficulty: " HARD "}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Difficulty != DifficultyHard {
			t.Fatalf("expected hard, got %s", req.Difficulty)
		}
	})
}

func TestChatRequestValidate(t *testing.T) {
	expectErrCode(t, (&ChatRequest{}).Validate(), "missing_session_id")

	if err := (&ChatRequest{SessionID: "s1"}).Validate(); err != nil {
		t.Fatalf("empty answer should be accepted: %v", err)
	}

	req := &ChatRequest{SessionID: "s1", NonVerbalMetrics: &NonVerbalMetrics{EyeContact: 11, Nervousness: -1, Posture: 8.5}}
	err := req.Validate()
	expectErrCode(t, err, "invalid_metrics")
	if n := len(err.(*ErrorResponse).Details); n != 2 {
		t.Fatalf("expected 2 details, got %d", n)
	}
}

func TestAuthRequestsValidate(t *testing.T) {
	err := (&RegisterRequest{Email: "nope", Password: "123"}).Validate()
	expectErrCode(t, err, "validation_error")
	if n := len(err.(*ErrorResponse).Details); n != 3 {
		t.Fatalf("expected 3 details, got %d", n)
	}

	reg := &RegisterRequest{Name: "Ada", Email: " ADA@Example.com ", Password: "secret"}
	if err := reg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", reg.Email)
	}

	expectErrCode(t, (&LoginRequest{Email: "bad"}).Validate(), "invalid_email")
	expectErrCode(t, (&LoginRequest{Email: "a@b.co"}).Validate(), "missing_password")
}

func TestResourceRequestsValidate(t *testing.T) {
	expectErrCode(t, (&CreateResumeRequest{}).Validate(), "missing_file_name")
	expectErrCode(t, (&CreateInterviewRecordRequest{JobTitle: " "}).Validate(), "missing_job_title")
	if err := (&CreateInterviewRecordRequest{JobTitle: "SWE"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFeedbackConversions(t *testing.T) {
	expectErrCode(t, (&Feedback{OverallScore: 11}).Validate(), "invalid_feedback")

	f := &Feedback{OverallScore: 6, FinalVerdict: "Hire"}
	if got := f.ToRecordFeedback().DetailedFeedback; got != "Hire" {
		t.Fatalf("expected verdict as detail, got %q", got)
	}

	m := (&NonVerbalMetrics{EyeContact: 8, Nervousness: 2, Posture: 8.5, Clarity: 8, Confidence: 7.5}).ToRecordMetrics()
	if m.EyeContact != 0.8 || m.Enthusiasm != 0.8 || m.Posture != 0.85 {
		t.Fatalf("unexpected record metrics %+v", m)
	}
}

func TestInterviewSessionHelpers(t *testing.T) {
	s := &InterviewSession{History: []TranscriptEntry{
		{Role: TranscriptRoleAI, Content: "Q1"},
		{Role: TranscriptRoleUser, Content: "A1"},
		{Role: TranscriptRoleAI, Content: "Q2"},
	}}
	if s.AnswerCount() != 1 {
		t.Fatalf("expected 1 answer, got %d", s.AnswerCount())
	}
	if s.CurrentQuestion() != "Q2" {
		t.Fatalf("expected Q2, got %s", s.CurrentQuestion())
	}

	ended := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := (&InterviewHistory{SessionID: "s", QuestionCount: 4, EndedAt: ended}).ToHistoryItem()
	if item.EndedAt == nil || !item.EndedAt.Equal(ended) || item.QuestionCount != 4 {
		t.Fatalf("unexpected history item %+v", item)
	}
}
