package interviewer

import (
	"strings"
	"testing"

	"saylo/internal/models"
)

func TestAnalyzeAnswer(t *testing.T) {
	t.Run("brief", func(t *testing.T) {
		a := AnalyzeAnswer("Tell me about yourself.", "I like code")
		if !a.TooBrief || a.TooLong {
			t.Fatalf("expected brief answer, got %+v", a)
		}
		if a.HasExample || a.Confident {
			t.Fatalf("unexpected markers: %+v", a)
		}
	})

	t.Run("long", func(t *testing.T) {
		a := AnalyzeAnswer("Why this role?", strings.Repeat("word ", 201))
		if !a.TooLong {
			t.Fatalf("expected long answer, got %+v", a)
		}
	})

	t.Run("star question", func(t *testing.T) {
		answer := "The situation was a failing deploy. My task was to fix it and the action I took " +
			"was a rollback. The result was zero downtime, for instance during the next release too."
		a := AnalyzeAnswer("Tell me about a time you fixed an outage", answer)
		if !a.NeedsSTAR || !a.UsesSTAR {
			t.Fatalf("expected STAR structure to be detected, got %+v", a)
		}
		if !a.HasExample {
			t.Fatalf("expected example marker, got %+v", a)
		}
	})
}

func TestHeuristicEvaluation(t *testing.T) {
	tests := []struct {
		name          string
		answer        string
		wantScore     float64
		wantClass     string
		wantTrend     string
		wantMistake   string
		wantNextFocus string
	}{
		{"empty", "  ", 1, "weak", "downgrade", "No answer was given", "Move to new topic"},
		{"brief", "I have 5 years of experience", 4, "weak", "downgrade", "Answer lacked detail", "Drill down"},
		{"detailed", detailedAnswer, 9, "strong", "upgrade", "", "Move to new topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := HeuristicEvaluation("Tell me about yourself.", tt.answer)
			if eval.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", eval.Score, tt.wantScore)
			}
			if eval.Classification != tt.wantClass {
				t.Errorf("classification = %q, want %q", eval.Classification, tt.wantClass)
			}
			if eval.DifficultyTrend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", eval.DifficultyTrend, tt.wantTrend)
			}
			if eval.CriticalMistake != tt.wantMistake {
				t.Errorf("mistake = %q, want %q", eval.CriticalMistake, tt.wantMistake)
			}
			if eval.NextFocus != tt.wantNextFocus {
				t.Errorf("next focus = %q, want %q", eval.NextFocus, tt.wantNextFocus)
			}
		})
	}
}

func TestFollowUpFor(t *testing.T) {
	long := "We shipped the feature on time even though the requirements kept moving"
	cases := map[string]string{
		"":      "",
		"short": "Can you provide more detail about that?",
		long + " and the main challenge was scope":  "How did you overcome that challenge?",
		long + " and I kept the whole team aligned": "How did you work with your team on this?",
		long: "",
	}
	for answer, want := range cases {
		if got := FollowUpFor(answer); got != want {
			t.Errorf("FollowUpFor(%q) = %q, want %q", answer, got, want)
		}
	}
}

func TestTipsFromMetrics(t *testing.T) {
	if tips := TipsFromMetrics(nil); tips != nil {
		t.Fatalf("expected no tips without metrics, got %v", tips)
	}

	tips := TipsFromMetrics(&models.NonVerbalMetrics{EyeContact: 5, Nervousness: 6, Posture: 8.5, Clarity: 7, Confidence: 5})
	if len(tips) != 4 {
		t.Fatalf("expected 4 tips, got %v", tips)
	}

	tips = TipsFromMetrics(&models.NonVerbalMetrics{EyeContact: 10, Nervousness: 0, Posture: 8.5, Clarity: 8, Confidence: 7.5})
	if len(tips) != 1 || tips[0] != "Great job! Keep up the excellent performance" {
		t.Fatalf("expected praise only, got %v", tips)
	}
}

func TestAverageMetrics(t *testing.T) {
	if AverageMetrics(nil) != nil {
		t.Fatal("expected nil average for no samples")
	}
	avg := AverageMetrics([]models.NonVerbalMetrics{
		{EyeContact: 10, Nervousness: 0, Posture: 8, Clarity: 8, Confidence: 6},
		{EyeContact: 6, Nervousness: 4, Posture: 9, Clarity: 8, Confidence: 8},
	})
	if avg.EyeContact != 8 || avg.Nervousness != 2 || avg.Posture != 8.5 || avg.Confidence != 7 {
		t.Fatalf("unexpected average: %+v", avg)
	}
}

func TestHeuristicFeedback(t *testing.T) {
	session := &models.InterviewSession{
		History: []models.TranscriptEntry{
			{Role: models.TranscriptRoleAI, Content: "q1"},
			{Role: models.TranscriptRoleUser, Content: "a1"},
			{Role: models.TranscriptRoleAI, Content: "q2"},
			{Role: models.TranscriptRoleUser, Content: "a2"},
		},
		Evaluations:       []models.Evaluation{{Score: 8}, {Score: 7}},
		StrongAreas:       []string{"introduction"},
		WeakAreas:         []string{"soft skills"},
		CriticalMistakes:  []string{"Answer lacked detail"},
		DifficultyHistory: []string{"medium", "hard"},
	}

	fb := HeuristicFeedback(session, nil)
	if fb.OverallScore != 7.5 {
		t.Fatalf("expected overall score 7.5, got %v", fb.OverallScore)
	}
	if fb.DifficultyTrend != "improved" {
		t.Fatalf("expected improved trend, got %q", fb.DifficultyTrend)
	}
	if len(fb.Strengths) != 1 || len(fb.Weaknesses) != 2 {
		t.Fatalf("unexpected strengths/weaknesses: %v / %v", fb.Strengths, fb.Weaknesses)
	}
	if err := fb.Validate(); err != nil {
		t.Fatalf("heuristic feedback should validate: %v", err)
	}
}

func TestParseEvaluation(t *testing.T) {
	eval, err := parseEvaluation(`Here is my verdict: {"score": 14, "classification": "Excellent", "critical_mistake": "null",
		"difficulty_trend": "UPGRADE", "next_focus": "Drill down", "stage_change": "lunch", "end_interview": false}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Score != 10 {
		t.Fatalf("expected score clamped to 10, got %v", eval.Score)
	}
	if eval.Classification != "strong" {
		t.Fatalf("expected unknown classification to be derived from score, got %q", eval.Classification)
	}
	if eval.CriticalMistake != "" || eval.StageChange != "" {
		t.Fatalf("expected null mistake and invalid stage to be dropped: %+v", eval)
	}
	if eval.DifficultyTrend != "upgrade" {
		t.Fatalf("expected lowercased trend, got %q", eval.DifficultyTrend)
	}

	if _, err := parseEvaluation("no json here"); err == nil {
		t.Fatal("expected error for missing JSON")
	}
}

func TestParseFeedbackRejectsOutOfRangeScore(t *testing.T) {
	if _, err := parseFeedback(`{"overall_score": 11}`); err == nil {
		t.Fatal("expected validation error")
	}
	fb, err := parseFeedback(`{"overall_score": 6, "final_verdict": "Almost"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.DetailedFeedback != "Almost" {
		t.Fatalf("expected verdict as detailed feedback, got %q", fb.DetailedFeedback)
	}
}
