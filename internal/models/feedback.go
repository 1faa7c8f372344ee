package models

// NonVerbalMetrics are the 1-10 behavioural scores derived from webcam
// proctoring. Posture, clarity and confidence are placeholders until real
// instrumentation exists for them.
type NonVerbalMetrics struct {
	EyeContact  float64 `json:"eye_contact"`
	Nervousness float64 `json:"nervousness"`
	Posture     float64 `json:"posture"`
	Clarity     float64 `json:"clarity"`
	Confidence  float64 `json:"confidence"`
}

// Feedback is the final assessment of a completed interview.
type Feedback struct {
	OverallScore     float64           `json:"overall_score"`
	Strengths        []string          `json:"strengths"`
	Weaknesses       []string          `json:"weaknesses"`
	DetailedFeedback string            `json:"detailed_feedback"`
	Recommendations  []string          `json:"recommendations,omitempty"`
	Metrics          *NonVerbalMetrics `json:"metrics,omitempty"`
	DifficultyTrend  string            `json:"difficulty_trend,omitempty"`
	FinalVerdict     string            `json:"final_verdict,omitempty"`
}

func (f *Feedback) Validate() error {
	if f.OverallScore < 0 || f.OverallScore > 10 {
		return &ErrorResponse{Code: "invalid_feedback", Message: "overall_score must be between 0 and 10"}
	}
	return nil
}

// Evaluation is the per-answer assessment produced by the interviewer.
type Evaluation struct {
	Score           float64 `json:"score"`
	Classification  string  `json:"classification"`
	CriticalMistake string  `json:"critical_mistake,omitempty"`
	DifficultyTrend string  `json:"difficulty_trend"`
	NextFocus       string  `json:"next_focus"`
	StageChange     string  `json:"stage_change,omitempty"`
	EndInterview    bool    `json:"end_interview"`
	Comment         string  `json:"comment,omitempty"`
}

// RecordFeedback is the feedback block stored on a backend interview record.
type RecordFeedback struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	OverallScore     float64  `json:"overallScore"`
	DetailedFeedback string   `json:"detailedFeedback"`
}

// RecordMetrics are stored on a backend interview record on a 0-1 scale.
type RecordMetrics struct {
	EyeContact float64 `json:"eyeContact"`
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
	Enthusiasm float64 `json:"enthusiasm"`
	Posture    float64 `json:"posture"`
}

func CannedRecordFeedback() *RecordFeedback {
	return &RecordFeedback{
		Strengths:        []string{"Good communication", "Structured answers", "Technical knowledge"},
		Weaknesses:       []string{"Could improve conciseness", "More examples needed"},
		OverallScore:     7.5,
		DetailedFeedback: "You demonstrated strong technical knowledge and communicated clearly.",
	}
}

func CannedRecordMetrics() *RecordMetrics {
	return &RecordMetrics{
		EyeContact: 0.75,
		Confidence: 0.65,
		Clarity:    0.82,
		Enthusiasm: 0.7,
		Posture:    0.6,
	}
}

// ToRecordFeedback converts interview service feedback to the record shape.
func (f *Feedback) ToRecordFeedback() *RecordFeedback {
	detail := f.DetailedFeedback
	if detail == "" {
		detail = f.FinalVerdict
	}
	return &RecordFeedback{
		Strengths:        f.Strengths,
		Weaknesses:       f.Weaknesses,
		OverallScore:     f.OverallScore,
		DetailedFeedback: detail,
	}
}

// ToRecordMetrics rescales 1-10 scores onto the record's 0-1 scale.
func (m *NonVerbalMetrics) ToRecordMetrics() *RecordMetrics {
	return &RecordMetrics{
		EyeContact: m.EyeContact / 10,
		Confidence: m.Confidence / 10,
		Clarity:    m.Clarity / 10,
		Posture:    m.Posture / 10,
		Enthusiasm: (10 - m.Nervousness) / 10,
	}
}
