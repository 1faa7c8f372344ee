package interviewer

import (
	"fmt"
	"math"
	"strings"

	"saylo/internal/models"
	"saylo/internal/utils"
)

const (
	briefAnswerWords = 20
	longAnswerWords  = 200
)

var (
	exampleMarkers    = []string{"example", "for instance", "specifically"}
	confidenceMarkers = []string{"confident", "successful", "achieved", "accomplished", "exceeded"}
	starMarkers       = []string{"situation", "task", "action", "result"}
)

// AnswerAnalysis is the word-level reading of one answer used when no LLM is
// available.
type AnswerAnalysis struct {
	WordCount    int
	TooBrief     bool
	TooLong      bool
	HasExample   bool
	Confident    bool
	UsesSTAR     bool
	NeedsSTAR    bool
	Observations []string
	Suggestions  []string
}

// AnalyzeAnswer inspects an answer for length, concrete examples, confident
// language and, for behavioural questions, STAR structure.
func AnalyzeAnswer(question, answer string) AnswerAnalysis {
	lowerQ := strings.ToLower(question)
	lowerA := strings.ToLower(answer)

	a := AnswerAnalysis{WordCount: utils.WordCount(answer)}
	switch {
	case a.WordCount < briefAnswerWords:
		a.TooBrief = true
		a.Suggestions = append(a.Suggestions, "Try to elaborate more on your answer with specific examples")
	case a.WordCount > longAnswerWords:
		a.TooLong = true
		a.Suggestions = append(a.Suggestions, "Try to be more concise while maintaining key points")
	default:
		a.Observations = append(a.Observations, "Good answer length")
	}

	a.NeedsSTAR = strings.Contains(lowerQ, "time") || strings.Contains(lowerQ, "situation")
	if a.NeedsSTAR {
		hits := 0
		for _, m := range starMarkers {
			if strings.Contains(lowerA, m) {
				hits++
			}
		}
		a.UsesSTAR = hits >= 2
		if a.UsesSTAR {
			a.Observations = append(a.Observations, "Good use of the STAR method")
		} else {
			a.Suggestions = append(a.Suggestions, "Consider using the STAR method (Situation, Task, Action, Result)")
		}
	}

	a.HasExample = containsAny(lowerA, exampleMarkers)
	if a.HasExample {
		a.Observations = append(a.Observations, "Good use of specific examples")
	} else {
		a.Suggestions = append(a.Suggestions, "Include specific examples to support your points")
	}

	a.Confident = containsAny(lowerA, confidenceMarkers)
	if a.Confident {
		a.Observations = append(a.Observations, "Confident language")
	}
	return a
}

// HeuristicEvaluation scores an answer from its analysis alone.
func HeuristicEvaluation(question, answer string) models.Evaluation {
	if strings.TrimSpace(answer) == "" {
		return models.Evaluation{
			Score:           1,
			Classification:  "weak",
			CriticalMistake: "No answer was given",
			DifficultyTrend: "downgrade",
			NextFocus:       "Move to new topic",
			Comment:         "No answer was recorded for this question.",
		}
	}

	a := AnalyzeAnswer(question, answer)
	score := 7.0
	switch {
	case a.TooBrief:
		score = 4
	case a.TooLong:
		score = 6
	}
	if a.HasExample {
		score++
	}
	if a.Confident {
		score++
	}
	if a.NeedsSTAR && a.UsesSTAR {
		score++
	}
	score = math.Min(score, 10)

	eval := models.Evaluation{
		Score:          score,
		Classification: "weak",
		NextFocus:      "Move to new topic",
	}
	if score >= 7 {
		eval.Classification = "strong"
	}
	switch {
	case score >= 8:
		eval.DifficultyTrend = "upgrade"
	case score <= 4:
		eval.DifficultyTrend = "downgrade"
		eval.NextFocus = "Drill down"
	default:
		eval.DifficultyTrend = "stable"
	}
	if a.TooBrief {
		eval.CriticalMistake = "Answer lacked detail"
	}
	eval.Comment = strings.Join(append(a.Observations, a.Suggestions...), ". ")
	return eval
}

// FollowUpFor picks a canned follow-up question from the answer content, or
// returns "" when the answer gives nothing to drill into.
func FollowUpFor(answer string) string {
	lower := strings.ToLower(answer)
	switch {
	case strings.TrimSpace(answer) == "":
		return ""
	case len(answer) < 50:
		return "Can you provide more detail about that?"
	case strings.Contains(lower, "challenge"):
		return "How did you overcome that challenge?"
	case strings.Contains(lower, "team"):
		return "How did you work with your team on this?"
	}
	return ""
}

// HeuristicFeedback builds final feedback from the recorded evaluations.
func HeuristicFeedback(session *models.InterviewSession, metrics *models.NonVerbalMetrics) *models.Feedback {
	avg := averageScore(session.Evaluations)
	answered := session.AnswerCount()

	fb := &models.Feedback{
		OverallScore:    math.Round(avg*10) / 10,
		Metrics:         metrics,
		DifficultyTrend: difficultyTrend(session.DifficultyHistory),
	}
	for _, area := range session.StrongAreas {
		fb.Strengths = append(fb.Strengths, "Solid answers on "+area)
	}
	if len(fb.Strengths) == 0 && answered > 0 {
		fb.Strengths = append(fb.Strengths, "Completed the interview questions")
	}
	for _, area := range session.WeakAreas {
		fb.Weaknesses = append(fb.Weaknesses, "Needs more depth on "+area)
	}
	for i, mistake := range session.CriticalMistakes {
		if i == 3 {
			break
		}
		fb.Weaknesses = appendUnique(fb.Weaknesses, mistake)
	}

	fb.Recommendations = TipsFromMetrics(metrics)
	fb.DetailedFeedback = fmt.Sprintf("You answered %d question(s) with an average score of %.1f/10.", answered, avg)
	switch {
	case avg >= 8:
		fb.FinalVerdict = "Ready for the role."
	case avg >= 6:
		fb.FinalVerdict = "Close to ready. Keep practising the weak areas."
	default:
		fb.FinalVerdict = "Not ready yet. More practice is needed."
	}
	return fb
}

// TipsFromMetrics turns non-verbal scores into coaching tips.
func TipsFromMetrics(m *models.NonVerbalMetrics) []string {
	if m == nil {
		return nil
	}
	var tips []string
	if m.EyeContact < 7 {
		tips = append(tips, "Try to maintain more eye contact with the camera")
	}
	if m.Confidence < 6 {
		tips = append(tips, "Speak with more confidence and conviction")
	}
	if m.Clarity < 8 {
		tips = append(tips, "Focus on speaking more clearly and at a moderate pace")
	}
	if 10-m.Nervousness < 7 {
		tips = append(tips, "Show more enthusiasm and energy in your responses")
	}
	if len(tips) == 0 {
		tips = append(tips, "Great job! Keep up the excellent performance")
	}
	return tips
}

// AverageMetrics averages the per-answer metrics, or returns nil when none
// were sent.
func AverageMetrics(all []models.NonVerbalMetrics) *models.NonVerbalMetrics {
	if len(all) == 0 {
		return nil
	}
	var sum models.NonVerbalMetrics
	for _, m := range all {
		sum.EyeContact += m.EyeContact
		sum.Nervousness += m.Nervousness
		sum.Posture += m.Posture
		sum.Clarity += m.Clarity
		sum.Confidence += m.Confidence
	}
	n := float64(len(all))
	return &models.NonVerbalMetrics{
		EyeContact:  sum.EyeContact / n,
		Nervousness: sum.Nervousness / n,
		Posture:     sum.Posture / n,
		Clarity:     sum.Clarity / n,
		Confidence:  sum.Confidence / n,
	}
}

func averageScore(evals []models.Evaluation) float64 {
	if len(evals) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range evals {
		total += e.Score
	}
	return total / float64(len(evals))
}

func difficultyTrend(history []string) string {
	if len(history) < 2 {
		return "stable"
	}
	first, last := difficultyRank(history[0]), difficultyRank(history[len(history)-1])
	switch {
	case last > first:
		return "improved"
	case last < first:
		return "declined"
	}
	return "stable"
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
