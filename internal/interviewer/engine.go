package interviewer

import (
	"strings"

	"saylo/internal/models"
)

var difficultyLadder = []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

var stageOrder = []string{
	models.StageIntroduction,
	models.StageTechnicalDeepDive,
	models.StageSoftSkills,
	models.StageClosing,
}

func difficultyRank(d string) int {
	for i, v := range difficultyLadder {
		if v == d {
			return i
		}
	}
	return 1
}

// shiftDifficulty moves one rung along easy, medium, hard and saturates at
// either end.
func shiftDifficulty(current, trend string) string {
	rank := difficultyRank(current)
	switch strings.ToLower(trend) {
	case "upgrade":
		rank++
	case "downgrade":
		rank--
	}
	rank = max(0, min(rank, len(difficultyLadder)-1))
	return difficultyLadder[rank]
}

func stageRank(stage string) int {
	for i, v := range stageOrder {
		if v == stage {
			return i
		}
	}
	return -1
}

// plannedStage is where the interview should be after `answered` answers out
// of maxQuestions.
func plannedStage(answered, maxQuestions int) string {
	switch {
	case answered <= 0:
		return models.StageIntroduction
	case answered >= maxQuestions-1:
		return models.StageClosing
	case float64(answered) >= float64(maxQuestions)*0.6:
		return models.StageSoftSkills
	}
	return models.StageTechnicalDeepDive
}

// nextStage never moves backwards. A stage change suggested by the
// evaluation wins when it is further along than the plan.
func nextStage(current, suggested string, answered, maxQuestions int) string {
	best := current
	for _, candidate := range []string{plannedStage(answered, maxQuestions), suggested} {
		if stageRank(candidate) > stageRank(best) {
			best = candidate
		}
	}
	return best
}

func areaLabel(stage string) string {
	return strings.ReplaceAll(stage, "_", " ")
}

// applyEvaluation folds one evaluation into the session bookkeeping.
func applyEvaluation(s *models.InterviewSession, eval models.Evaluation, maxQuestions int) {
	s.Evaluations = append(s.Evaluations, eval)

	area := areaLabel(s.Stage)
	if strings.EqualFold(eval.Classification, "strong") {
		s.StrongAreas = appendUnique(s.StrongAreas, area)
	} else {
		s.WeakAreas = appendUnique(s.WeakAreas, area)
	}
	if mistake := strings.TrimSpace(eval.CriticalMistake); mistake != "" {
		s.CriticalMistakes = append(s.CriticalMistakes, mistake)
	}

	if next := shiftDifficulty(s.Difficulty, eval.DifficultyTrend); next != s.Difficulty {
		s.Difficulty = next
		s.DifficultyHistory = append(s.DifficultyHistory, next)
	}
	s.Stage = nextStage(s.Stage, eval.StageChange, s.AnswerCount(), maxQuestions)
}

// shouldComplete reports whether the interview has asked enough questions or
// the evaluator asked to stop once the minimum has been reached.
func shouldComplete(s *models.InterviewSession, eval models.Evaluation, maxQuestions int) bool {
	answered := s.AnswerCount()
	if answered >= maxQuestions {
		return true
	}
	return eval.EndInterview && answered >= minQuestionsBeforeEnd
}
