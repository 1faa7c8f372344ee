package models

const (
	DefaultTopic      = "General"
	DefaultDifficulty = "medium"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// interview stages, in the order the interviewer moves through them
const (
	StageIntroduction      = "introduction"
	StageTechnicalDeepDive = "technical_deep_dive"
	StageSoftSkills        = "soft_skills"
	StageClosing           = "closing"
)

const (
	TranscriptRoleAI   = "ai"
	TranscriptRoleUser = "user"
)

const (
	RecordStatusInProgress = "in-progress"
	RecordStatusCompleted  = "completed"
)

// contains all valid difficulty levels (in lowercase)
var ValidDifficulties = map[string]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

var ValidStages = map[string]bool{
	StageIntroduction:      true,
	StageTechnicalDeepDive: true,
	StageSoftSkills:        true,
	StageClosing:           true,
}

func ValidDifficultiesList() []string {
	return []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
}
