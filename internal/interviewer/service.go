// Package interviewer runs the adaptive interview: it asks questions, scores
// answers, moves through the interview stages and writes final feedback. An
// LLM provider drives each step when configured; the local question bank and
// word-count heuristics take over whenever it is absent or fails.
package interviewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saylo/internal/events"
	"saylo/internal/llm"
	"saylo/internal/metrics"
	"saylo/internal/models"
	"saylo/internal/prompts"
	"saylo/internal/questionbank"
	"saylo/internal/utils"
)

const (
	DefaultMaxQuestions   = 5
	DefaultLLMTimeout     = 20 * time.Second
	minQuestionsBeforeEnd = 2
)

var (
	ErrSessionCompleted         = errors.New("interview session already completed")
	ErrTranscriptionUnavailable = errors.New("audio transcription is not configured")
	ErrEmptyTranscript          = errors.New("transcription returned no text")
)

// HistoryRecorder persists completed sessions.
type HistoryRecorder interface {
	Create(history *models.InterviewHistory) error
	List(limit int) ([]models.InterviewHistory, error)
}

// Deps are the collaborators of a Service. Provider, Transcriber, History and
// Publisher may be nil.
type Deps struct {
	Provider    llm.Provider
	Transcriber llm.Transcriber
	Prompts     prompts.PromptProvider
	Bank        questionbank.Bank
	Store       Store
	History     HistoryRecorder
	Publisher   events.Publisher
	Logger      *zap.Logger
}

type Options struct {
	MaxQuestions int
	LLMTimeout   time.Duration
}

type Service struct {
	provider    llm.Provider
	transcriber llm.Transcriber
	prompts     prompts.PromptProvider
	bank        questionbank.Bank
	store       Store
	history     HistoryRecorder
	publisher   events.Publisher
	logger      *zap.Logger
	opts        Options
	now         func() time.Time

	// per-session locks serialise answers for the same session
	locks sync.Map
}

func NewService(deps Deps, opts Options) *Service {
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxQuestions
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = DefaultLLMTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:    deps.Provider,
		transcriber: deps.Transcriber,
		prompts:     deps.Prompts,
		bank:        deps.Bank,
		store:       deps.Store,
		history:     deps.History,
		publisher:   deps.Publisher,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
	}
}

// ProviderName names the active provider, or "offline" without one.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "offline"
	}
	return s.provider.GetProviderName()
}

func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start opens a session and asks the first question.
func (s *Service) Start(ctx context.Context, req *models.StartInterviewRequest) (*models.StartInterviewResponse, error) {
	now := s.now()
	session := &models.InterviewSession{
		ID:                uuid.New().String(),
		InterviewID:       req.InterviewID,
		Role:              utils.NormalizeRole(req.Role),
		Difficulty:        req.Difficulty,
		Topic:             req.Topic,
		Stage:             models.StageIntroduction,
		DifficultyHistory: []string{req.Difficulty},
		StartedAt:         now,
		UpdatedAt:         now,
	}

	question, err := s.nextQuestion(ctx, session, "opening", "")
	if err != nil {
		return nil, err
	}
	s.ask(session, question)

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	metrics.InterviewsStarted.WithLabelValues(session.Difficulty).Inc()
	metrics.ActiveSessions.Inc()
	s.logger.Info("interview started",
		zap.String("session_id", session.ID),
		zap.String("role", session.Role),
		zap.String("difficulty", session.Difficulty),
		zap.String("provider", s.ProviderName()))

	return &models.StartInterviewResponse{
		SessionID:  session.ID,
		Message:    question.Text,
		QuestionID: question.ID,
		Stage:      session.Stage,
	}, nil
}

// Answer records an answer to the current question and either asks the next
// question or completes the interview.
func (s *Service) Answer(ctx context.Context, sessionID, answer string, nonVerbal *models.NonVerbalMetrics) (*models.ChatResponse, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionCompleted
	}

	metrics.AnswersReceived.WithLabelValues("text").Inc()
	question := session.CurrentQuestion()
	answer = strings.TrimSpace(answer)
	session.History = append(session.History, models.TranscriptEntry{
		Role:       models.TranscriptRoleUser,
		Content:    answer,
		QuestionID: session.CurrentQuestionID,
	})
	if nonVerbal != nil {
		session.Metrics = append(session.Metrics, *nonVerbal)
	}

	eval := s.evaluate(ctx, session, question, answer)
	applyEvaluation(session, eval, s.opts.MaxQuestions)
	session.UpdatedAt = s.now()

	if shouldComplete(session, eval, s.opts.MaxQuestions) {
		s.complete(ctx, session, events.ReasonCompleted)
		if err := s.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		s.finalize(ctx, session, events.ReasonCompleted)
		return &models.ChatResponse{
			IsCompleted: true,
			Evaluation:  &eval,
			Feedback:    session.Feedback,
		}, nil
	}

	directive := eval.NextFocus
	if directive == "" {
		directive = "Move to new topic"
	}
	next := s.cannedFollowUp(session, answer, directive)
	if next == nil {
		if next, err = s.nextQuestion(ctx, session, "follow_up", directive); err != nil {
			return nil, err
		}
	}
	s.ask(session, next)

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &models.ChatResponse{
		NextQuestion: next.Text,
		QuestionID:   next.ID,
		Stage:        session.Stage,
		Evaluation:   &eval,
	}, nil
}

// AnswerAudio transcribes a spoken answer and then answers with the
// transcript.
func (s *Service) AnswerAudio(ctx context.Context, sessionID string, audio []byte, mimeType string, nonVerbal *models.NonVerbalMetrics) (*models.ChatResponse, error) {
	if s.transcriber == nil {
		return nil, ErrTranscriptionUnavailable
	}
	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, s.opts.LLMTimeout)
	defer cancel()
	start := time.Now()
	transcript, err := s.transcriber.Transcribe(tctx, audio, mimeType)
	metrics.ObserveLLM("transcribe", start, err)
	if err != nil {
		return nil, fmt.Errorf("transcribe answer: %w", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}

	metrics.AnswersReceived.WithLabelValues("audio").Inc()
	resp, err := s.Answer(ctx, sessionID, transcript, nonVerbal)
	if err != nil {
		return nil, err
	}
	resp.Transcript = transcript
	return resp, nil
}

// End completes a session early. Ending an already completed session returns
// its existing feedback.
func (s *Service) End(ctx context.Context, sessionID string) (*models.Feedback, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return session.Feedback, nil
	}
	return s.endLocked(ctx, session, events.ReasonEnded)
}

func (s *Service) endLocked(ctx context.Context, session *models.InterviewSession, reason string) (*models.Feedback, error) {
	s.complete(ctx, session, reason)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.finalize(ctx, session, reason)
	return session.Feedback, nil
}

// History lists recently completed sessions, newest first.
func (s *Service) History(_ context.Context, limit int) ([]models.HistoryItem, error) {
	if s.history == nil {
		return []models.HistoryItem{}, nil
	}
	records, err := s.history.List(limit)
	if err != nil {
		return nil, err
	}
	items := make([]models.HistoryItem, 0, len(records))
	for i := range records {
		items = append(items, records[i].ToHistoryItem())
	}
	return items, nil
}

// ReapIdle ends sessions with no activity since the cutoff and returns how
// many were ended.
func (s *Service) ReapIdle(ctx context.Context, idleFor time.Duration) (int, error) {
	idle, err := s.store.ListIdle(ctx, s.now().Add(-idleFor))
	if err != nil {
		return 0, err
	}
	reaped := 0
	for _, candidate := range idle {
		unlock := s.lock(candidate.ID)
		// reload under the lock, an answer may have arrived meanwhile
		session, err := s.store.Get(ctx, candidate.ID)
		if err == nil && !session.Completed && session.UpdatedAt.Equal(candidate.UpdatedAt) {
			if _, err = s.endLocked(ctx, session, events.ReasonAbandoned); err == nil {
				reaped++
			}
		}
		unlock()
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("failed to reap idle session", zap.String("session_id", candidate.ID), zap.Error(err))
		}
	}
	return reaped, nil
}

func (s *Service) ask(session *models.InterviewSession, q *questionbank.Question) {
	session.CurrentQuestionID = q.ID
	session.AskedQuestions = append(session.AskedQuestions, q.Text)
	session.History = append(session.History, models.TranscriptEntry{
		Role:       models.TranscriptRoleAI,
		Content:    q.Text,
		QuestionID: q.ID,
	})
}

// complete marks the session finished and attaches final feedback when any
// answer was given.
func (s *Service) complete(ctx context.Context, session *models.InterviewSession, reason string) {
	now := s.now()
	session.Completed = true
	session.EndedAt = &now
	session.UpdatedAt = now
	if session.AnswerCount() > 0 {
		session.Feedback = s.finalFeedback(ctx, session)
	}
	metrics.InterviewsCompleted.WithLabelValues(reason).Inc()
	metrics.ActiveSessions.Dec()
}

// finalize records history and announces the end of the session. Both are
// best effort.
func (s *Service) finalize(ctx context.Context, session *models.InterviewSession, reason string) {
	defer s.locks.Delete(session.ID)

	endedAt := s.now()
	if session.EndedAt != nil {
		endedAt = *session.EndedAt
	}

	if s.history != nil {
		record := &models.InterviewHistory{
			SessionID:     session.ID,
			InterviewID:   session.InterviewID,
			Role:          session.Role,
			Difficulty:    session.Difficulty,
			Topic:         session.Topic,
			QuestionCount: session.AnswerCount(),
			Transcript:    session.History,
			Feedback:      session.Feedback,
			StartedAt:     session.StartedAt,
			EndedAt:       endedAt,
			DurationSec:   int(endedAt.Sub(session.StartedAt).Seconds()),
		}
		if err := s.history.Create(record); err != nil {
			s.logger.Error("failed to record interview history", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := events.SessionEnded{
			SessionID:     session.ID,
			InterviewID:   session.InterviewID,
			Role:          session.Role,
			Difficulty:    session.Difficulty,
			Topic:         session.Topic,
			QuestionCount: session.AnswerCount(),
			Reason:        reason,
			Feedback:      session.Feedback,
			Metrics:       AverageMetrics(session.Metrics),
			StartedAt:     session.StartedAt,
			EndedAt:       endedAt,
		}
		if err := s.publisher.PublishSessionEnded(ctx, event); err != nil {
			s.logger.Warn("failed to publish session_ended", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	s.logger.Info("interview finished",
		zap.String("session_id", session.ID),
		zap.String("reason", reason),
		zap.Int("answers", session.AnswerCount()))
}

type questionPromptData struct {
	Role              string
	Difficulty        string
	Stage             string
	Topic             string
	StrongAreas       []string
	WeakAreas         []string
	PreviousQuestions []string
	Directive         string
	LastQuestion      string
}

type evaluatePromptData struct {
	Role          string
	Difficulty    string
	Stage         string
	QuestionCount int
	WeakAreas     []string
	StrongAreas   []string
	Question      string
	Answer        string
}

type feedbackPromptData struct {
	Role              string
	DifficultyHistory []string
	QuestionCount     int
	StrongAreas       []string
	WeakAreas         []string
	CriticalMistakes  []string
	AverageScore      float64
	Metrics           *models.NonVerbalMetrics
}

// generate runs one provider call under the configured timeout.
func (s *Service) generate(ctx context.Context, step, mode, variant string, data interface{}) (string, error) {
	if s.provider == nil {
		return "", errors.New("no llm provider configured")
	}
	prompt, err := s.prompts.BuildPrompt(mode, variant, data)
	if err != nil {
		return "", err
	}
	cctx, cancel := context.WithTimeout(ctx, s.opts.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.GenerateContent(cctx, prompt, uuid.New().String())
	metrics.ObserveLLM(step, start, err)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *Service) fallback(step string, session *models.InterviewSession, err error) {
	metrics.LLMFallbacks.WithLabelValues(step).Inc()
	if s.provider != nil {
		s.logger.Warn("llm step failed, using local fallback",
			zap.String("step", step),
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

// nextQuestion asks the provider for a question and falls back to the bank.
func (s *Service) nextQuestion(ctx context.Context, session *models.InterviewSession, variant, directive string) (*questionbank.Question, error) {
	data := questionPromptData{
		Role:              session.Role,
		Difficulty:        session.Difficulty,
		Stage:             session.Stage,
		Topic:             session.Topic,
		StrongAreas:       session.StrongAreas,
		WeakAreas:         session.WeakAreas,
		PreviousQuestions: session.AskedQuestions,
		Directive:         directive,
		LastQuestion:      session.CurrentQuestion(),
	}
	text, err := s.generate(ctx, "question", "question", variant, data)
	if err == nil {
		if q := cleanQuestion(text); q != "" {
			return &questionbank.Question{ID: uuid.New().String(), Text: q, Stage: session.Stage, Difficulty: session.Difficulty}, nil
		}
		err = errors.New("empty question from provider")
	}
	s.fallback("question", session, err)

	q, err := s.bank.Next(ctx, questionbank.Query{
		Stage:      session.Stage,
		Difficulty: session.Difficulty,
		Exclude:    session.AskedQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("pick fallback question: %w", err)
	}
	return q, nil
}

// cannedFollowUp drills into the last answer without an LLM. Each canned
// follow-up is asked at most once per session.
func (s *Service) cannedFollowUp(session *models.InterviewSession, answer, directive string) *questionbank.Question {
	if s.provider != nil || !strings.Contains(strings.ToLower(directive), "drill") {
		return nil
	}
	text := FollowUpFor(answer)
	if text == "" {
		return nil
	}
	for _, asked := range session.AskedQuestions {
		if strings.EqualFold(asked, text) {
			return nil
		}
	}
	return &questionbank.Question{ID: uuid.New().String(), Text: text, Stage: session.Stage, Difficulty: session.Difficulty}
}

// cleanQuestion keeps the first paragraph of a generated question.
func cleanQuestion(text string) string {
	text = utils.StripFences(text)
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = text[:i]
	}
	return strings.Trim(strings.TrimSpace(text), `"`)
}

type evaluationJSON struct {
	Score           float64 `json:"score"`
	Classification  string  `json:"classification"`
	CriticalMistake *string `json:"critical_mistake"`
	DifficultyTrend string  `json:"difficulty_trend"`
	NextFocus       string  `json:"next_focus"`
	StageChange     *string `json:"stage_change"`
	EndInterview    bool    `json:"end_interview"`
	Comment         string  `json:"comment"`
}

func (s *Service) evaluate(ctx context.Context, session *models.InterviewSession, question, answer string) models.Evaluation {
	if answer == "" {
		return HeuristicEvaluation(question, answer)
	}
	data := evaluatePromptData{
		Role:          session.Role,
		Difficulty:    session.Difficulty,
		Stage:         session.Stage,
		QuestionCount: session.AnswerCount(),
		WeakAreas:     session.WeakAreas,
		StrongAreas:   session.StrongAreas,
		Question:      question,
		Answer:        answer,
	}
	text, err := s.generate(ctx, "evaluate", "evaluate", "default", data)
	if err == nil {
		var eval models.Evaluation
		if eval, err = parseEvaluation(text); err == nil {
			return eval
		}
	}
	s.fallback("evaluate", session, err)
	return HeuristicEvaluation(question, answer)
}

func parseEvaluation(text string) (models.Evaluation, error) {
	raw, ok := utils.ExtractJSONObject(text)
	if !ok {
		return models.Evaluation{}, errors.New("no JSON object in evaluation")
	}
	var parsed evaluationJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return models.Evaluation{}, fmt.Errorf("decode evaluation: %w", err)
	}
	eval := models.Evaluation{
		Score:           max(1, min(parsed.Score, 10)),
		Classification:  strings.ToLower(parsed.Classification),
		DifficultyTrend: strings.ToLower(parsed.DifficultyTrend),
		NextFocus:       parsed.NextFocus,
		EndInterview:    parsed.EndInterview,
		Comment:         parsed.Comment,
	}
	if eval.Classification != "strong" && eval.Classification != "weak" {
		eval.Classification = "weak"
		if eval.Score >= 7 {
			eval.Classification = "strong"
		}
	}
	if parsed.CriticalMistake != nil && !strings.EqualFold(*parsed.CriticalMistake, "null") {
		eval.CriticalMistake = strings.TrimSpace(*parsed.CriticalMistake)
	}
	if parsed.StageChange != nil && models.ValidStages[*parsed.StageChange] {
		eval.StageChange = *parsed.StageChange
	}
	return eval, nil
}

type feedbackJSON struct {
	OverallScore    float64  `json:"overall_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	DifficultyTrend string   `json:"difficulty_trend"`
	ImprovementTips []string `json:"improvement_tips"`
	FinalVerdict    string   `json:"final_verdict"`
}

func (s *Service) finalFeedback(ctx context.Context, session *models.InterviewSession) *models.Feedback {
	nonVerbal := AverageMetrics(session.Metrics)
	data := feedbackPromptData{
		Role:              session.Role,
		DifficultyHistory: session.DifficultyHistory,
		QuestionCount:     session.AnswerCount(),
		StrongAreas:       session.StrongAreas,
		WeakAreas:         session.WeakAreas,
		CriticalMistakes:  session.CriticalMistakes,
		AverageScore:      averageScore(session.Evaluations),
		Metrics:           nonVerbal,
	}
	text, err := s.generate(ctx, "feedback", "final_feedback", "default", data)
	if err == nil {
		var fb *models.Feedback
		if fb, err = parseFeedback(text); err == nil {
			fb.Metrics = nonVerbal
			fb.Recommendations = append(fb.Recommendations, TipsFromMetrics(nonVerbal)...)
			return fb
		}
	}
	s.fallback("feedback", session, err)
	return HeuristicFeedback(session, nonVerbal)
}

func parseFeedback(text string) (*models.Feedback, error) {
	raw, ok := utils.ExtractJSONObject(text)
	if !ok {
		return nil, errors.New("no JSON object in feedback")
	}
	var parsed feedbackJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	fb := &models.Feedback{
		OverallScore:     parsed.OverallScore,
		Strengths:        parsed.Strengths,
		Weaknesses:       parsed.Weaknesses,
		DetailedFeedback: parsed.FinalVerdict,
		Recommendations:  parsed.ImprovementTips,
		DifficultyTrend:  parsed.DifficultyTrend,
		FinalVerdict:     parsed.FinalVerdict,
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	return fb, nil
}
