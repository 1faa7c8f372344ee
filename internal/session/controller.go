package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"saylo/internal/models"
	"saylo/internal/proctoring"
)

const (
	DefaultQuestionDuration = 90 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
)

// Camera opens the capture device for a new session.
type Camera func() (proctoring.FrameSource, error)

type Options struct {
	QuestionDuration time.Duration
	RequestTimeout   time.Duration
	Topic            string

	// Camera and Detector enable proctoring when both are set.
	Camera   Camera
	Detector proctoring.DetectorLoader

	// OnChange receives a snapshot after every state change. It is called
	// without internal locks held and may call State. It also runs on the
	// countdown goroutine, where calling ResetInterview or Close deadlocks;
	// hand those off to another goroutine.
	OnChange func(State)
	Logger   *zap.Logger
}

// Controller owns one interview attempt. All mutation goes through its
// methods; callers read snapshots through State.
type Controller struct {
	service QuestionService
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	submitting atomic.Bool
	timer      *countdown

	mu      sync.Mutex
	state   State
	epoch   uint64
	sampler *proctoring.Sampler
	// stopSampler cancels the sampler task; samplerDone closes when it exits.
	stopSampler context.CancelFunc
	samplerDone chan struct{}
	// autoCtx carries timeout auto-submits. Only reset cancels it, so ending
	// the interview does not abort an answer already on its way.
	autoCtx    context.Context
	cancelAuto context.CancelFunc
}

func New(service QuestionService, opts Options) *Controller {
	if opts.QuestionDuration <= 0 {
		opts.QuestionDuration = DefaultQuestionDuration
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if strings.TrimSpace(opts.Topic) == "" {
		opts.Topic = models.DefaultTopic
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{
		service: service,
		opts:    opts,
		logger:  opts.Logger,
		now:     time.Now,
		state:   State{Phase: PhaseIdle},
	}
	c.autoCtx, c.cancelAuto = context.WithCancel(context.Background())
	c.timer = newCountdown(int(opts.QuestionDuration/time.Second), func(int) { c.notify() }, c.expire)
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Questions = append([]Question(nil), c.state.Questions...)
	s.TimeLeft = c.timer.remaining()
	s.IsSubmitting = c.submitting.Load()
	if c.sampler != nil {
		s.ProctoringEnabled = c.sampler.Enabled()
		s.Counters = c.sampler.Counters()
	}
	return s
}

func (c *Controller) GoToSetup() error {
	return c.transition("go to setup", PhaseIdle, PhaseSetup)
}

func (c *Controller) ShowInstructions() error {
	return c.transition("show instructions", PhaseSetup, PhaseInstructions)
}

func (c *Controller) transition(op string, from, to Phase) error {
	c.mu.Lock()
	if c.state.Phase != from {
		phase := c.state.Phase
		c.mu.Unlock()
		return phaseError(op, phase)
	}
	c.state.Phase = to
	c.mu.Unlock()
	c.notify()
	return nil
}

// StartInterview asks the service for a session and its first question. On
// failure the phase is unchanged and State.Error describes the problem.
func (c *Controller) StartInterview(ctx context.Context, role, difficulty string) error {
	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}

	c.mu.Lock()
	switch c.state.Phase {
	case PhaseIdle, PhaseSetup, PhaseInstructions:
	default:
		phase := c.state.Phase
		c.mu.Unlock()
		c.submitting.Store(false)
		return phaseError("start interview", phase)
	}
	c.state.Role = role
	c.state.Difficulty = difficulty
	c.state.Topic = c.opts.Topic
	c.state.Error = ""
	epoch := c.epoch
	c.mu.Unlock()
	c.notify()

	callCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	res, err := c.service.StartInterview(callCtx, role, difficulty, c.opts.Topic)
	cancel()
	if err == nil {
		err = res.Validate()
	}

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrSessionReset
	}
	c.submitting.Store(false)
	if err != nil {
		c.state.Error = userMessage("Failed to start interview", err)
		c.mu.Unlock()
		c.logger.Warn("failed to start interview", zap.String("role", role), zap.Error(err))
		c.notify()
		return err
	}

	c.state.Phase = PhaseLive
	c.state.SessionID = res.SessionID
	c.state.Questions = []Question{{ID: res.QuestionID, Text: res.Question, Category: res.Stage}}
	c.state.CurrentIndex = 0
	c.state.Answer = ""
	c.state.Feedback = nil
	c.state.StartedAt = c.now()
	c.state.EndedAt = nil
	c.timer.restart()
	c.startProctoringLocked()
	c.mu.Unlock()

	c.logger.Info("interview started", zap.String("session_id", res.SessionID), zap.String("role", role))
	c.notify()
	return nil
}

// SetAnswer replaces the buffered answer text used by the timer auto-submit.
func (c *Controller) SetAnswer(text string) {
	c.mu.Lock()
	if c.state.Phase != PhaseLive {
		c.mu.Unlock()
		return
	}
	c.state.Answer = text
	c.mu.Unlock()
	c.notify()
}

// SubmitAnswer sends the answer to the current question. When metrics is
// nil and proctoring is running, the aggregated proctoring metrics are sent.
func (c *Controller) SubmitAnswer(ctx context.Context, answer string, metrics *models.NonVerbalMetrics) error {
	return c.submit(ctx, answer, metrics, func(ctx context.Context, sessionID string, m *models.NonVerbalMetrics) (*AnswerResult, error) {
		return c.service.SubmitAnswer(ctx, sessionID, answer, m)
	})
}

// SubmitAudioAnswer sends a recorded answer. The service's transcript becomes
// the recorded answer text.
func (c *Controller) SubmitAudioAnswer(ctx context.Context, audio []byte, mimeType string, metrics *models.NonVerbalMetrics) error {
	return c.submit(ctx, "", metrics, func(ctx context.Context, sessionID string, m *models.NonVerbalMetrics) (*AnswerResult, error) {
		return c.service.SubmitAudioAnswer(ctx, sessionID, audio, mimeType, m)
	})
}

type submitFunc func(ctx context.Context, sessionID string, metrics *models.NonVerbalMetrics) (*AnswerResult, error)

func (c *Controller) submit(ctx context.Context, answer string, metrics *models.NonVerbalMetrics, call submitFunc) error {
	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}

	c.mu.Lock()
	if c.state.Phase != PhaseLive {
		phase := c.state.Phase
		c.mu.Unlock()
		c.submitting.Store(false)
		return phaseError("submit answer", phase)
	}
	index := c.state.CurrentIndex
	c.state.Questions[index].UserAnswer = answer
	c.state.Error = ""
	c.timer.pause()
	if metrics == nil && c.sampler != nil && c.sampler.Enabled() {
		m := proctoring.Aggregate(c.sampler.Counters())
		metrics = &m
	}
	sessionID := c.state.SessionID
	epoch := c.epoch
	c.mu.Unlock()
	c.notify()

	callCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	res, err := call(callCtx, sessionID, metrics)
	cancel()
	if err == nil {
		err = res.Validate()
	}

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrSessionReset
	}
	c.submitting.Store(false)

	if c.state.Phase != PhaseLive {
		// ended while the request was in flight
		c.mu.Unlock()
		c.notify()
		return nil
	}
	if err != nil {
		c.state.Error = userMessage("Failed to submit answer", err)
		c.timer.resume()
		c.mu.Unlock()
		c.logger.Warn("failed to submit answer", zap.String("session_id", sessionID), zap.Error(err))
		c.notify()
		return err
	}

	if res.Transcript != "" {
		c.state.Questions[index].UserAnswer = res.Transcript
	}
	c.state.Answer = ""

	if res.Completed != nil {
		c.state.Feedback = res.Completed.Feedback
		c.completeLocked()
		c.mu.Unlock()
		c.logger.Info("interview completed", zap.String("session_id", sessionID))
		c.notify()
		return nil
	}

	next := res.Next
	c.state.Questions = append(c.state.Questions, Question{ID: next.ID, Text: next.Text, Category: next.Stage})
	c.state.CurrentIndex = len(c.state.Questions) - 1
	c.timer.restart()
	c.mu.Unlock()
	c.notify()
	return nil
}

// expire runs on the timer task when the countdown reaches zero. The submit
// uses autoCtx rather than the task context, which EndInterview cancels.
func (c *Controller) expire(context.Context) {
	c.mu.Lock()
	answer := c.state.Answer
	ctx := c.autoCtx
	c.mu.Unlock()

	err := c.SubmitAnswer(ctx, answer, nil)
	switch {
	case err == nil, errors.Is(err, ErrSessionReset):
	case errors.Is(err, ErrSubmissionInFlight):
		// a manual submit got there first; if it fails the timer expires again
		c.timer.rearm()
	default:
		c.logger.Debug("auto-submit on timeout failed", zap.Error(err))
	}
}

// EndInterview completes a live interview immediately. The service is told
// best effort; a failure is recorded in State.Error and returned, but the
// interview stays completed.
func (c *Controller) EndInterview(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != PhaseLive {
		phase := c.state.Phase
		c.mu.Unlock()
		return phaseError("end interview", phase)
	}
	c.completeLocked()
	sessionID := c.state.SessionID
	epoch := c.epoch
	c.mu.Unlock()
	c.notify()

	callCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	feedback, err := c.service.EndInterview(callCtx, sessionID)
	cancel()

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrSessionReset
	}
	if err != nil {
		c.state.Error = userMessage("Failed to end interview", err)
	} else if feedback != nil && c.state.Feedback == nil {
		c.state.Feedback = feedback
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Warn("failed to end interview", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

// completeLocked moves to completed and stops the timer and sampler.
func (c *Controller) completeLocked() {
	c.state.Phase = PhaseCompleted
	ended := c.now()
	c.state.EndedAt = &ended
	c.timer.stop()
	if c.stopSampler != nil {
		c.stopSampler()
		c.stopSampler = nil
	}
}

// ResetInterview tears down the timer and sampler, waits for both to exit and
// returns to idle with default configuration. Responses to requests still in
// flight are discarded.
func (c *Controller) ResetInterview() {
	c.mu.Lock()
	c.epoch++
	c.cancelAuto()
	c.autoCtx, c.cancelAuto = context.WithCancel(context.Background())
	timerDone := c.timer.reset()
	stop, samplerDone := c.stopSampler, c.samplerDone
	c.stopSampler, c.samplerDone, c.sampler = nil, nil, nil
	c.state = State{Phase: PhaseIdle}
	c.submitting.Store(false)
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if samplerDone != nil {
		<-samplerDone
	}
	<-timerDone
	c.notify()
}

// Close releases the timer, sampler and capture device.
func (c *Controller) Close() {
	c.ResetInterview()
}

func (c *Controller) History(ctx context.Context) ([]models.HistoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()
	return c.service.GetHistory(ctx)
}

func (c *Controller) startProctoringLocked() {
	if c.opts.Camera == nil || c.opts.Detector == nil {
		return
	}
	source, err := c.opts.Camera()
	if err != nil {
		c.logger.Warn("camera unavailable, proctoring disabled", zap.Error(err))
		return
	}

	sampler := proctoring.NewSampler(source, c.opts.Detector, c.logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.sampler = sampler
	c.stopSampler = cancel
	c.samplerDone = done

	go func() {
		defer close(done)
		if err := sampler.Run(ctx); err != nil {
			c.logger.Debug("proctoring stopped", zap.Error(err))
		}
	}()
}

func (c *Controller) notify() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.State())
	}
}

// userMessage renders err for display next to the action that failed.
func userMessage(action string, err error) string {
	var apiErr *models.ErrorResponse
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return action + ": the interview service did not respond in time. Please try again."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("%s: %s", action, apiErr.Message)
	default:
		return action + ". Please try again."
	}
}
