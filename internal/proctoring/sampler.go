// Package proctoring turns webcam frames into attention counters and folds
// them into the non-verbal metrics sent with every answer.
package proctoring

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Attention region: a landmark outside [attentionMin, attentionMax] on either
// axis counts as looking away.
const (
	attentionMin = 0.2
	attentionMax = 0.8
)

// Frame is one captured video frame. Timestamp is the presentation time
// reported by the capture device.
type Frame struct {
	Timestamp time.Duration
	Data      []byte
}

// FrameSource delivers frames at the rate the device produces them. Next
// blocks until a frame is available and returns io.EOF when the stream ends.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// Landmark is a normalized face reference point, both axes in [0,1].
type Landmark struct {
	X float64
	Y float64
}

// LandmarkDetector finds the reference landmark in a frame. ok is false when
// no face is visible.
type LandmarkDetector interface {
	Detect(ctx context.Context, frame Frame) (landmark Landmark, ok bool, err error)
}

// DetectorLoader loads the inference model backing a LandmarkDetector.
type DetectorLoader func(ctx context.Context) (LandmarkDetector, error)

// Counters are the running proctoring totals for one session.
type Counters struct {
	SamplesCount     int     `json:"samples_count"`
	LookingAwayCount int     `json:"looking_away_count"`
	TotalHeadDelta   float64 `json:"total_head_delta"`
}

// LookingAway reports whether the landmark falls outside the central region.
func LookingAway(l Landmark) bool {
	return l.X < attentionMin || l.X > attentionMax || l.Y < attentionMin || l.Y > attentionMax
}

// Sampler consumes a FrameSource and keeps Counters up to date. A Sampler
// serves a single session; build a new one after a reset.
type Sampler struct {
	source FrameSource
	load   DetectorLoader
	logger *zap.Logger

	mu       sync.Mutex
	counters Counters
	enabled  bool
	started  bool
	lastTS   time.Duration
	prev     *Landmark
}

func NewSampler(source FrameSource, load DetectorLoader, logger *zap.Logger) *Sampler {
	return &Sampler{source: source, load: load, logger: logger, enabled: true}
}

// Run samples frames until ctx is cancelled or the source ends, then closes
// the source. Detector and device failures disable the sampler and end Run
// without an error.
func (s *Sampler) Run(ctx context.Context) error {
	defer func() {
		if err := s.source.Close(); err != nil {
			s.logger.Debug("failed to close frame source", zap.Error(err))
		}
	}()

	detector, err := s.load(ctx)
	if err != nil {
		s.logger.Debug("landmark model unavailable, proctoring disabled", zap.Error(err))
		s.disable()
		return nil
	}

	for {
		frame, err := s.source.Next(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			s.logger.Warn("frame capture failed, proctoring disabled", zap.Error(err))
			s.disable()
			return nil
		}
		s.Observe(ctx, detector, frame)
	}
}

// Observe folds one frame into the counters. Frames whose timestamp has not
// advanced and frames without a face are skipped.
func (s *Sampler) Observe(ctx context.Context, detector LandmarkDetector, frame Frame) {
	s.mu.Lock()
	if !s.enabled || (s.started && frame.Timestamp <= s.lastTS) {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lastTS = frame.Timestamp
	s.mu.Unlock()

	landmark, ok, err := detector.Detect(ctx, frame)
	if err != nil {
		s.logger.Debug("landmark detection failed", zap.Duration("timestamp", frame.Timestamp), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if s.prev != nil {
		s.counters.TotalHeadDelta += math.Hypot(landmark.X-s.prev.X, landmark.Y-s.prev.Y)
	}
	s.prev = &landmark
	s.counters.SamplesCount++
	if LookingAway(landmark) {
		s.counters.LookingAwayCount++
	}
}

func (s *Sampler) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

func (s *Sampler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Sampler) disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}
