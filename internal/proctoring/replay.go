package proctoring

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// replayFrame is one line of a recorded landmark stream.
type replayFrame struct {
	TimestampMS int64   `json:"t_ms"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Face        bool    `json:"face"`
}

// JSONLFrameSource replays a recorded session: one JSON landmark per line.
// With Realtime set, frames are delivered at their recorded pace.
type JSONLFrameSource struct {
	Realtime bool

	closer  io.Closer
	scanner *bufio.Scanner
	line    int
	last    time.Duration
}

func NewJSONLFrameSource(r io.ReadCloser) *JSONLFrameSource {
	return &JSONLFrameSource{closer: r, scanner: bufio.NewScanner(r)}
}

// OpenJSONL opens a recording from disk.
func OpenJSONL(path string) (*JSONLFrameSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame recording: %w", err)
	}
	return NewJSONLFrameSource(f), nil
}

func (s *JSONLFrameSource) Next(ctx context.Context) (Frame, error) {
	for s.scanner.Scan() {
		s.line++
		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rf replayFrame
		if err := json.Unmarshal(raw, &rf); err != nil {
			return Frame{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		ts := time.Duration(rf.TimestampMS) * time.Millisecond
		if s.Realtime && ts > s.last {
			wait := time.NewTimer(ts - s.last)
			select {
			case <-ctx.Done():
				wait.Stop()
				return Frame{}, ctx.Err()
			case <-wait.C:
			}
		}
		s.last = max(s.last, ts)
		data := make([]byte, len(raw))
		copy(data, raw)
		return Frame{Timestamp: ts, Data: data}, nil
	}
	if err := s.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

func (s *JSONLFrameSource) Close() error {
	return s.closer.Close()
}

// ReplayDetector reads the landmark recorded in a JSONLFrameSource frame.
type ReplayDetector struct{}

func (ReplayDetector) Detect(_ context.Context, frame Frame) (Landmark, bool, error) {
	var rf replayFrame
	if err := json.Unmarshal(frame.Data, &rf); err != nil {
		return Landmark{}, false, err
	}
	if !rf.Face {
		return Landmark{}, false, nil
	}
	return Landmark{X: rf.X, Y: rf.Y}, true, nil
}

// LoadReplayDetector is a DetectorLoader for recorded sessions.
func LoadReplayDetector(context.Context) (LandmarkDetector, error) {
	return ReplayDetector{}, nil
}
