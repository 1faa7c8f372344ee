package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"saylo/internal/models"
)

// TranscriptSource is the slice of the history repository the exporter needs.
type TranscriptSource interface {
	ListUnexported(limit int) ([]models.InterviewHistory, error)
	MarkExported(ids []uint, at time.Time) error
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool
	BatchSize     int // 0 exports everything pending
}

// TranscriptExporterJob turns finished interview transcripts into JSONL
// training samples on a schedule.
type TranscriptExporterJob struct {
	source TranscriptSource
	config *ExporterConfig
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

func NewTranscriptExporterJob(source TranscriptSource, config *ExporterConfig, logger *zap.Logger) *TranscriptExporterJob {
	return &TranscriptExporterJob{
		source: source,
		config: config,
		cron:   cron.New(),
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the scheduled export job
func (j *TranscriptExporterJob) Start() error {
	if !j.config.ExportEnabled {
		j.logger.Info("transcript export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunExport(); err != nil {
			j.logger.Error("transcript export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("transcript exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

func (j *TranscriptExporterJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// RunExport performs a single export run and returns the written file path,
// or "" when nothing was written.
func (j *TranscriptExporterJob) RunExport() (string, error) {
	histories, err := j.source.ListUnexported(j.config.BatchSize)
	if err != nil {
		return "", fmt.Errorf("failed to list unexported transcripts: %w", err)
	}
	if len(histories) == 0 {
		j.logger.Debug("no unexported transcripts")
		return "", nil
	}

	ids := make([]uint, len(histories))
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	samples := 0
	for i := range histories {
		ids[i] = histories[i].ID
		point, ok := trainingPoint(&histories[i])
		if !ok {
			continue
		}
		if err := enc.Encode(point); err != nil {
			return "", fmt.Errorf("failed to encode transcript %s: %w", histories[i].SessionID, err)
		}
		samples++
	}

	var path string
	if samples > 0 {
		if err := os.MkdirAll(j.config.ExportDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
		now := j.now()
		path = filepath.Join(j.config.ExportDir, fmt.Sprintf("transcripts_%s.jsonl", now.Format("20060102_150405")))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("failed to write export file: %w", err)
		}
	}

	// sessions without usable answers are marked too so they are not retried
	if err := j.source.MarkExported(ids, j.now()); err != nil {
		return "", fmt.Errorf("failed to mark as exported: %w", err)
	}
	j.logger.Info("transcripts exported",
		zap.Int("sessions", len(histories)),
		zap.Int("samples", samples),
		zap.String("file", path))
	return path, nil
}

// trainingPoint pairs the rendered transcript with the feedback it earned.
func trainingPoint(h *models.InterviewHistory) (models.TrainingDataPoint, bool) {
	if h.Feedback == nil {
		return models.TrainingDataPoint{}, false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role: %s\nDifficulty: %s\nTopic: %s\n\n", h.Role, h.Difficulty, h.Topic)
	answers := 0
	for _, entry := range h.Transcript {
		switch entry.Role {
		case models.TranscriptRoleAI:
			fmt.Fprintf(&sb, "Interviewer: %s\n", entry.Content)
		case models.TranscriptRoleUser:
			fmt.Fprintf(&sb, "Candidate: %s\n", entry.Content)
			if strings.TrimSpace(entry.Content) != "" {
				answers++
			}
		}
	}
	if answers == 0 {
		return models.TrainingDataPoint{}, false
	}

	feedback, err := json.Marshal(h.Feedback)
	if err != nil {
		return models.TrainingDataPoint{}, false
	}
	return models.TrainingDataPoint{
		Contents: []models.TrainingContent{
			{Role: "user", Parts: []models.TrainingPart{{Text: strings.TrimSpace(sb.String())}}},
			{Role: "model", Parts: []models.TrainingPart{{Text: string(feedback)}}},
		},
	}, true
}
