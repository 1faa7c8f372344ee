package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"saylo/internal/models"
)

// RecordAttacher stores real interview feedback on a backend interview record.
type RecordAttacher interface {
	AttachFeedback(recordID uint, feedback *models.RecordFeedback, metrics *models.RecordMetrics) error
}

// FeedbackSubscriber listens for session_ended events and copies the
// interviewer's feedback onto the linked backend interview record.
type FeedbackSubscriber struct {
	rdb        *redis.Client
	records    RecordAttacher
	logger     *zap.Logger
	instanceID string
}

func NewFeedbackSubscriber(rdb *redis.Client, records RecordAttacher, logger *zap.Logger) *FeedbackSubscriber {
	return &FeedbackSubscriber{
		rdb:        rdb,
		records:    records,
		logger:     logger,
		instanceID: uuid.New().String()[:8],
	}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (fs *FeedbackSubscriber) Run(ctx context.Context) {
	subscriber := fs.rdb.Subscribe(ctx, ChannelSessionEnded)
	defer subscriber.Close()
	ch := subscriber.Channel()

	fs.logger.Info("subscribed to session_ended events", zap.String("instance", fs.instanceID))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fs.handle(msg.Payload)
		}
	}
}

func (fs *FeedbackSubscriber) handle(payload string) {
	var event SessionEnded
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		fs.logger.Warn("failed to unmarshal session_ended event", zap.Error(err))
		return
	}
	if event.InterviewID == "" || event.Feedback == nil {
		return
	}
	recordID, err := strconv.ParseUint(event.InterviewID, 10, 64)
	if err != nil {
		fs.logger.Warn("session_ended carries a non-numeric interview id",
			zap.String("session_id", event.SessionID),
			zap.String("interview_id", event.InterviewID))
		return
	}

	var metrics *models.RecordMetrics
	if event.Metrics != nil {
		metrics = event.Metrics.ToRecordMetrics()
	}
	if err := fs.records.AttachFeedback(uint(recordID), event.Feedback.ToRecordFeedback(), metrics); err != nil {
		fs.logger.Error("failed to attach feedback to interview record",
			zap.String("session_id", event.SessionID),
			zap.Uint64("interview_id", recordID),
			zap.Error(err))
		return
	}
	fs.logger.Info("attached interview feedback",
		zap.String("instance", fs.instanceID),
		zap.String("session_id", event.SessionID),
		zap.Uint64("interview_id", recordID))
}
