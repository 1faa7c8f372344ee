package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"saylo/internal/models"
)

var ErrRecordNotFound = errors.New("interview record not found")

// InterviewRecordRepository stores the backend's interview records.
type InterviewRecordRepository struct {
	DB *gorm.DB
}

func (r *InterviewRecordRepository) Create(record *models.InterviewRecord) error {
	return r.DB.Create(record).Error
}

func (r *InterviewRecordRepository) ListByUser(userID uint) ([]models.InterviewRecord, error) {
	records := []models.InterviewRecord{}
	err := r.DB.Where("user_id = ?", userID).Order("start_time DESC").Order("id DESC").Find(&records).Error
	return records, err
}

func (r *InterviewRecordRepository) GetForUser(id, userID uint) (*models.InterviewRecord, error) {
	var record models.InterviewRecord
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// End completes a record. Feedback attached earlier by the interview service
// is kept; otherwise the canned feedback and metrics are stored.
func (r *InterviewRecordRepository) End(id, userID uint, now time.Time) (*models.InterviewRecord, error) {
	record, err := r.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}
	record.Status = models.RecordStatusCompleted
	if record.EndTime == nil {
		record.EndTime = &now
	}
	if record.Feedback == nil {
		record.Feedback = models.CannedRecordFeedback()
	}
	if record.Metrics == nil {
		record.Metrics = models.CannedRecordMetrics()
	}
	if err := r.DB.Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// AttachFeedback stores real feedback from a finished interview session and
// completes the record.
func (r *InterviewRecordRepository) AttachFeedback(id uint, feedback *models.RecordFeedback, metrics *models.RecordMetrics) error {
	var record models.InterviewRecord
	if err := r.DB.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	record.Status = models.RecordStatusCompleted
	if record.EndTime == nil {
		now := time.Now()
		record.EndTime = &now
	}
	record.Feedback = feedback
	if metrics != nil {
		record.Metrics = metrics
	}
	return r.DB.Save(&record).Error
}
