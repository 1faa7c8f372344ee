package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"saylo/internal/models"
)

// HistoryRepository stores completed interview sessions on the interview
// service.
type HistoryRepository struct {
	DB *gorm.DB
}

// Create is idempotent per session id.
func (r *HistoryRepository) Create(history *models.InterviewHistory) error {
	var existing models.InterviewHistory

	err := r.DB.Where("session_id = ?", history.SessionID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.DB.Create(history).Error
}

// List returns the most recently ended sessions. A non-positive limit returns
// everything.
func (r *HistoryRepository) List(limit int) ([]models.InterviewHistory, error) {
	histories := []models.InterviewHistory{}
	q := r.DB.Order("ended_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&histories).Error
	return histories, err
}

func (r *HistoryRepository) GetBySessionID(sessionID string) (*models.InterviewHistory, error) {
	var history models.InterviewHistory
	if err := r.DB.Where("session_id = ?", sessionID).First(&history).Error; err != nil {
		return nil, err
	}
	return &history, nil
}

// ListUnexported returns sessions with feedback that the transcript exporter
// has not written yet, oldest first.
func (r *HistoryRepository) ListUnexported(limit int) ([]models.InterviewHistory, error) {
	histories := []models.InterviewHistory{}
	q := r.DB.Where("exported = ? AND feedback IS NOT NULL", false).Order("ended_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&histories).Error
	return histories, err
}

func (r *HistoryRepository) MarkExported(ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&models.InterviewHistory{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"exported": true, "exported_at": at}).Error
}
