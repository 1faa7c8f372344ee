package repositories

import (
	"errors"

	"gorm.io/gorm"

	"saylo/internal/models"
)

var ErrResumeNotFound = errors.New("resume not found")

type ResumeRepository struct {
	DB *gorm.DB
}

func (r *ResumeRepository) Create(resume *models.Resume) error {
	return r.DB.Create(resume).Error
}

// ListByUser returns the user's resumes, newest first.
func (r *ResumeRepository) ListByUser(userID uint) ([]models.Resume, error) {
	resumes := []models.Resume{}
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&resumes).Error
	return resumes, err
}

// GetForUser only returns a resume owned by userID.
func (r *ResumeRepository) GetForUser(id, userID uint) (*models.Resume, error) {
	var resume models.Resume
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *ResumeRepository) LatestForUser(userID uint) (*models.Resume, error) {
	var resume models.Resume
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").First(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}
