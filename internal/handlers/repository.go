package handlers

import (
	"time"

	"saylo/internal/models"
)

// UserRepository captures the persistence operations required by handlers.
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
}

type ResumeRepository interface {
	Create(resume *models.Resume) error
	ListByUser(userID uint) ([]models.Resume, error)
	GetForUser(id, userID uint) (*models.Resume, error)
	LatestForUser(userID uint) (*models.Resume, error)
}

type InterviewRecordRepository interface {
	Create(record *models.InterviewRecord) error
	ListByUser(userID uint) ([]models.InterviewRecord, error)
	GetForUser(id, userID uint) (*models.InterviewRecord, error)
	End(id, userID uint, now time.Time) (*models.InterviewRecord, error)
}
