package models

import (
	"gorm.io/gorm"
)

// User represents a registered user in the system.
type User struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Avatar       string `json:"avatar,omitempty"`
}

// Resume is an uploaded resume and whatever the client parsed out of it.
type Resume struct {
	gorm.Model
	UserID     uint              `gorm:"not null;index" json:"userId"`
	FileName   string            `gorm:"not null" json:"fileName"`
	ParsedData *ParsedResumeData `gorm:"serializer:json" json:"parsedData,omitempty"`
}

type ParsedResumeData struct {
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Summary    string       `json:"summary,omitempty"`
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduationDate"`
}
