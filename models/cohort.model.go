package models

import (
	"time"

	"gorm.io/gorm"
)

// Cohort is a scheduled offering of a course that learners enroll into.
type Cohort struct {
	gorm.Model
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	IsDeleted bool      `gorm:"default:false"`
	Course    Course    `json:"-" gorm:"foreignKey:CourseID"`
}
