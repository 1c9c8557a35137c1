package models

import "gorm.io/gorm"

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentDropped   = "DROPPED"
)

// Enrollment links a learner to a cohort. LastAccessedContentID is a weak
// pointer into the course content forest; deleting the referenced node nulls
// the pointer rather than cascading. The unique index is scoped to live rows
// so a dropped enrollment never blocks re-enrolling the same pair.
type Enrollment struct {
	gorm.Model
	UserID                uint           `json:"user_id" gorm:"not null;index:idx_cohort_learner_pair,unique,where:is_deleted = false"`
	CohortID              uint           `json:"cohort_id" gorm:"not null;index:idx_cohort_learner_pair,unique"`
	Status                string         `json:"status" gorm:"default:'ACTIVE'"`
	LastAccessedContentID *uint          `json:"last_accessed_content_id"`
	IsDeleted             bool           `gorm:"default:false"`
	Learner               User           `json:"learner" gorm:"foreignKey:UserID"`
	Cohort                Cohort         `json:"-" gorm:"foreignKey:CohortID"`
	LastAccessedContent   *CourseContent `json:"-" gorm:"foreignKey:LastAccessedContentID"`
}
