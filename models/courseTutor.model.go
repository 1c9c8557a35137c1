package models

import "gorm.io/gorm"

// CourseTutor links a tutor to a course. The unique index is scoped to live
// rows so a soft-deleted assignment never blocks re-assigning the same pair.
type CourseTutor struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"not null;index:idx_course_tutor_pair,unique,where:is_deleted = false"`
	TutorID   uint   `json:"tutor_id" gorm:"not null;index:idx_course_tutor_pair,unique"`
	IsDeleted bool   `gorm:"default:false"`
	Course    Course `json:"-" gorm:"foreignKey:CourseID"`
	Tutor     User   `json:"tutor" gorm:"foreignKey:TutorID"`
}
