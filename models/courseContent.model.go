package models

import "gorm.io/gorm"

// Content node types. A SECTION groups LESSON and ASSESSMENT nodes; any type
// may carry children, so each course owns a forest rather than a flat list.
const (
	ContentSection    = "SECTION"
	ContentLesson     = "LESSON"
	ContentAssessment = "ASSESSMENT"
)

// CourseContent is a node in the per-course content forest. ParentID is nil
// for root nodes; a non-nil parent must belong to the same course.
type CourseContent struct {
	gorm.Model
	CourseID      uint   `json:"course_id" gorm:"index;not null"`
	ParentID      *uint  `json:"parent_id" gorm:"index"`
	ContentType   string `json:"content_type" gorm:"not null"`
	Topic         string `json:"topic" gorm:"not null"`
	SequenceOrder int    `json:"sequence_order" gorm:"default:0"`
	IsDeleted     bool   `gorm:"default:false"`
	Course        Course `json:"-" gorm:"foreignKey:CourseID"`
}
