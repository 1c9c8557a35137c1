package models

import "gorm.io/gorm"

// Course difficulty levels
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

type Course struct {
	gorm.Model
	CreatorID   uint   `json:"creator_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty" gorm:"default:'BEGINNER'"`
	IsDeleted   bool   `gorm:"default:false"`
	Creator     User   `json:"-" gorm:"foreignKey:CreatorID"`
}
