package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. SUPER-ADMIN accounts are created only through the bootstrap
// endpoint, never through the normal user-creation API.
const (
	RoleSuperAdmin = "SUPER-ADMIN"
	RoleAdmin      = "ADMIN"
	RoleTutor      = "TUTOR"
	RoleLearner    = "LEARNER"
)

// Account statuses
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

type User struct {
	gorm.Model
	Name                 string     `gorm:"default:''"`
	Email                string     `gorm:"unique;not null"`
	Mobile               string     `gorm:"default:''"`
	Password             string     `json:"-" gorm:"not null"`
	Role                 string     `gorm:"default:'LEARNER'"`
	Status               string     `gorm:"default:'ACTIVE'"`
	Bio                  string     `gorm:"default:''"`
	LastLoginAt          *time.Time `json:"last_login_at"`
	ResetPasswordToken   string     `json:"-" gorm:"default:''"`
	ResetPasswordExpires *time.Time `json:"-"`
	IsDeleted            bool       `gorm:"default:false"`
}

// IsAdmin reports whether the user holds admin-level privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
