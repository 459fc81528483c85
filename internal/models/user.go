package models

import "time"

// UserModel represents an account that records and reviews sessions.
type UserModel struct {
	Base
	Username        string     `json:"username" gorm:"uniqueIndex;not null"`
	Name            string     `json:"name"`
	Mail            string     `json:"mail"     gorm:"uniqueIndex;not null"`
	Password        string     `json:"-"        gorm:"not null"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginTime   *time.Time `json:"last_login_time"`
	LastLoginIP     string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
