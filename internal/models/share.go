package models

import "time"

// SessionShareModel is a bearer capability granting read-only access to one
// session. Possession of the token is the only credential; revocation is soft
// (is_active=false) and rows are never hard-deleted.
type SessionShareModel struct {
	Base
	SessionID  string     `json:"session_id"  gorm:"index;not null"`
	UserID     string     `json:"user_id"     gorm:"index;not null"`
	ShareToken string     `json:"share_token" gorm:"uniqueIndex;not null"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `json:"is_active"   gorm:"not null;default:true"`
}

func (SessionShareModel) TableName() string { return "session_shares" }
