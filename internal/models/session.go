package models

import "time"

// MediaKind indicates what kind of media a session records.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// SessionStatus tracks whether a session's media has been uploaded.
type SessionStatus string

const (
	SessionPendingMedia SessionStatus = "pending_media"
	SessionReady        SessionStatus = "ready"
)

// SessionModel is a recorded practice session owned by one user.
type SessionModel struct {
	Base
	UserID          string        `json:"user_id"     gorm:"index;not null"`
	Title           string        `json:"title"       gorm:"not null"`
	Description     string        `json:"description" gorm:"type:text"`
	Kind            MediaKind     `json:"kind"        gorm:"not null"`
	Status          SessionStatus `json:"status"      gorm:"not null;default:'pending_media'"`
	DurationMs      int64         `json:"duration_ms"`
	MediaPath       string        `json:"media_path"`
	MediaUploadedAt *time.Time    `json:"media_uploaded_at"`
}

func (SessionModel) TableName() string { return "sessions" }
