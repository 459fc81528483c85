package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookmarkModel is a timestamped marker into a session's recording.
// Canonical read order is timestamp_ms ascending; timestamps are not unique
// and never change after creation.
type BookmarkModel struct {
	Base
	SessionID   string  `json:"session_id"   gorm:"index;not null"`
	UserID      string  `json:"user_id"      gorm:"index;not null"`
	TimestampMs int64   `json:"timestamp_ms" gorm:"not null"`
	Label       string  `json:"label"        gorm:"not null"`
	Category    *string `json:"category"`
}

func (BookmarkModel) TableName() string { return "bookmarks" }

// BookmarkNoteModel is a free-form note attached to a bookmark.
// Notes are create/delete only and read in creation order.
type BookmarkNoteModel struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id"     gorm:"index;not null"`
	BookmarkID string    `json:"bookmark_id" gorm:"index;not null"`
	Content    string    `json:"content"     gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (BookmarkNoteModel) TableName() string { return "bookmark_notes" }

func (n *BookmarkNoteModel) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
