package models

// SessionNoteModel holds the single free-form note per (user, session) pair.
type SessionNoteModel struct {
	Base
	UserID    string `json:"user_id"    gorm:"uniqueIndex:idx_session_note_owner;not null"`
	SessionID string `json:"session_id" gorm:"uniqueIndex:idx_session_note_owner;not null"`
	Content   string `json:"content"    gorm:"type:text;not null"`
}

func (SessionNoteModel) TableName() string { return "session_notes" }
