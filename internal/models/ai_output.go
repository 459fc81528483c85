package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIOutputModel is the persisted result of a completed AI job. A row exists
// if and only if its job reached completed; content is the job-type-specific
// payload serialized as JSON (see the ai module's OutputContent union).
type AIOutputModel struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string         `json:"user_id"     gorm:"index;not null"`
	SessionID  string         `json:"session_id"  gorm:"index;not null"`
	JobID      string         `json:"job_id"      gorm:"uniqueIndex;not null"`
	OutputType JobType        `json:"output_type" gorm:"not null"`
	Content    JSON           `json:"content"     gorm:"type:json;not null"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (AIOutputModel) TableName() string { return "ai_outputs" }

func (o *AIOutputModel) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
