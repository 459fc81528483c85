package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType enumerates the kinds of AI analysis a session can request.
type JobType string

const (
	JobTranscript       JobType = "transcript"
	JobSummary          JobType = "summary"
	JobScore            JobType = "score"
	JobSuggestBookmarks JobType = "suggest_bookmarks"
)

// ValidJobType reports whether t is a known job type.
func ValidJobType(t JobType) bool {
	switch t {
	case JobTranscript, JobSummary, JobScore, JobSuggestBookmarks:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of an AI job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// Terminal reports whether s admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// AIJobModel is one queued unit of AI work against a session. Job rows are
// retained forever for the history view; there is no delete path and no
// soft-delete column. ErrorMessage is set exactly when the job is failed or
// cancelled. CausedBy links a retry to the job it replaces.
type AIJobModel struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"index;not null"`
	SessionID    string    `json:"session_id"    gorm:"index;not null"`
	JobType      JobType   `json:"job_type"      gorm:"not null"`
	Status       JobStatus `json:"status"        gorm:"not null;default:'queued';index"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	ErrorMessage *string   `json:"error_message"`
	CausedBy     *string   `json:"caused_by"     gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AIJobModel) TableName() string { return "ai_jobs" }

func (j *AIJobModel) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}
