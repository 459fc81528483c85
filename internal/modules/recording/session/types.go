package session

import "github.com/interview-replay/core/internal/models"

// CreateSessionDTO creates a session shell before its media is uploaded.
type CreateSessionDTO struct {
	Title       string           `json:"title"       binding:"required,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Kind        models.MediaKind `json:"kind"        binding:"required,oneof=audio video"`
	DurationMs  int64            `json:"duration_ms" binding:"min=0"`
}

// UpdateSessionDTO is a partial metadata update. Media and kind are fixed
// once the session exists.
type UpdateSessionDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DurationMs  *int64  `json:"duration_ms"`
}

// MediaURLResponse carries a presigned playback URL and its lifetime.
type MediaURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}
