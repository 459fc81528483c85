package bookmark

// CreateBookmarkDTO adds a marker to a session's timeline. TimestampMs is
// bound to the recording clock and is immutable once created.
type CreateBookmarkDTO struct {
	TimestampMs *int64  `json:"timestamp_ms" binding:"required"`
	Label       string  `json:"label"        binding:"required,max=200"`
	Category    *string `json:"category"`
}

// UpdateBookmarkDTO edits a bookmark's label or category. An empty patch is
// treated as a read of the current row.
type UpdateBookmarkDTO struct {
	Label    *string `json:"label"`
	Category *string `json:"category"`
}

// CreateNoteDTO attaches a note to a bookmark.
type CreateNoteDTO struct {
	Content string `json:"content" binding:"required"`
}
