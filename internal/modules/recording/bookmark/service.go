package bookmark

import (
	"errors"
	"strings"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service owns bookmarks and their notes. Every accessor resolves ownership
// through the sessions table so rows under a deleted or foreign session are
// invisible.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ownedSession verifies the session exists and belongs to userID.
func (s *Service) ownedSession(userID, sessionID string) error {
	var count int64
	err := s.db.Model(&models.SessionModel{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperror.Authorization()
	}
	return nil
}

// List returns a session's bookmarks in canonical order: timestamp
// ascending, creation time as the tiebreak.
func (s *Service) List(userID, sessionID string) ([]models.BookmarkModel, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	var bookmarks []models.BookmarkModel
	err := s.db.Where("session_id = ?", sessionID).
		Order("timestamp_ms ASC, created_at ASC").
		Find(&bookmarks).Error
	return bookmarks, err
}

func (s *Service) Create(userID, sessionID string, dto *CreateBookmarkDTO) (*models.BookmarkModel, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	if dto.TimestampMs == nil || *dto.TimestampMs < 0 {
		return nil, apperror.Validation("timestamp_ms must be zero or positive")
	}
	label := strings.TrimSpace(dto.Label)
	if label == "" {
		return nil, apperror.Validation("label cannot be empty")
	}
	var category *string
	if dto.Category != nil {
		if trimmed := strings.TrimSpace(*dto.Category); trimmed != "" {
			category = &trimmed
		}
	}

	b := models.BookmarkModel{
		SessionID:   sessionID,
		UserID:      userID,
		TimestampMs: *dto.TimestampMs,
		Label:       label,
		Category:    category,
	}
	if err := s.db.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) get(userID, id string) (*models.BookmarkModel, error) {
	var b models.BookmarkModel
	err := s.db.Joins("JOIN sessions ON sessions.id = bookmarks.session_id AND sessions.deleted_at IS NULL").
		Where("bookmarks.id = ? AND sessions.user_id = ?", id, userID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authorization()
		}
		return nil, err
	}
	return &b, nil
}

// Update patches label and category. Timestamps never move. A patch with no
// fields returns the row unchanged.
func (s *Service) Update(userID, id string, dto *UpdateBookmarkDTO) (*models.BookmarkModel, error) {
	b, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Label != nil {
		label := strings.TrimSpace(*dto.Label)
		if label == "" {
			return nil, apperror.Validation("label cannot be empty")
		}
		updates["label"] = label
		b.Label = label
	}
	if dto.Category != nil {
		if trimmed := strings.TrimSpace(*dto.Category); trimmed == "" {
			updates["category"] = nil
			b.Category = nil
		} else {
			updates["category"] = trimmed
			b.Category = &trimmed
		}
	}
	if len(updates) == 0 {
		return b, nil
	}
	return b, s.db.Model(b).Updates(updates).Error
}

// Delete removes the bookmark and its notes.
func (s *Service) Delete(userID, id string) error {
	b, err := s.get(userID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bookmark_id = ?", b.ID).Delete(&models.BookmarkNoteModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
}

// ListNotes returns a bookmark's notes in creation order.
func (s *Service) ListNotes(userID, bookmarkID string) ([]models.BookmarkNoteModel, error) {
	if _, err := s.get(userID, bookmarkID); err != nil {
		return nil, err
	}
	var notes []models.BookmarkNoteModel
	err := s.db.Where("bookmark_id = ?", bookmarkID).
		Order("created_at ASC, id ASC").
		Find(&notes).Error
	return notes, err
}

func (s *Service) CreateNote(userID, bookmarkID string, dto *CreateNoteDTO) (*models.BookmarkNoteModel, error) {
	if _, err := s.get(userID, bookmarkID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		return nil, apperror.Validation("content cannot be empty")
	}

	n := models.BookmarkNoteModel{
		UserID:     userID,
		BookmarkID: bookmarkID,
		Content:    content,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Service) DeleteNote(userID, bookmarkID, noteID string) error {
	if _, err := s.get(userID, bookmarkID); err != nil {
		return err
	}
	res := s.db.Where("id = ? AND bookmark_id = ?", noteID, bookmarkID).
		Delete(&models.BookmarkNoteModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Authorization()
	}
	return nil
}

// ListForSession returns canonical-order bookmarks without an ownership
// check. Share access calls this after the token has authorized the session.
func (s *Service) ListForSession(sessionID string) ([]models.BookmarkModel, error) {
	var bookmarks []models.BookmarkModel
	err := s.db.Where("session_id = ?", sessionID).
		Order("timestamp_ms ASC, created_at ASC").
		Find(&bookmarks).Error
	return bookmarks, err
}
