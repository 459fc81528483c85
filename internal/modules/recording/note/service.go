package note

import (
	"bytes"
	"errors"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

// UpsertNoteDTO replaces the whole session note. Last write wins.
type UpsertNoteDTO struct {
	Content string `json:"content"`
}

// NoteResponse is the note plus its rendered markdown.
type NoteResponse struct {
	*models.SessionNoteModel
	HTML string `json:"html"`
}

// Service manages the single free-form note each user keeps per session.
type Service struct {
	db *gorm.DB
	md goldmark.Markdown
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

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

// Get returns the caller's note for the session, or an empty note if none
// has been written yet.
func (s *Service) Get(userID, sessionID string) (*NoteResponse, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}

	var n models.SessionNoteModel
	err := s.db.First(&n, "user_id = ? AND session_id = ?", userID, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoteResponse{SessionNoteModel: &models.SessionNoteModel{UserID: userID, SessionID: sessionID}}, nil
		}
		return nil, err
	}
	return s.render(&n)
}

// Upsert replaces the note content, creating the row on first write.
func (s *Service) Upsert(userID, sessionID, content string) (*NoteResponse, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}

	var n models.SessionNoteModel
	err := s.db.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&n).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		n = models.SessionNoteModel{UserID: userID, SessionID: sessionID, Content: content}
		if err := s.db.Create(&n).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		n.Content = content
		if err := s.db.Model(&n).Update("content", content).Error; err != nil {
			return nil, err
		}
	}
	return s.render(&n)
}

// GetForSession returns the session owner's note without an ownership check.
// Share access calls this after the token has authorized the session.
func (s *Service) GetForSession(ownerID, sessionID string) (*NoteResponse, error) {
	var n models.SessionNoteModel
	err := s.db.First(&n, "user_id = ? AND session_id = ?", ownerID, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoteResponse{SessionNoteModel: &models.SessionNoteModel{UserID: ownerID, SessionID: sessionID}}, nil
		}
		return nil, err
	}
	return s.render(&n)
}

func (s *Service) render(n *models.SessionNoteModel) (*NoteResponse, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(n.Content), &buf); err != nil {
		return nil, err
	}
	return &NoteResponse{SessionNoteModel: n, HTML: buf.String()}, nil
}
