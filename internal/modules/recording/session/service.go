package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"github.com/interview-replay/core/internal/pkg/pagination"
	"github.com/interview-replay/core/internal/pkg/response"
	"github.com/interview-replay/core/internal/pkg/storage"
	"gorm.io/gorm"
)

// Store is the slice of object storage the session module needs. Satisfied
// by *storage.Client.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service owns session CRUD and media handling.
type Service struct {
	db        *gorm.DB
	store     Store
	signedTTL time.Duration
}

func NewService(db *gorm.DB, store Store, signedTTL time.Duration) *Service {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &Service{db: db, store: store, signedTTL: signedTTL}
}

// Get returns the session only if it belongs to userID. Missing and
// not-owned rows are indistinguishable to the caller.
func (s *Service) Get(userID, id string) (*models.SessionModel, error) {
	var m models.SessionModel
	err := s.db.First(&m, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authorization()
		}
		return nil, err
	}
	return &m, nil
}

// List returns the caller's sessions, newest first.
func (s *Service) List(userID string, q pagination.Query) ([]models.SessionModel, response.Pagination, error) {
	query := s.db.Model(&models.SessionModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	var sessions []models.SessionModel
	p, err := pagination.Paginate(query, q, &sessions)
	return sessions, p, err
}

func (s *Service) Create(userID string, dto *CreateSessionDTO) (*models.SessionModel, error) {
	m := models.SessionModel{
		UserID:      userID,
		Title:       dto.Title,
		Description: dto.Description,
		Kind:        dto.Kind,
		Status:      models.SessionPendingMedia,
		DurationMs:  dto.DurationMs,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) Update(userID, id string, dto *UpdateSessionDTO) (*models.SessionModel, error) {
	m, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		if *dto.Title == "" {
			return nil, apperror.Validation("title cannot be empty")
		}
		updates["title"] = *dto.Title
		m.Title = *dto.Title
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
		m.Description = *dto.Description
	}
	if dto.DurationMs != nil {
		if *dto.DurationMs < 0 {
			return nil, apperror.Validation("duration_ms cannot be negative")
		}
		updates["duration_ms"] = *dto.DurationMs
		m.DurationMs = *dto.DurationMs
	}
	if len(updates) == 0 {
		// Empty patch is a read.
		return m, nil
	}
	return m, s.db.Model(m).Updates(updates).Error
}

// Delete soft-deletes the session and deactivates its shares. Dependent
// rows (bookmarks, notes, jobs) keep their history; they are unreachable
// once the session is gone because every accessor joins through the live
// sessions table.
func (s *Service) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SessionModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Authorization()
		}
		return tx.Model(&models.SessionShareModel{}).
			Where("session_id = ? AND is_active = ?", id, true).
			Update("is_active", false).Error
	})
}

// UploadMedia stores the recording blob and flips the session to ready.
// Re-uploading overwrites the object at the same key.
func (s *Service) UploadMedia(ctx context.Context, userID, id string, body io.Reader, contentType string) (*models.SessionModel, error) {
	m, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	key := storage.MediaKey(userID, m.ID, string(m.Kind))
	if _, err := s.store.Upload(ctx, key, body, contentType); err != nil {
		return nil, apperror.Provider(err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"media_path":        key,
		"status":            models.SessionReady,
		"media_uploaded_at": &now,
	}
	if err := s.db.Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	m.MediaPath = key
	m.Status = models.SessionReady
	m.MediaUploadedAt = &now
	return m, nil
}

// MediaURL issues a presigned playback URL for the session's media.
func (s *Service) MediaURL(ctx context.Context, userID, id string) (*MediaURLResponse, error) {
	m, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	return s.presign(ctx, m)
}

func (s *Service) presign(ctx context.Context, m *models.SessionModel) (*MediaURLResponse, error) {
	if m.Status != models.SessionReady || m.MediaPath == "" {
		return nil, apperror.State("session has no uploaded media")
	}
	url, err := s.store.PresignGet(ctx, m.MediaPath, s.signedTTL)
	if err != nil {
		return nil, apperror.Provider(err)
	}
	return &MediaURLResponse{URL: url, ExpiresIn: int64(s.signedTTL.Seconds())}, nil
}

// PresignFor issues a playback URL for an already-authorized session row.
// Used by share access, which resolves the session through a share token
// rather than ownership.
func (s *Service) PresignFor(ctx context.Context, m *models.SessionModel, ttl time.Duration) (*MediaURLResponse, error) {
	if ttl <= 0 {
		ttl = s.signedTTL
	}
	if m.Status != models.SessionReady || m.MediaPath == "" {
		return nil, apperror.State("session has no uploaded media")
	}
	url, err := s.store.PresignGet(ctx, m.MediaPath, ttl)
	if err != nil {
		return nil, apperror.Provider(err)
	}
	return &MediaURLResponse{URL: url, ExpiresIn: int64(ttl.Seconds())}, nil
}
