package sharing

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CreateShareDTO creates a share link for a session. ExpiresInHours of zero
// means the link never expires on its own.
type CreateShareDTO struct {
	ExpiresInHours int `json:"expires_in_hours" binding:"min=0,max=8760"`
}

// Service manages share tokens: bearer capabilities granting read-only
// access to one session. Validity (active, unexpired, live session) is
// checked in the same query that fetches the data, so a revocation racing a
// read can never hand out data from a stale check.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
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

// Create mints a new share token for the session.
func (s *Service) Create(userID, sessionID string, dto *CreateShareDTO) (*models.SessionShareModel, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	share := models.SessionShareModel{
		SessionID:  sessionID,
		UserID:     userID,
		ShareToken: base64.RawURLEncoding.EncodeToString(raw),
		IsActive:   true,
	}
	if dto != nil && dto.ExpiresInHours > 0 {
		t := time.Now().Add(time.Duration(dto.ExpiresInHours) * time.Hour)
		share.ExpiresAt = &t
	}
	if err := s.db.Create(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// List returns all share rows for a session, revoked ones included, newest
// first.
func (s *Service) List(userID, sessionID string) ([]models.SessionShareModel, error) {
	if err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	var shares []models.SessionShareModel
	err := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// Revoke deactivates a share. The row stays for the audit trail.
func (s *Service) Revoke(userID, shareID string) error {
	res := s.db.Model(&models.SessionShareModel{}).
		Where("id = ? AND user_id = ? AND is_active = ?", shareID, userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Authorization()
	}
	return nil
}

// Resolve validates a token and returns the shared session in one atomic
// read. Invalid, revoked, expired and dangling tokens all produce the same
// error so the response never reveals which case applied.
func (s *Service) Resolve(token string) (*models.SessionShareModel, *models.SessionModel, error) {
	if token == "" {
		return nil, nil, apperror.Authorization()
	}

	var share models.SessionShareModel
	err := s.db.Where("share_token = ? AND is_active = ?", token, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Authorization()
		}
		return nil, nil, err
	}

	var session models.SessionModel
	if err := s.db.First(&session, "id = ?", share.SessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Authorization()
		}
		return nil, nil, err
	}
	return &share, &session, nil
}

// DeactivateExpired flips expired-but-active shares to inactive so listings
// reflect reality. Resolve already rejects them; this is bookkeeping, run
// from cron.
func (s *Service) DeactivateExpired() (int64, error) {
	res := s.db.Model(&models.SessionShareModel{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, time.Now()).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
