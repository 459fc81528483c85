package sharing

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/interview-replay/core/internal/database"
	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSession(t *testing.T, db *gorm.DB) (userID, sessionID string) {
	t.Helper()
	u := models.UserModel{Username: "alice", Mail: "alice@example.com", Password: "x", Name: "Alice"}
	require.NoError(t, db.Create(&u).Error)
	sess := models.SessionModel{UserID: u.ID, Title: "Mock interview", Kind: models.MediaVideo, Status: models.SessionReady}
	require.NoError(t, db.Create(&sess).Error)
	return u.ID, sess.ID
}

func TestCreateAndResolve(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db)

	share, err := svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)
	assert.True(t, share.IsActive)
	assert.Nil(t, share.ExpiresAt)
	assert.NotEmpty(t, share.ShareToken)

	_, sess, err := svc.Resolve(share.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, sessionID, sess.ID)

	// Two shares for one session get distinct tokens.
	second, err := svc.Create(userID, sessionID, &CreateShareDTO{ExpiresInHours: 24})
	require.NoError(t, err)
	assert.NotEqual(t, share.ShareToken, second.ShareToken)
	require.NotNil(t, second.ExpiresAt)
}

func TestResolveRejectsUniformly(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db)

	share, err := svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)

	// unknown token
	_, _, unknownErr := svc.Resolve("no-such-token")
	assert.True(t, apperror.Is(unknownErr, apperror.KindAuthorization))

	// revoked token
	require.NoError(t, svc.Revoke(userID, share.ID))
	_, _, revokedErr := svc.Resolve(share.ShareToken)
	assert.True(t, apperror.Is(revokedErr, apperror.KindAuthorization))
	assert.Equal(t, unknownErr.Error(), revokedErr.Error())

	// expired token
	expired, err := svc.Create(userID, sessionID, &CreateShareDTO{ExpiresInHours: 1})
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.SessionShareModel{}).Where("id = ?", expired.ID).Update("expires_at", past).Error)
	_, _, expiredErr := svc.Resolve(expired.ShareToken)
	assert.True(t, apperror.Is(expiredErr, apperror.KindAuthorization))
	assert.Equal(t, unknownErr.Error(), expiredErr.Error())

	// token whose session was deleted
	dangling, err := svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)
	require.NoError(t, db.Where("id = ?", sessionID).Delete(&models.SessionModel{}).Error)
	_, _, danglingErr := svc.Resolve(dangling.ShareToken)
	assert.True(t, apperror.Is(danglingErr, apperror.KindAuthorization))
	assert.Equal(t, unknownErr.Error(), danglingErr.Error())
}

func TestRevokeKeepsRowForAudit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db)

	share, err := svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(userID, share.ID))

	// Re-revoking is indistinguishable from a missing share.
	err = svc.Revoke(userID, share.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	shares, err := svc.List(userID, sessionID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.False(t, shares[0].IsActive)
}

func TestRevokeForeignShare(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db)

	share, err := svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)

	err = svc.Revoke("someone-else", share.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	// Still resolvable: the foreign revoke touched nothing.
	_, _, err = svc.Resolve(share.ShareToken)
	require.NoError(t, err)
}

func TestDeactivateExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db)

	expired, err := svc.Create(userID, sessionID, &CreateShareDTO{ExpiresInHours: 1})
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.SessionShareModel{}).Where("id = ?", expired.ID).Update("expires_at", past).Error)

	_, err = svc.Create(userID, sessionID, &CreateShareDTO{})
	require.NoError(t, err)

	n, err := svc.DeactivateExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	shares, err := svc.List(userID, sessionID)
	require.NoError(t, err)
	active := 0
	for _, s := range shares {
		if s.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}
