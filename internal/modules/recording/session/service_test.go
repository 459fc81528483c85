package session

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/interview-replay/core/internal/database"
	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"github.com/interview-replay/core/internal/pkg/pagination"
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

type fakeStore struct {
	uploads map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string][]byte{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads[key] = raw
	return key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://media.example.com/" + key + "?signed=1", nil
}

func seedUser(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	u := models.UserModel{Username: username, Mail: username + "@example.com", Password: "x", Name: username}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func TestCreateStartsPendingMedia(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	userID := seedUser(t, db, "alice")

	m, err := svc.Create(userID, &CreateSessionDTO{Title: "System design drill", Kind: models.MediaVideo, DurationMs: 0})
	require.NoError(t, err)
	assert.Equal(t, models.SessionPendingMedia, m.Status)
	assert.Empty(t, m.MediaPath)

	// No media yet, no playback URL.
	_, err = svc.MediaURL(context.Background(), userID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindState))
}

func TestUploadMediaFlipsToReady(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, time.Hour)
	userID := seedUser(t, db, "alice")

	m, err := svc.Create(userID, &CreateSessionDTO{Title: "Behavioral round", Kind: models.MediaAudio})
	require.NoError(t, err)

	m, err = svc.UploadMedia(context.Background(), userID, m.ID, strings.NewReader("webm-bytes"), "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, models.SessionReady, m.Status)
	assert.Equal(t, userID+"/"+m.ID+"/audio.webm", m.MediaPath)
	assert.NotNil(t, m.MediaUploadedAt)
	assert.Equal(t, []byte("webm-bytes"), store.uploads[m.MediaPath])

	res, err := svc.MediaURL(context.Background(), userID, m.ID)
	require.NoError(t, err)
	assert.Contains(t, res.URL, m.MediaPath)
	assert.EqualValues(t, 3600, res.ExpiresIn)
}

func TestUpdateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	userID := seedUser(t, db, "alice")

	m, err := svc.Create(userID, &CreateSessionDTO{Title: "Original", Kind: models.MediaAudio})
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(userID, m.ID, &UpdateSessionDTO{Title: &empty})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	negative := int64(-1)
	_, err = svc.Update(userID, m.ID, &UpdateSessionDTO{DurationMs: &negative})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	title := "Renamed"
	updated, err := svc.Update(userID, m.ID, &UpdateSessionDTO{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestListIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	aliceID := seedUser(t, db, "alice")
	bobID := seedUser(t, db, "bob")

	_, err := svc.Create(aliceID, &CreateSessionDTO{Title: "Alice's", Kind: models.MediaAudio})
	require.NoError(t, err)
	_, err = svc.Create(bobID, &CreateSessionDTO{Title: "Bob's", Kind: models.MediaVideo})
	require.NoError(t, err)

	sessions, p, err := svc.List(aliceID, pagination.Query{Page: 1, Size: 20})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Alice's", sessions[0].Title)
	assert.EqualValues(t, 1, p.Total)
}

func TestDeleteHidesFromAccessors(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	userID := seedUser(t, db, "alice")

	m, err := svc.Create(userID, &CreateSessionDTO{Title: "Doomed", Kind: models.MediaAudio})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(userID, m.ID))

	_, err = svc.Get(userID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	// Double delete is indistinguishable from missing.
	err = svc.Delete(userID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestDeleteDeactivatesShares(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	userID := seedUser(t, db, "alice")

	m, err := svc.Create(userID, &CreateSessionDTO{Title: "Shared then gone", Kind: models.MediaAudio})
	require.NoError(t, err)

	share := models.SessionShareModel{SessionID: m.ID, UserID: userID, ShareToken: "tok-1", IsActive: true}
	require.NoError(t, db.Create(&share).Error)

	require.NoError(t, svc.Delete(userID, m.ID))

	var got models.SessionShareModel
	require.NoError(t, db.First(&got, "id = ?", share.ID).Error)
	assert.False(t, got.IsActive)
}

func TestForeignSessionInvisible(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, newFakeStore(), time.Hour)
	aliceID := seedUser(t, db, "alice")
	bobID := seedUser(t, db, "bob")

	m, err := svc.Create(aliceID, &CreateSessionDTO{Title: "Private", Kind: models.MediaAudio})
	require.NoError(t, err)

	_, err = svc.Get(bobID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	err = svc.Delete(bobID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}
