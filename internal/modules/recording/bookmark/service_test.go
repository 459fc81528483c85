package bookmark

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

func seedSession(t *testing.T, db *gorm.DB, username string) (userID, sessionID string) {
	t.Helper()
	u := models.UserModel{Username: username, Mail: username + "@example.com", Password: "x", Name: username}
	require.NoError(t, db.Create(&u).Error)
	sess := models.SessionModel{UserID: u.ID, Title: "Mock interview", Kind: models.MediaAudio, Status: models.SessionReady}
	require.NoError(t, db.Create(&sess).Error)
	return u.ID, sess.ID
}

func ts(v int64) *int64 { return &v }

func TestCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	_, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(-5), Label: "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "   "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(0), Label: "start"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.TimestampMs)
}

func TestPersistsTrimmedText(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	cat := "  technical  "
	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "  padded  ", Category: &cat})
	require.NoError(t, err)

	var row models.BookmarkModel
	require.NoError(t, db.First(&row, "id = ?", b.ID).Error)
	assert.Equal(t, "padded", row.Label)
	require.NotNil(t, row.Category)
	assert.Equal(t, "technical", *row.Category)

	// Whitespace-only category is stored as null.
	blank := "   "
	b2, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(2000), Label: "other", Category: &blank})
	require.NoError(t, err)
	row = models.BookmarkModel{}
	require.NoError(t, db.First(&row, "id = ?", b2.ID).Error)
	assert.Nil(t, row.Category)

	label := "  renamed  "
	_, err = svc.Update(userID, b.ID, &UpdateBookmarkDTO{Label: &label, Category: &cat})
	require.NoError(t, err)
	row = models.BookmarkModel{}
	require.NoError(t, db.First(&row, "id = ?", b.ID).Error)
	assert.Equal(t, "renamed", row.Label)
	require.NotNil(t, row.Category)
	assert.Equal(t, "technical", *row.Category)

	n, err := svc.CreateNote(userID, b.ID, &CreateNoteDTO{Content: "  spaced out  "})
	require.NoError(t, err)
	var note models.BookmarkNoteModel
	require.NoError(t, db.First(&note, "id = ?", n.ID).Error)
	assert.Equal(t, "spaced out", note.Content)
}

func TestListCanonicalOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	// Insert out of order; equal timestamps fall back to creation order.
	for _, v := range []struct {
		ts    int64
		label string
	}{
		{5000, "middle"},
		{1000, "early-first"},
		{9000, "late"},
		{1000, "early-second"},
	} {
		_, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(v.ts), Label: v.label})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	bookmarks, err := svc.List(userID, sessionID)
	require.NoError(t, err)
	require.Len(t, bookmarks, 4)
	assert.Equal(t, "early-first", bookmarks[0].Label)
	assert.Equal(t, "early-second", bookmarks[1].Label)
	assert.Equal(t, "middle", bookmarks[2].Label)
	assert.Equal(t, "late", bookmarks[3].Label)
}

func TestUpdateEmptyPatchIsARead(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "original"})
	require.NoError(t, err)

	same, err := svc.Update(userID, b.ID, &UpdateBookmarkDTO{})
	require.NoError(t, err)
	assert.Equal(t, "original", same.Label)
	assert.Equal(t, b.UpdatedAt, same.UpdatedAt)
}

func TestUpdateLabelAndCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "original"})
	require.NoError(t, err)

	label := "renamed"
	category := "weakness"
	updated, err := svc.Update(userID, b.ID, &UpdateBookmarkDTO{Label: &label, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Label)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "weakness", *updated.Category)

	// Empty string clears the category.
	empty := ""
	updated, err = svc.Update(userID, b.ID, &UpdateBookmarkDTO{Category: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.Category)

	// Blank label is rejected.
	blank := "  "
	_, err = svc.Update(userID, b.ID, &UpdateBookmarkDTO{Label: &blank})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	aliceID, sessionID := seedSession(t, db, "alice")
	bobID, _ := seedSession(t, db, "bob")

	b, err := svc.Create(aliceID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "mine"})
	require.NoError(t, err)

	_, foreignErr := svc.Update(bobID, b.ID, &UpdateBookmarkDTO{})
	_, missingErr := svc.Update(bobID, "no-such-id", &UpdateBookmarkDTO{})
	require.Error(t, foreignErr)
	require.Error(t, missingErr)
	assert.Equal(t, missingErr.Error(), foreignErr.Error())

	_, err = svc.List(bobID, sessionID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestDeleteRemovesNotes(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "with notes"})
	require.NoError(t, err)

	_, err = svc.CreateNote(userID, b.ID, &CreateNoteDTO{Content: "first"})
	require.NoError(t, err)
	_, err = svc.CreateNote(userID, b.ID, &CreateNoteDTO{Content: "second"})
	require.NoError(t, err)

	notes, err := svc.ListNotes(userID, b.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Content)

	require.NoError(t, svc.Delete(userID, b.ID))

	var count int64
	db.Model(&models.BookmarkNoteModel{}).Where("bookmark_id = ?", b.ID).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteNote(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "x"})
	require.NoError(t, err)
	n, err := svc.CreateNote(userID, b.ID, &CreateNoteDTO{Content: "note"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(userID, b.ID, n.ID))
	err = svc.DeleteNote(userID, b.ID, n.ID)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestBookmarksUnderDeletedSessionAreInvisible(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID, sessionID := seedSession(t, db, "alice")

	b, err := svc.Create(userID, sessionID, &CreateBookmarkDTO{TimestampMs: ts(1000), Label: "orphaned soon"})
	require.NoError(t, err)

	require.NoError(t, db.Where("id = ?", sessionID).Delete(&models.SessionModel{}).Error)

	_, err = svc.Update(userID, b.ID, &UpdateBookmarkDTO{})
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}
