package user

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/interview-replay/core/internal/database"
	"github.com/interview-replay/core/internal/models"
	jwtpkg "github.com/interview-replay/core/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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

func seedUser(t *testing.T, db *gorm.DB, username, password string) *models.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.UserModel{Username: username, Mail: username + "@example.com", Password: string(hash), Name: username}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func TestLoginIssuesSessionBoundToken(t *testing.T) {
	jwtpkg.SetSecret("test-secret")
	db := newTestDB(t)
	svc := NewService(db, nil, nil, "")
	seedUser(t, db, "alice", "correct horse")

	token, u, err := svc.Login("alice", "correct horse", "127.0.0.1", "go-test")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", u.Username)
	assert.NotNil(t, u.LastLoginTime)

	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	var sess models.UserSession
	require.NoError(t, db.First(&sess, "id = ?", claims.SessionID).Error)
	assert.Equal(t, u.ID, sess.UserID)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
}

func TestLoginUniformFailureMessage(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, "")
	seedUser(t, db, "alice", "correct horse")

	_, _, wrongPwd := svc.Login("alice", "wrong", "", "")
	_, _, noUser := svc.Login("nobody", "whatever", "", "")
	require.Error(t, wrongPwd)
	require.Error(t, noUser)
	assert.Equal(t, wrongPwd.Error(), noUser.Error())
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, "")
	u := seedUser(t, db, "alice", "old password")

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "new password!"), errWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(u.ID, "old password", "old password"), errPasswordSameAsOld)

	require.NoError(t, svc.ChangePassword(u.ID, "old password", "new password!"))

	jwtpkg.SetSecret("test-secret")
	_, _, err := svc.Login("alice", "old password", "", "")
	assert.Error(t, err)
	_, _, err = svc.Login("alice", "new password!", "", "")
	assert.NoError(t, err)
}

func TestUpdateProfileMailResetsVerification(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, "")
	u := seedUser(t, db, "alice", "pw")

	now := time.Now()
	require.NoError(t, db.Model(u).Update("email_verified_at", &now).Error)

	newMail := "alice.new@example.com"
	updated, err := svc.UpdateProfile(u.ID, &UpdateUserDTO{Mail: &newMail})
	require.NoError(t, err)
	assert.Equal(t, newMail, updated.Mail)
	assert.Nil(t, updated.EmailVerifiedAt)

	// Taken mail is rejected.
	seedUser(t, db, "bob", "pw")
	taken := "bob@example.com"
	_, err = svc.UpdateProfile(u.ID, &UpdateUserDTO{Mail: &taken})
	assert.ErrorIs(t, err, errMailTaken)
}
