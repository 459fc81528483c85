package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/mail"
	pkgredis "github.com/interview-replay/core/internal/pkg/redis"
	sessionpkg "github.com/interview-replay/core/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verifyKeyPrefix = "ir:verify:"
	verifyTTL       = 24 * time.Hour
)

// Service implements account registration, login and profile management.
type Service struct {
	db     *gorm.DB
	rc     *pkgredis.Client
	sender *mail.Sender
	webURL string
}

func NewService(db *gorm.DB, rc *pkgredis.Client, sender *mail.Sender, webURL string) *Service {
	return &Service{db: db, rc: rc, sender: sender, webURL: webURL}
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Register creates a new account and dispatches a verification mail.
// Captcha has already been verified by the handler.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (*models.UserModel, error) {
	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("username = ?", dto.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errUsernameTaken
	}
	if err := s.db.Model(&models.UserModel{}).Where("mail = ?", dto.Mail).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errMailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := dto.Name
	if name == "" {
		name = dto.Username
	}

	u := models.UserModel{Username: dto.Username, Mail: dto.Mail, Password: string(hash), Name: name}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, err
	}

	if err := s.sendVerificationMail(ctx, &u); err != nil {
		// Account exists; the user can resend from the verification screen.
		return &u, nil
	}
	return &u, nil
}

// ResendVerification re-sends the verification mail for an unverified account.
func (s *Service) ResendVerification(ctx context.Context, mailAddr string) error {
	var u models.UserModel
	if err := s.db.First(&u, "mail = ?", mailAddr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the address is registered.
			return nil
		}
		return err
	}
	if u.EmailVerifiedAt != nil {
		return errAlreadyVerified
	}
	return s.sendVerificationMail(ctx, &u)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.rc.GetDel(ctx, verifyKeyPrefix+token)
	if err != nil {
		return err
	}
	if userID == "" {
		return errVerificationFailed
	}
	now := time.Now()
	return s.db.Model(&models.UserModel{}).
		Where("id = ? AND email_verified_at IS NULL", userID).
		Update("email_verified_at", &now).Error
}

// Login checks credentials and issues a session-bound JWT.
func (s *Service) Login(username, password, ip, ua string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Constant-cost response for unknown usernames.
			time.Sleep(time.Second)
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}

	now := time.Now()
	s.db.Model(&u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, _, err := sessionpkg.Issue(s.db, u.ID, ip, ua, sessionpkg.DefaultTTL)
	return token, &u, err
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
		u.Name = *dto.Name
	}
	if dto.Mail != nil && *dto.Mail != u.Mail {
		var count int64
		if err := s.db.Model(&models.UserModel{}).Where("mail = ? AND id <> ?", *dto.Mail, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errMailTaken
		}
		updates["mail"] = *dto.Mail
		updates["email_verified_at"] = nil
		u.Mail = *dto.Mail
		u.EmailVerifiedAt = nil
	}
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.db.Model(u).Updates(updates).Error
}

// ChangePassword rotates the password after checking the old one.
func (s *Service) ChangePassword(id, oldPwd, newPwd string) error {
	var u models.UserModel
	if err := s.db.Select("id, password").First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Update("password", string(hash)).Error
}

func (s *Service) sendVerificationMail(ctx context.Context, u *models.UserModel) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := s.rc.Set(ctx, verifyKeyPrefix+token, u.ID, verifyTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.webURL, token)
	return s.sender.Send(mail.Message{
		To:      []string{u.Mail},
		Subject: "Verify your Interview Replay account",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Confirm your email to start recording practice sessions:</p><p><a href=%q>Verify email</a></p><p>The link expires in 24 hours.</p>",
			u.Name, link),
		Text: fmt.Sprintf("Hi %s,\n\nConfirm your email: %s\n\nThe link expires in 24 hours.\n", u.Name, link),
	})
}
