package user

import "errors"

var (
	errUserNotFound       = errors.New("username or password is incorrect")
	errWrongPassword      = errors.New("username or password is incorrect")
	errUsernameTaken      = errors.New("username is already taken")
	errMailTaken          = errors.New("email is already registered")
	errAlreadyVerified    = errors.New("email is already verified")
	errPasswordSameAsOld  = errors.New("new password must differ from the old one")
	errVerificationFailed = errors.New("invalid or expired verification token")
)

// RegisterDTO is the signup payload. CaptchaToken is verified before any row
// is written.
type RegisterDTO struct {
	Username     string `json:"username"      binding:"required,min=3,max=32"`
	Mail         string `json:"mail"          binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=128"`
	Name         string `json:"name"`
	CaptchaToken string `json:"captcha_token"`
}

// LoginDTO is the login payload.
type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ResendVerificationDTO re-requests the signup verification mail.
type ResendVerificationDTO struct {
	Mail         string `json:"mail"          binding:"required,email"`
	CaptchaToken string `json:"captcha_token"`
}

// UpdateUserDTO is a partial profile update.
type UpdateUserDTO struct {
	Name *string `json:"name"`
	Mail *string `json:"mail"`
}

// ChangePasswordDTO rotates the account password.
type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}
