package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/pkg/captcha"
	"github.com/interview-replay/core/internal/pkg/response"
	sessionpkg "github.com/interview-replay/core/internal/pkg/session"
	"gorm.io/gorm"
)

type Handler struct {
	service  *Service
	verifier *captcha.Verifier
	db       *gorm.DB
}

func NewHandler(service *Service, verifier *captcha.Verifier, db *gorm.DB) *Handler {
	return &Handler{service: service, verifier: verifier, db: db}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-verification", h.ResendVerification)
		auth.POST("/logout", authMiddleware, h.Logout)
	}

	u := rg.Group("/user", authMiddleware)
	{
		u.GET("/profile", h.Profile)
		u.PATCH("/profile", h.UpdateProfile)
		u.PUT("/password", h.ChangePassword)
		u.GET("/sessions", h.ListSessions)
		u.DELETE("/sessions/:sid", h.RevokeSession)
		u.DELETE("/sessions", h.RevokeOtherSessions)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.verifier.Verify(c.Request.Context(), dto.CaptchaToken, c.ClientIP()); err != nil {
		response.BadRequest(c, "captcha verification failed")
		return
	}

	u, err := h.service.Register(c.Request.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errUsernameTaken), errors.Is(err, errMailTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, u)
}

func (h *Handler) Login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	token, u, err := h.service.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound), errors.Is(err, errWrongPassword):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.OK(c, gin.H{"token": token, "user": u})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var dto struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), dto.Token); err != nil {
		if errors.Is(err, errVerificationFailed) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"verified": true})
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var dto ResendVerificationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.verifier.Verify(c.Request.Context(), dto.CaptchaToken, c.ClientIP()); err != nil {
		response.BadRequest(c, "captcha verification failed")
		return
	}
	if err := h.service.ResendVerification(c.Request.Context(), dto.Mail); err != nil {
		if errors.Is(err, errAlreadyVerified) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"sent": true})
}

func (h *Handler) Logout(c *gin.Context) {
	uid := middleware.CurrentUserID(c)
	sid := middleware.CurrentSessionID(c)
	if err := sessionpkg.Revoke(h.db, uid, sid); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Profile(c *gin.Context) {
	u, err := h.service.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	u, err := h.service.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errMailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	uid := middleware.CurrentUserID(c)
	if err := h.service.ChangePassword(uid, dto.OldPassword, dto.NewPassword); err != nil {
		switch {
		case errors.Is(err, errWrongPassword), errors.Is(err, errPasswordSameAsOld):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	// Other sessions are revoked so a stolen token dies with the old password.
	if err := sessionpkg.RevokeAllExcept(h.db, uid, middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"changed": true})
}

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := sessionpkg.ListActive(h.db, middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	current := middleware.CurrentSessionID(c)
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, gin.H{
			"id":         s.ID,
			"ip":         s.IP,
			"ua":         s.UA,
			"created_at": s.CreatedAt,
			"updated_at": s.UpdatedAt,
			"expires_at": s.ExpiresAt,
			"current":    s.ID == current,
		})
	}
	response.OK(c, out)
}

func (h *Handler) RevokeSession(c *gin.Context) {
	err := sessionpkg.Revoke(h.db, middleware.CurrentUserID(c), c.Param("sid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) RevokeOtherSessions(c *gin.Context) {
	err := sessionpkg.RevokeAllExcept(h.db, middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
