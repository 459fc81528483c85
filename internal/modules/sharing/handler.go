package sharing

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/modules/ai"
	"github.com/interview-replay/core/internal/modules/recording/bookmark"
	"github.com/interview-replay/core/internal/modules/recording/note"
	"github.com/interview-replay/core/internal/modules/recording/session"
	"github.com/interview-replay/core/internal/pkg/response"
)

// sharedSessionView is the session as a share recipient sees it: metadata
// only, no owner identifiers beyond what playback needs.
type sharedSessionView struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Kind        models.MediaKind     `json:"kind"`
	Status      models.SessionStatus `json:"status"`
	DurationMs  int64                `json:"duration_ms"`
	CreatedAt   time.Time            `json:"created_at"`
}

type Handler struct {
	svc         *Service
	sessionSvc  *session.Service
	bookmarkSvc *bookmark.Service
	noteSvc     *note.Service
	aiSvc       *ai.Service
	shareTTL    time.Duration
}

func NewHandler(svc *Service, sessionSvc *session.Service, bookmarkSvc *bookmark.Service, noteSvc *note.Service, aiSvc *ai.Service, shareTTL time.Duration) *Handler {
	if shareTTL <= 0 {
		shareTTL = 30 * time.Minute
	}
	return &Handler{
		svc:         svc,
		sessionSvc:  sessionSvc,
		bookmarkSvc: bookmarkSvc,
		noteSvc:     noteSvc,
		aiSvc:       aiSvc,
		shareTTL:    shareTTL,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/sessions/:id/shares", authMW, h.create)
	rg.GET("/sessions/:id/shares", authMW, h.list)
	rg.DELETE("/shares/:id", authMW, h.revoke)

	// Share access is unauthenticated; the token in the path is the whole
	// credential.
	share := rg.Group("/share/:token")
	{
		share.GET("/session", h.sharedSession)
		share.GET("/bookmarks", h.sharedBookmarks)
		share.GET("/note", h.sharedNote)
		share.GET("/transcript", h.sharedTranscript)
		share.GET("/media-url", h.sharedMediaURL)
	}
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateShareDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	share, err := h.svc.Create(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, share)
}

func (h *Handler) list(c *gin.Context) {
	shares, err := h.svc.List(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shares)
}

func (h *Handler) revoke(c *gin.Context) {
	if err := h.svc.Revoke(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) sharedSession(c *gin.Context) {
	_, sess, err := h.svc.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sharedSessionView{
		ID:          sess.ID,
		Title:       sess.Title,
		Description: sess.Description,
		Kind:        sess.Kind,
		Status:      sess.Status,
		DurationMs:  sess.DurationMs,
		CreatedAt:   sess.CreatedAt,
	})
}

func (h *Handler) sharedBookmarks(c *gin.Context) {
	_, sess, err := h.svc.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	bookmarks, err := h.bookmarkSvc.ListForSession(sess.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookmarks)
}

func (h *Handler) sharedNote(c *gin.Context) {
	_, sess, err := h.svc.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.noteSvc.GetForSession(sess.UserID, sess.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

func (h *Handler) sharedTranscript(c *gin.Context) {
	_, sess, err := h.svc.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	output, err := h.aiSvc.LatestTranscript(sess.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, output)
}

// sharedMediaURL issues a short-lived playback URL; shorter than the owner's
// because the bearer token is the only gate.
func (h *Handler) sharedMediaURL(c *gin.Context) {
	_, sess, err := h.svc.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.sessionSvc.PresignFor(c.Request.Context(), sess, h.shareTTL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
