package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/pkg/pagination"
	"github.com/interview-replay/core/internal/pkg/response"
)

type Handler struct {
	service     *Service
	maxUploadMB int64
}

func NewHandler(service *Service, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 512
	}
	return &Handler{service: service, maxUploadMB: maxUploadMB}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	sessions := rg.Group("/sessions", authMiddleware)
	{
		sessions.GET("", h.List)
		sessions.POST("", h.Create)
		sessions.GET("/:id", h.Get)
		sessions.PATCH("/:id", h.Update)
		sessions.DELETE("/:id", h.Delete)
		sessions.PUT("/:id/media", h.UploadMedia)
		sessions.GET("/:id/media-url", h.MediaURL)
	}
}

func (h *Handler) List(c *gin.Context) {
	q := pagination.FromContext(c)
	sessions, p, err := h.service.List(middleware.CurrentUserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, sessions, p)
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.service.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) Create(c *gin.Context) {
	var dto CreateSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.service.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

func (h *Handler) Update(c *gin.Context) {
	var dto UpdateSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.service.Update(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadMedia accepts the raw recording either as a multipart "media" part
// or as the request body itself.
func (h *Handler) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadMB<<20)

	var (
		body        = c.Request.Body
		contentType = c.ContentType()
	)
	if file, err := c.FormFile("media"); err == nil {
		f, err := file.Open()
		if err != nil {
			response.BadRequest(c, "cannot read uploaded file")
			return
		}
		defer f.Close()
		body = f
		if ct := file.Header.Get("Content-Type"); ct != "" {
			contentType = ct
		}
	}

	m, err := h.service.UploadMedia(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), body, contentType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) MediaURL(c *gin.Context) {
	res, err := h.service.MediaURL(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
