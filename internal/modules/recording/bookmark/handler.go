package bookmark

import (
	"github.com/gin-gonic/gin"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/sessions/:id/bookmarks", authMiddleware, h.List)
	rg.POST("/sessions/:id/bookmarks", authMiddleware, h.Create)

	bookmarks := rg.Group("/bookmarks", authMiddleware)
	{
		bookmarks.PATCH("/:id", h.Update)
		bookmarks.DELETE("/:id", h.Delete)
		bookmarks.GET("/:id/notes", h.ListNotes)
		bookmarks.POST("/:id/notes", h.CreateNote)
		bookmarks.DELETE("/:id/notes/:noteId", h.DeleteNote)
	}
}

func (h *Handler) List(c *gin.Context) {
	bookmarks, err := h.service.List(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookmarks)
}

func (h *Handler) Create(c *gin.Context) {
	var dto CreateBookmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.service.Create(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

func (h *Handler) Update(c *gin.Context) {
	var dto UpdateBookmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.service.Update(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ListNotes(c *gin.Context) {
	notes, err := h.service.ListNotes(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	var dto CreateNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	n, err := h.service.CreateNote(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	err := h.service.DeleteNote(middleware.CurrentUserID(c), c.Param("id"), c.Param("noteId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
