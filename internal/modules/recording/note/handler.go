package note

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
	rg.GET("/sessions/:id/note", authMiddleware, h.Get)
	rg.PUT("/sessions/:id/note", authMiddleware, h.Upsert)
}

func (h *Handler) Get(c *gin.Context) {
	n, err := h.service.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

func (h *Handler) Upsert(c *gin.Context) {
	var dto UpsertNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	n, err := h.service.Upsert(middleware.CurrentUserID(c), c.Param("id"), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}
