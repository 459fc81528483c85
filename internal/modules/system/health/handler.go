package health

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	croncpkg "github.com/interview-replay/core/internal/pkg/cron"
	pkgredis "github.com/interview-replay/core/internal/pkg/redis"
	"github.com/interview-replay/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	rc        *pkgredis.Client
	scheduler *croncpkg.Scheduler
	startedAt time.Time
}

func NewHandler(db *gorm.DB, rc *pkgredis.Client, scheduler *croncpkg.Scheduler) *Handler {
	return &Handler{db: db, rc: rc, scheduler: scheduler, startedAt: time.Now()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)
	rg.GET("/health/cron", authMW, h.cronJobs)
}

// health reports liveness plus dependency reachability. A degraded
// dependency still answers 200; the payload carries the detail.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = err.Error()
	}

	redisStatus := "ok"
	if err := h.rc.Raw().Ping(ctx).Err(); err != nil {
		redisStatus = err.Error()
	}

	response.OK(c, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"database":       dbStatus,
		"redis":          redisStatus,
	})
}

func (h *Handler) cronJobs(c *gin.Context) {
	response.OK(c, h.scheduler.List())
}
