package ai

import (
	"github.com/gin-gonic/gin"
	appcfg "github.com/interview-replay/core/internal/config"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/pagination"
	"github.com/interview-replay/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
	cfg appcfg.AIConfig
}

func NewHandler(svc *Service, cfg appcfg.AIConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/sessions/:id/ai-jobs", authMW, h.createJob)
	rg.GET("/sessions/:id/ai-jobs", authMW, h.listSessionJobs)
	rg.GET("/sessions/:id/ai-outputs", authMW, h.listOutputs)

	jobs := rg.Group("/ai/jobs", authMW)
	{
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.GET("/:id/output", h.getOutput)
		jobs.POST("/:id/run", h.runJob)
		jobs.POST("/:id/cancel", h.cancelJob)
		jobs.POST("/:id/retry", h.retryJob)
	}
}

// createJob enqueues work only. The job stays queued until an explicit
// POST /ai/jobs/:id/run, so the caller can inspect or cancel it before
// any provider compute is spent.
func (h *Handler) createJob(c *gin.Context) {
	var dto CreateJobDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	job, err := h.svc.CreateJob(middleware.CurrentUserID(c), c.Param("id"), dto.JobType, h.assignProvider)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

func (h *Handler) assignProvider(jobType models.JobType) (provider, model string) {
	p := selectProvider(h.cfg, jobType)
	if p == nil {
		return "", ""
	}
	return p.ID, p.DefaultModel
}

func (h *Handler) listSessionJobs(c *gin.Context) {
	q := pagination.FromContext(c)
	jobs, p, err := h.svc.ListJobs(middleware.CurrentUserID(c), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, jobs, p)
}

func (h *Handler) listOutputs(c *gin.Context) {
	outputs, err := h.svc.ListOutputs(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outputs)
}

func (h *Handler) listJobs(c *gin.Context) {
	q := pagination.FromContext(c)
	jobs, p, err := h.svc.ListJobs(middleware.CurrentUserID(c), c.Query("session_id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, jobs, p)
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.svc.GetJob(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

func (h *Handler) getOutput(c *gin.Context) {
	output, err := h.svc.GetOutput(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, output)
}

func (h *Handler) runJob(c *gin.Context) {
	job, err := h.svc.Run(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

func (h *Handler) cancelJob(c *gin.Context) {
	job, err := h.svc.Cancel(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// retryJob returns the replacement job, not the original. Like createJob
// it leaves the new job queued; running it is a separate call.
func (h *Handler) retryJob(c *gin.Context) {
	job, err := h.svc.Retry(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}
