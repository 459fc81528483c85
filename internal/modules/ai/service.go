package ai

import (
	"context"
	"errors"
	"time"

	"github.com/interview-replay/core/internal/models"
	"github.com/interview-replay/core/internal/pkg/apperror"
	"github.com/interview-replay/core/internal/pkg/pagination"
	"github.com/interview-replay/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cancelledByUserMessage = "cancelled by user"

// Service owns the AI job lifecycle. Jobs move queued -> processing ->
// completed | failed | cancelled; terminal jobs never transition again and
// rows are never deleted. Every transition out of queued or processing is a
// conditional UPDATE guarded by the current status, so concurrent runners
// and cancels cannot double-apply.
type Service struct {
	db      *gorm.DB
	invoker Invoker
	log     *zap.Logger
}

func NewService(db *gorm.DB, invoker Invoker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, invoker: invoker, log: log}
}

func (s *Service) ownedSession(userID, sessionID string) (*models.SessionModel, error) {
	var m models.SessionModel
	err := s.db.First(&m, "id = ? AND user_id = ?", sessionID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authorization()
		}
		return nil, err
	}
	return &m, nil
}

// CreateJob enqueues one unit of AI work. Transcript jobs need uploaded
// media; the analysis job types need a completed transcript to read.
// The provider and model are pinned at creation time.
func (s *Service) CreateJob(userID, sessionID string, jobType models.JobType, cfgProvider func(models.JobType) (provider, model string)) (*models.AIJobModel, error) {
	if !models.ValidJobType(jobType) {
		return nil, apperror.Validation("unknown job type: %s", jobType)
	}

	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if jobType == models.JobTranscript {
		if session.Status != models.SessionReady {
			return nil, apperror.State("session has no uploaded media")
		}
	} else {
		var count int64
		err := s.db.Model(&models.AIOutputModel{}).
			Where("session_id = ? AND output_type = ?", sessionID, models.JobTranscript).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperror.State("session has no completed transcript; run a transcript job first")
		}
	}

	job := models.AIJobModel{
		UserID:    userID,
		SessionID: sessionID,
		JobType:   jobType,
		Status:    models.JobQueued,
	}
	if cfgProvider != nil {
		job.Provider, job.Model = cfgProvider(jobType)
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob returns the job only if the caller owns it.
func (s *Service) GetJob(userID, jobID string) (*models.AIJobModel, error) {
	var job models.AIJobModel
	err := s.db.First(&job, "id = ? AND user_id = ?", jobID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authorization()
		}
		return nil, err
	}
	return &job, nil
}

// Run claims and executes a queued job. Claiming is a conditional UPDATE on
// status = queued; exactly one caller wins when several race, and the losers
// get an invalid-state error instead of a duplicate execution.
func (s *Service) Run(ctx context.Context, userID, jobID string) (*models.AIJobModel, error) {
	job, err := s.GetJob(userID, jobID)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.AIJobModel{}).
		Where("id = ? AND status = ?", job.ID, models.JobQueued).
		Updates(map[string]interface{}{"status": models.JobProcessing, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.State("job is %s, only queued jobs can be run", job.Status)
	}
	job.Status = models.JobProcessing

	var session models.SessionModel
	if err := s.db.First(&session, "id = ?", job.SessionID).Error; err != nil {
		s.finishFailed(job, "session no longer exists")
		return job, nil
	}

	content, err := s.invoker.Invoke(ctx, job, &session)
	if err != nil {
		s.log.Warn("ai job failed",
			zap.String("job_id", job.ID),
			zap.String("job_type", string(job.JobType)),
			zap.Error(err))
		s.finishFailed(job, err.Error())
		return job, nil
	}

	raw, err := MarshalContent(content)
	if err != nil {
		s.finishFailed(job, "invalid output: "+err.Error())
		return job, nil
	}

	s.finishCompleted(job, raw)
	return job, nil
}

// finishCompleted writes the output row and flips the job to completed in
// one transaction. If the job left processing meanwhile (cancelled, swept),
// the output is discarded and the terminal state stands.
func (s *Service) finishCompleted(job *models.AIJobModel, raw models.JSON) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AIJobModel{}).
			Where("id = ? AND status = ?", job.ID, models.JobProcessing).
			Updates(map[string]interface{}{
				"status":        models.JobCompleted,
				"error_message": nil,
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errJobLeftProcessing
		}
		return tx.Create(&models.AIOutputModel{
			UserID:     job.UserID,
			SessionID:  job.SessionID,
			JobID:      job.ID,
			OutputType: job.JobType,
			Content:    raw,
		}).Error
	})

	switch {
	case err == nil:
		job.Status = models.JobCompleted
	case errors.Is(err, errJobLeftProcessing):
		s.reload(job)
	default:
		s.log.Error("persisting ai output failed", zap.String("job_id", job.ID), zap.Error(err))
		s.finishFailed(job, "persisting output failed")
	}
}

var errJobLeftProcessing = errors.New("job left processing state")

func (s *Service) finishFailed(job *models.AIJobModel, msg string) {
	res := s.db.Model(&models.AIJobModel{}).
		Where("id = ? AND status = ?", job.ID, models.JobProcessing).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"error_message": msg,
			"updated_at":    time.Now(),
		})
	if res.Error == nil && res.RowsAffected > 0 {
		job.Status = models.JobFailed
		job.ErrorMessage = &msg
		return
	}
	s.reload(job)
}

func (s *Service) reload(job *models.AIJobModel) {
	var fresh models.AIJobModel
	if err := s.db.First(&fresh, "id = ?", job.ID).Error; err == nil {
		*job = fresh
	}
}

// Cancel moves a queued or processing job to cancelled. A processing job's
// in-flight work finishes in the background but its result is discarded.
// Terminal jobs cannot be cancelled.
func (s *Service) Cancel(userID, jobID string) (*models.AIJobModel, error) {
	job, err := s.GetJob(userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, apperror.State("job is already %s", job.Status)
	}

	res := s.db.Model(&models.AIJobModel{}).
		Where("id = ? AND status IN ?", job.ID, []models.JobStatus{models.JobQueued, models.JobProcessing}).
		Updates(map[string]interface{}{
			"status":        models.JobCancelled,
			"error_message": cancelledByUserMessage,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost a race to completion or failure.
		s.reload(job)
		return nil, apperror.State("job is already %s", job.Status)
	}

	s.reload(job)
	return job, nil
}

// Retry spawns a fresh queued job for a failed or cancelled one. The
// original row is untouched; caused_by on the new job records the lineage.
func (s *Service) Retry(userID, jobID string) (*models.AIJobModel, error) {
	job, err := s.GetJob(userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobFailed && job.Status != models.JobCancelled {
		return nil, apperror.State("only failed or cancelled jobs can be retried, job is %s", job.Status)
	}

	causedBy := job.ID
	fresh := models.AIJobModel{
		UserID:    job.UserID,
		SessionID: job.SessionID,
		JobType:   job.JobType,
		Status:    models.JobQueued,
		Provider:  job.Provider,
		Model:     job.Model,
		CausedBy:  &causedBy,
	}
	if err := s.db.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// ListJobs returns the caller's jobs, newest first, optionally filtered to
// one session. History is complete: terminal jobs stay listed forever.
func (s *Service) ListJobs(userID, sessionID string, q pagination.Query) ([]models.AIJobModel, response.Pagination, error) {
	query := s.db.Model(&models.AIJobModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if sessionID != "" {
		if _, err := s.ownedSession(userID, sessionID); err != nil {
			return nil, response.Pagination{}, err
		}
		query = query.Where("session_id = ?", sessionID)
	}

	var jobs []models.AIJobModel
	p, err := pagination.Paginate(query, q, &jobs)
	return jobs, p, err
}

// ListOutputs returns a session's completed outputs, newest first.
func (s *Service) ListOutputs(userID, sessionID string) ([]models.AIOutputModel, error) {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	var outputs []models.AIOutputModel
	err := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&outputs).Error
	return outputs, err
}

// GetOutput returns the output of a completed job.
func (s *Service) GetOutput(userID, jobID string) (*models.AIOutputModel, error) {
	job, err := s.GetJob(userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobCompleted {
		return nil, apperror.State("job is %s, output exists only for completed jobs", job.Status)
	}

	var output models.AIOutputModel
	if err := s.db.First(&output, "job_id = ?", job.ID).Error; err != nil {
		return nil, err
	}
	return &output, nil
}

// LatestTranscript returns the newest transcript output for a session.
// Share access calls this after the token has authorized the session.
func (s *Service) LatestTranscript(sessionID string) (*models.AIOutputModel, error) {
	var output models.AIOutputModel
	err := s.db.Where("session_id = ? AND output_type = ?", sessionID, models.JobTranscript).
		Order("created_at DESC").
		First(&output).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authorization()
		}
		return nil, err
	}
	return &output, nil
}

// SweepStale fails processing jobs that have not progressed within timeout.
// Covers runner crashes; run from cron.
func (s *Service) SweepStale(timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	res := s.db.Model(&models.AIJobModel{}).
		Where("status = ? AND updated_at < ?", models.JobProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"error_message": "processing timed out",
			"updated_at":    time.Now(),
		})
	return res.RowsAffected, res.Error
}
