package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appcfg "github.com/interview-replay/core/internal/config"
	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, db *gorm.DB, inv Invoker, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := appcfg.AIConfig{Providers: []appcfg.AIProvider{
		{ID: "openai", Type: "openai", DefaultModel: "gpt-4o-mini", Enabled: true},
	}}
	h := NewHandler(NewService(db, inv, nil), cfg)

	fakeAuth := func(c *gin.Context) { c.Set(middleware.ContextKeyUserID, userID) }
	h.RegisterRoutes(r.Group("/api/v1"), fakeAuth)
	return r
}

func TestCreateJobLeavesJobQueued(t *testing.T) {
	db := newTestDB(t)
	userID, sessionID := seedUserSession(t, db, true)
	inv := &stubInvoker{content: TranscriptContent{Text: "hi", DurationMs: 1000}}
	r := newTestRouter(t, db, inv, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID+"/ai-jobs",
		strings.NewReader(`{"job_type":"transcript"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.AIJobModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.JobQueued, created.Status)

	// Nothing runs without an explicit trigger.
	time.Sleep(300 * time.Millisecond)
	var job models.AIJobModel
	require.NoError(t, db.First(&job, "id = ?", created.ID).Error)
	assert.Equal(t, models.JobQueued, job.Status)
	assert.EqualValues(t, 0, atomic.LoadInt32(&inv.calls))
}

func TestRetryLeavesReplacementQueued(t *testing.T) {
	db := newTestDB(t)
	userID, sessionID := seedUserSession(t, db, true)
	msg := "provider exploded"
	failed := models.AIJobModel{
		UserID: userID, SessionID: sessionID,
		JobType: models.JobTranscript, Status: models.JobFailed,
		ErrorMessage: &msg,
	}
	require.NoError(t, db.Create(&failed).Error)

	inv := &stubInvoker{content: TranscriptContent{Text: "hi", DurationMs: 1000}}
	r := newTestRouter(t, db, inv, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/jobs/"+failed.ID+"/retry", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var replacement models.AIJobModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replacement))
	require.NotEqual(t, failed.ID, replacement.ID)

	time.Sleep(300 * time.Millisecond)
	var job models.AIJobModel
	require.NoError(t, db.First(&job, "id = ?", replacement.ID).Error)
	assert.Equal(t, models.JobQueued, job.Status)
	assert.EqualValues(t, 0, atomic.LoadInt32(&inv.calls))
}
