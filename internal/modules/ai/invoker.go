package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	appcfg "github.com/interview-replay/core/internal/config"
	"github.com/interview-replay/core/internal/models"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"gorm.io/gorm"
)

// Invoker produces the output payload for one job. The provider invoker
// calls the configured AI backend; tests substitute their own.
type Invoker interface {
	Invoke(ctx context.Context, job *models.AIJobModel, session *models.SessionModel) (OutputContent, error)
}

// MediaStore is the slice of object storage the invoker needs to fetch
// recordings for transcription.
type MediaStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// providerInvoker runs jobs against the providers in config. Transcript
// jobs download the recording and run speech-to-text; the other job types
// feed the latest completed transcript into a chat model.
type providerInvoker struct {
	db    *gorm.DB
	cfg   appcfg.AIConfig
	store MediaStore
}

// NewProviderInvoker builds the production invoker.
func NewProviderInvoker(db *gorm.DB, cfg appcfg.AIConfig, store MediaStore) Invoker {
	return &providerInvoker{db: db, cfg: cfg, store: store}
}

func (p *providerInvoker) Invoke(ctx context.Context, job *models.AIJobModel, session *models.SessionModel) (OutputContent, error) {
	if job.JobType == models.JobTranscript {
		return p.transcribe(ctx, job, session)
	}
	return p.analyze(ctx, job, session)
}

func (p *providerInvoker) transcribe(ctx context.Context, job *models.AIJobModel, session *models.SessionModel) (OutputContent, error) {
	if session.MediaPath == "" {
		return nil, errors.New("session has no uploaded media")
	}

	provider := p.providerFor(job)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, errors.New("AI provider api key is empty")
	}

	body, err := p.store.Download(ctx, session.MediaPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	model := strings.TrimSpace(job.Model)
	if model == "" {
		model = string(openaiclient.AudioModelWhisper1)
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithRequestTimeout(10 * time.Minute),
	}
	if normalized := normalizeOpenAIBaseURL(provider.Endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(opts...)

	resp, err := client.Audio.Transcriptions.New(ctx, openaiclient.AudioTranscriptionNewParams{
		Model:          openaiclient.AudioModel(model),
		File:           body,
		ResponseFormat: openaiclient.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, errors.New("empty transcription from AI")
	}

	// The typed response only carries text; the detected language lives in
	// the verbose_json body.
	var verbose struct {
		Language string `json:"language"`
	}
	_ = json.Unmarshal([]byte(resp.RawJSON()), &verbose)

	return TranscriptContent{
		Text:       resp.Text,
		Language:   verbose.Language,
		DurationMs: session.DurationMs,
	}, nil
}

func (p *providerInvoker) analyze(ctx context.Context, job *models.AIJobModel, session *models.SessionModel) (OutputContent, error) {
	transcript, err := p.latestTranscript(session.ID)
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt, err := buildAnalysisPrompt(job.JobType, *transcript)
	if err != nil {
		return nil, err
	}

	provider := p.providerFor(job)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}

	raw, err := callAIWithSystemPrompt(ctx, provider, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	switch job.JobType {
	case models.JobSummary:
		var c SummaryContent
		if err := unmarshalAIJSON(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case models.JobScore:
		var c ScoreContent
		if err := unmarshalAIJSON(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case models.JobSuggestBookmarks:
		var c SuggestBookmarksContent
		if err := unmarshalAIJSON(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown job type: %s", job.JobType)
}

// providerFor keeps the provider the job was created with, so retries of
// old jobs do not silently switch backends when config changes.
func (p *providerInvoker) providerFor(job *models.AIJobModel) *appcfg.AIProvider {
	if id := strings.TrimSpace(job.Provider); id != "" {
		for _, provider := range p.cfg.Providers {
			if provider.Enabled && strings.TrimSpace(provider.ID) == id {
				selected := provider
				if m := strings.TrimSpace(job.Model); m != "" {
					selected.DefaultModel = m
				}
				return &selected
			}
		}
	}
	return selectProvider(p.cfg, job.JobType)
}

func (p *providerInvoker) latestTranscript(sessionID string) (*TranscriptContent, error) {
	var output models.AIOutputModel
	err := p.db.Where("session_id = ? AND output_type = ?", sessionID, models.JobTranscript).
		Order("created_at DESC").
		First(&output).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("session has no completed transcript")
		}
		return nil, err
	}

	content, err := UnmarshalContent(models.JobTranscript, output.Content)
	if err != nil {
		return nil, err
	}
	transcript, ok := content.(TranscriptContent)
	if !ok {
		return nil, errors.New("malformed transcript output")
	}
	return &transcript, nil
}
