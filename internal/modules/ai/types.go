package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/interview-replay/core/internal/models"
)

// OutputContent is the job-type-specific payload stored on a completed job's
// output row. Each implementation validates its own shape before persistence.
type OutputContent interface {
	OutputType() models.JobType
	Validate() error
}

// SummaryContent is the payload of a summary job.
type SummaryContent struct {
	Summary    string   `json:"summary"`
	Bullets    []string `json:"bullets"`
	Confidence float64  `json:"confidence"`
}

func (SummaryContent) OutputType() models.JobType { return models.JobSummary }

func (c SummaryContent) Validate() error {
	if strings.TrimSpace(c.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", c.Confidence)
	}
	return nil
}

// TranscriptContent is the payload of a transcript job.
type TranscriptContent struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	DurationMs int64  `json:"duration_ms"`
}

func (TranscriptContent) OutputType() models.JobType { return models.JobTranscript }

func (c TranscriptContent) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("transcript text is empty")
	}
	if c.DurationMs < 0 {
		return fmt.Errorf("duration_ms cannot be negative")
	}
	return nil
}

// ScoreContent is the payload of a score job.
type ScoreContent struct {
	Score    float64            `json:"score"`
	Rubric   map[string]float64 `json:"rubric"`
	Feedback string             `json:"feedback"`
}

func (ScoreContent) OutputType() models.JobType { return models.JobScore }

func (c ScoreContent) Validate() error {
	if c.Score < 0 || c.Score > 10 {
		return fmt.Errorf("score %v out of range [0,10]", c.Score)
	}
	for name, v := range c.Rubric {
		if v < 0 || v > 10 {
			return fmt.Errorf("rubric %q score %v out of range [0,10]", name, v)
		}
	}
	return nil
}

// SuggestedBookmark is one AI-proposed marker. The client creates real
// bookmarks from accepted suggestions; nothing is written automatically.
type SuggestedBookmark struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Label       string `json:"label"`
	Category    string `json:"category"`
}

// SuggestBookmarksContent is the payload of a suggest_bookmarks job.
type SuggestBookmarksContent struct {
	Bookmarks []SuggestedBookmark `json:"bookmarks"`
}

func (SuggestBookmarksContent) OutputType() models.JobType { return models.JobSuggestBookmarks }

func (c SuggestBookmarksContent) Validate() error {
	for i, b := range c.Bookmarks {
		if b.TimestampMs < 0 {
			return fmt.Errorf("bookmark %d: timestamp_ms cannot be negative", i)
		}
		if strings.TrimSpace(b.Label) == "" {
			return fmt.Errorf("bookmark %d: label is empty", i)
		}
	}
	return nil
}

// MarshalContent serializes a validated payload for the output row.
func MarshalContent(content OutputContent) (models.JSON, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return models.JSON(raw), nil
}

// UnmarshalContent decodes an output row's payload back into its typed form.
func UnmarshalContent(outputType models.JobType, raw models.JSON) (OutputContent, error) {
	var content OutputContent
	switch outputType {
	case models.JobSummary:
		var c SummaryContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		content = c
	case models.JobTranscript:
		var c TranscriptContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		content = c
	case models.JobScore:
		var c ScoreContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		content = c
	case models.JobSuggestBookmarks:
		var c SuggestBookmarksContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		content = c
	default:
		return nil, fmt.Errorf("unknown output type: %s", outputType)
	}
	return content, nil
}

// CreateJobDTO requests one unit of AI work against a session.
type CreateJobDTO struct {
	JobType models.JobType `json:"job_type" binding:"required"`
}
