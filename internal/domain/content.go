package domain

import "time"

// ContentType enumerates the media categories shown to raters.
const (
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
	ContentTypeAudio = "audio"
	ContentTypeText  = "text"
	ContentTypeCombo = "combo"
)

// Content is one rateable artifact together with its prompt/model provenance.
type Content struct {
	ID               int64          `json:"id"`
	Type             string         `json:"type"`
	Title            *string        `json:"title"`
	Description      *string        `json:"description"`
	TextBody         *string        `json:"text_body"`
	Prompt           *string        `json:"prompt"`
	OriginalPrompt   *string        `json:"original_prompt"`
	EnhancedPrompt   *string        `json:"enhanced_prompt"`
	Model            *string        `json:"model"`
	BatchID          *string        `json:"batch_id"`
	AgentID          *string        `json:"agent_id"`
	GenerationParams map[string]any `json:"generation_params"`
	Metadata         map[string]any `json:"metadata"`
	ScoreMean        float64        `json:"score_mean"`
	ScoreCount       int            `json:"score_count"`
	CreatedAt        time.Time      `json:"created_at"`
	Assets           []Asset        `json:"assets"`
	// URL mirrors the first asset for clients that only render one artifact.
	URL string `json:"url,omitempty"`
}

// Asset is one physical media file backing a content record. Assets are owned
// by their content row and replaced as a set on update.
type Asset struct {
	ID        int64    `json:"id"`
	ContentID int64    `json:"content_id"`
	URL       string   `json:"url"`
	MIME      *string  `json:"mime"`
	Width     *int     `json:"width"`
	Height    *int     `json:"height"`
	Duration  *float64 `json:"duration"`
	SizeBytes *int64   `json:"size_bytes"`
	PosterURL *string  `json:"poster_url"`
	Ord       int      `json:"ord"`
}

// AssetInput carries asset fields prior to persistence.
type AssetInput struct {
	URL       string   `json:"url"`
	MIME      *string  `json:"mime"`
	Width     *int     `json:"width"`
	Height    *int     `json:"height"`
	Duration  *float64 `json:"duration"`
	SizeBytes *int64   `json:"size_bytes"`
	PosterURL *string  `json:"poster_url"`
	Ord       int      `json:"ord"`
}

// ContentInput is the write-side shape for content rows. Optional columns may
// be dropped by the store when the target schema does not carry them.
type ContentInput struct {
	Type             string         `json:"type"`
	Title            *string        `json:"title"`
	Description      *string        `json:"description"`
	TextBody         *string        `json:"text_body"`
	Prompt           *string        `json:"prompt"`
	OriginalPrompt   *string        `json:"original_prompt"`
	EnhancedPrompt   *string        `json:"enhanced_prompt"`
	Model            *string        `json:"model"`
	BatchID          *string        `json:"batch_id"`
	AgentID          *string        `json:"agent_id"`
	GenerationParams map[string]any `json:"generation_params"`
	Metadata         map[string]any `json:"metadata"`
	Assets           []AssetInput   `json:"assets"`
}

// NextContentFilter selects the next unrated content for a rater.
type NextContentFilter struct {
	SessionID *string
	UserID    *int64
	Types     []string
	Ascending bool
}

// Stats aggregates rating activity across the whole corpus.
type Stats struct {
	TotalContent  int64     `json:"totalContent"`
	TotalRatings  int64     `json:"totalRatings"`
	RatedDistinct int64     `json:"ratedDistinct"`
	PendingGlobal int64     `json:"pendingGlobal"`
	Top           []Content `json:"top"`
	Worst         []Content `json:"worst"`
}

// SummaryCounts scopes progress counters to one rater.
type SummaryCounts struct {
	Total   int64 `json:"total"`
	Rated   int64 `json:"rated"`
	Pending int64 `json:"pending"`
}
