// Package metadata derives technical attributes for generated assets. All
// probing is best effort: a missing or unreadable asset degrades to
// per-type defaults rather than failing a generation.
package metadata

import (
	"context"
	"image"
	"net/http"
	"strings"
	"time"

	// Registered decoders for the image probe.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"server/internal/domain"
	"server/internal/infra"
)

// AssetMeta carries everything the store records about one asset file.
type AssetMeta struct {
	MIME      string
	Width     *int
	Height    *int
	Duration  *float64
	SizeBytes *int64
}

type Extractor struct {
	client  *http.Client
	logger  infra.Logger
	timeout time.Duration
}

const defaultProbeTimeout = 5 * time.Second

func NewExtractor(client *http.Client, logger infra.Logger, timeout time.Duration) *Extractor {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Extractor{client: client, logger: logger, timeout: timeout}
}

// mimeByExtension maps url substrings to media types, first match wins.
var mimeByExtension = []struct {
	ext  string
	mime string
}{
	{".png", "image/png"},
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".webp", "image/webp"},
	{".gif", "image/gif"},
	{".mp4", "video/mp4"},
	{".webm", "video/webm"},
	{".mov", "video/quicktime"},
	{".mp3", "audio/mpeg"},
	{".wav", "audio/wav"},
	{".ogg", "audio/ogg"},
	{".m4a", "audio/mp4"},
}

// GuessMIMEFromURL infers a media type from the file extension, falling back
// to the content type's canonical format.
func GuessMIMEFromURL(url, contentType string) string {
	lowered := strings.ToLower(url)
	for _, entry := range mimeByExtension {
		if strings.Contains(lowered, entry.ext) {
			return entry.mime
		}
	}
	switch contentType {
	case domain.ContentTypeImage:
		return "image/png"
	case domain.ContentTypeVideo:
		return "video/mp4"
	case domain.ContentTypeAudio:
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

// FallbackFor returns the defaults recorded when probing yields nothing.
func FallbackFor(contentType string) AssetMeta {
	switch contentType {
	case domain.ContentTypeVideo:
		return AssetMeta{MIME: "video/mp4", Width: intPtr(1024), Height: intPtr(576), Duration: floatPtr(4.84)}
	case domain.ContentTypeAudio:
		return AssetMeta{MIME: "audio/mpeg", Duration: floatPtr(10)}
	default:
		return AssetMeta{MIME: "image/png", Width: intPtr(1024), Height: intPtr(1024)}
	}
}

// Extract probes one asset URL. Image dimensions come from decoding the file
// header and stay unset when the probe fails; videos and audio carry the
// platform defaults since their container formats need a full download to
// parse. Sizes come from a HEAD request. FallbackFor covers callers whose
// extraction fails entirely.
func (e *Extractor) Extract(ctx context.Context, url, contentType string) AssetMeta {
	meta := AssetMeta{MIME: GuessMIMEFromURL(url, contentType)}
	switch contentType {
	case domain.ContentTypeVideo, domain.ContentTypeAudio:
		fb := FallbackFor(contentType)
		meta.Width, meta.Height, meta.Duration = fb.Width, fb.Height, fb.Duration
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if contentType == domain.ContentTypeImage {
		if w, h, ok := e.probeImage(ctx, url); ok {
			meta.Width, meta.Height = intPtr(w), intPtr(h)
		}
	}
	if size, ok := e.probeSize(ctx, url); ok {
		meta.SizeBytes = &size
	}
	return meta
}

func (e *Extractor) probeImage(ctx context.Context, url string) (int, int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", url).Msg("image probe request failed")
		return 0, 0, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return 0, 0, false
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", url).Msg("image decode failed")
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

func (e *Extractor) probeSize(ctx context.Context, url string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 || resp.ContentLength <= 0 {
		return 0, false
	}
	return resp.ContentLength, true
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
