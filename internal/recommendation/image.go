package recommendation

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultPlaceholders are the static card images rotated by university id
var DefaultPlaceholders = []string{
	"/placeholder-uni-1.jpg",
	"/placeholder-uni-2.jpg",
	"/placeholder-uni-3.jpg",
}

// DefaultFaviconTemplate receives the website hostname
const DefaultFaviconTemplate = "https://www.google.com/s2/favicons?domain=%s&sz=128"

// ImageConfig tunes the image backfill
type ImageConfig struct {
	Placeholders    []string
	Sentinels       []string
	FaviconTemplate string
}

// ImageResolver guarantees every result a non-empty image reference
type ImageResolver struct {
	placeholders []string
	sentinels    []string
	favicon      string
	logger       *zap.Logger
}

// NewImageResolver creates a resolver, filling unset fields with defaults
func NewImageResolver(cfg ImageConfig, logger *zap.Logger) *ImageResolver {
	placeholders := make([]string, 0, len(cfg.Placeholders))
	for _, p := range cfg.Placeholders {
		if p = strings.TrimSpace(p); p != "" {
			placeholders = append(placeholders, p)
		}
	}
	if len(placeholders) == 0 {
		placeholders = DefaultPlaceholders
	}

	sentinels := make([]string, 0, len(cfg.Sentinels)+1)
	sentinels = append(sentinels, "example.com")
	for _, s := range cfg.Sentinels {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" && s != "example.com" {
			sentinels = append(sentinels, s)
		}
	}

	favicon := cfg.FaviconTemplate
	if favicon == "" || !strings.Contains(favicon, "%s") {
		favicon = DefaultFaviconTemplate
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &ImageResolver{
		placeholders: placeholders,
		sentinels:    sentinels,
		favicon:      favicon,
		logger:       logger,
	}
}

// Resolve returns the image to show for u: the stored image unless it is blank or a
// placeholder sentinel, else the website favicon, else a placeholder keyed by id.
func (r *ImageResolver) Resolve(u University) string {
	if img := strings.TrimSpace(u.ImageURL); img != "" && !r.isSentinel(img) {
		return img
	}
	if icon, ok := r.faviconFor(u); ok {
		return icon
	}
	return r.Placeholder(u.ID)
}

// Placeholder picks a static placeholder by id modulo the placeholder count
func (r *ImageResolver) Placeholder(id int64) string {
	n := int64(len(r.placeholders))
	idx := id % n
	if idx < 0 {
		idx += n
	}
	return r.placeholders[idx]
}

func (r *ImageResolver) isSentinel(img string) bool {
	lower := strings.ToLower(img)
	for _, s := range r.sentinels {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func (r *ImageResolver) faviconFor(u University) (string, bool) {
	raw := strings.TrimSpace(u.WebsiteURL)
	if raw == "" {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err == nil && (parsed.Scheme == "" || parsed.Hostname() == "") {
		err = fmt.Errorf("not an absolute URL")
	}
	if err != nil {
		r.logger.Warn("Ignoring unparseable university website",
			zap.Int64("university_id", u.ID),
			zap.String("website_url", raw),
			zap.Error(err),
		)
		return "", false
	}

	return fmt.Sprintf(r.favicon, parsed.Hostname()), true
}
