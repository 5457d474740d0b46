package task

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Platform is the hosting service a video link points at.
type Platform string

const (
	YouTube Platform = "YouTube"
	TikTok  Platform = "TikTok"
	Unknown Platform = "Unknown"
)

const (
	// TikTokThumbnail is the placeholder shown for every TikTok link.
	TikTokThumbnail = "https://placehold.co/120x90/E91E63/FFFFFF?text=TikTok+Video"
	// GenericThumbnail is shown when the platform cannot be determined.
	GenericThumbnail = "https://placehold.co/120x90/607D8B/FFFFFF?text=Video"

	youTubeThumbnailFmt = "https://img.youtube.com/vi/%s/hqdefault.jpg"
)

var youTubeID = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)

// ErrVideoURLRequired is returned when a link is added without a URL.
var ErrVideoURLRequired = errors.New("task: video url required")

// VideoLink is a reference video attached to a task. Links are unique by URL
// within a draft.
type VideoLink struct {
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Platform     Platform `json:"platform"`
	Tags         []string `json:"tags,omitempty"`
}

// Classify derives the platform and thumbnail for url by pattern matching.
// YouTube links without a recognizable 11 character id keep the generic
// thumbnail.
func Classify(url string) (Platform, string) {
	switch {
	case strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be"):
		if m := youTubeID.FindStringSubmatch(url); len(m) == 2 {
			return YouTube, fmt.Sprintf(youTubeThumbnailFmt, m[1])
		}
		return YouTube, GenericThumbnail
	case strings.Contains(url, "tiktok.com"):
		return TikTok, TikTokThumbnail
	default:
		return Unknown, GenericThumbnail
	}
}

// NewVideoLink builds a classified link. The title defaults to the URL.
func NewVideoLink(url, title string, tags ...string) (VideoLink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return VideoLink{}, ErrVideoURLRequired
	}
	platform, thumb := Classify(url)
	if strings.TrimSpace(title) == "" {
		title = url
	}
	return VideoLink{
		URL:          url,
		Title:        strings.TrimSpace(title),
		ThumbnailURL: thumb,
		Platform:     platform,
		Tags:         append([]string(nil), tags...),
	}, nil
}
