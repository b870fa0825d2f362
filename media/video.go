package media

import (
	"net/url"
	"path"
	"strings"
)

// VideoKind is how a video source is played back
type VideoKind string

const (
	VideoYouTube VideoKind = "youtube"
	VideoVimeo   VideoKind = "vimeo"
	VideoMP4     VideoKind = "mp4"
)

// Video describes the authoritative video of a group
type Video struct {
	Kind       VideoKind `json:"kind"`
	ProviderID string    `json:"providerId,omitempty"`
	Src        string    `json:"src"`
	IsVertical bool      `json:"isVertical"`
}

// EmbedURL is the player address for the video
func (v Video) EmbedURL() string {
	switch v.Kind {
	case VideoYouTube:
		return "https://www.youtube.com/embed/" + url.PathEscape(v.ProviderID)
	case VideoVimeo:
		return "https://player.vimeo.com/video/" + url.PathEscape(v.ProviderID)
	default:
		return v.Src
	}
}

// ClassifyVideo decides the playback kind of a video URL and extracts the
// provider id. Anything that is not a YouTube or Vimeo address, including an
// unparsable string, is treated as a direct file.
func ClassifyVideo(rawURL string) Video {
	src := strings.TrimSpace(rawURL)
	video := Video{Kind: VideoMP4, Src: src}

	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		// scheme-less links such as "youtu.be/abc"
		u, err = url.Parse("https://" + src)
		if err != nil {
			return video
		}
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case matchesHost(host, "youtube.com", "youtu.be", "youtube-nocookie.com"):
		video.Kind = VideoYouTube
		if v := u.Query().Get("v"); v != "" {
			video.ProviderID = v
		} else {
			video.ProviderID = lastSegment(u.Path)
		}
	case matchesHost(host, "vimeo.com"):
		video.Kind = VideoVimeo
		video.ProviderID = lastSegment(u.Path)
	}
	return video
}

func matchesHost(host string, domains ...string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
