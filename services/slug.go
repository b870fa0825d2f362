package services

import (
	"strings"
)

// Slugify lower-cases s and collapses every run of characters outside
// [a-z0-9] into a single '-', trimming dashes at both ends.
func Slugify(s string) string {
	var result strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			dash = false
			continue
		}
		if !dash && result.Len() > 0 {
			result.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(result.String(), "-")
}

// ProjectURL builds the public link of a project page
func ProjectURL(baseURL, slug string) string {
	if baseURL == "" || slug == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/results/" + slug
}
