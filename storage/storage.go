// Package storage keeps uploaded project media in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
)

// DefaultBucket is the bucket the results page media lives in
const DefaultBucket = "results-media"

const defaultContentType = "application/octet-stream"

// ObjectStore uploads and removes media objects
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
	PathFromURL(publicURL string) (string, bool)
}

// ObjectPath names an uploaded file: projects/<project>/<kind>/<unix ms>-<name>
func ObjectPath(projectID uuid.UUID, kind models.MediaKind, at time.Time, filename string) string {
	return fmt.Sprintf("projects/%s/%s/%d-%s", projectID, kind, at.UnixMilli(), cleanName(filename))
}

func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ', r == '#', r == '?', r == '%', r < 0x20:
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// layout maps object paths to public URLs of the form <base>/<bucket>/<path>
type layout struct {
	base   string
	bucket string
}

func (l layout) PublicURL(objectPath string) string {
	return strings.TrimSuffix(l.base, "/") + "/" + l.bucket + "/" + strings.TrimPrefix(objectPath, "/")
}

// PathFromURL recovers the object path from a public URL by splitting on the
// bucket segment.
func (l layout) PathFromURL(publicURL string) (string, bool) {
	marker := "/" + l.bucket + "/"
	i := strings.Index(publicURL, marker)
	if i < 0 {
		return "", false
	}
	p := publicURL[i+len(marker):]
	if q := strings.IndexAny(p, "?#"); q >= 0 {
		p = p[:q]
	}
	if p == "" {
		return "", false
	}
	return p, true
}

func contentTypeOr(contentType string) string {
	if contentType == "" {
		return defaultContentType
	}
	return contentType
}
