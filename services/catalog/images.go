package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"catwatch-backend/lib/scrapers/rescue"
)

var imageTracer = otel.Tracer("catwatch.services.catalog.images")

// ImageCache downloads listing photos into a local directory keyed by
// stable id, so the front end never hotlinks a rescue site.
type ImageCache struct {
	dir  string
	http *resty.Client
}

func NewImageCache(dir string, http *resty.Client) (*ImageCache, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	return &ImageCache{dir: dir, http: http}, nil
}

// FetchAndCache returns the local reference ("/cats/<filename>") for
// remoteUrl, downloading it on first sight. Idempotent: an existing
// non-empty local file short-circuits the download, which both saves
// requests and avoids re-tripping anti-scraping defenses for images we
// already hold. Any failure degrades to the placeholder reference, never
// an error.
func (c *ImageCache) FetchAndCache(ctx context.Context, remoteUrl, filename string) string {
	ctx, span := imageTracer.Start(ctx, "FetchAndCache")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", remoteUrl),
		attribute.String("filename", filename),
	)

	if rescue.IsPlaceholderImage(remoteUrl) {
		return rescue.PlaceholderImage
	}

	dest := filepath.Join(c.dir, filename)
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		span.AddEvent("cache hit")
		return localRef(filename)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(remoteUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download image")
		return rescue.PlaceholderImage
	}
	if res.IsError() {
		span.SetStatus(codes.Error, fmt.Sprintf("image download returned %d", res.StatusCode()))
		os.Remove(dest)
		return rescue.PlaceholderImage
	}

	return localRef(filename)
}

// VerifyLocal reports whether the local file behind a cached image
// reference exists and is non-empty. Cache-busting query suffixes are
// ignored.
func (c *ImageCache) VerifyLocal(ref string) bool {
	clean, _, _ := strings.Cut(ref, "?")
	info, err := os.Stat(filepath.Join(c.dir, filepath.Base(clean)))
	return err == nil && info.Size() > 0
}

func localRef(filename string) string {
	return "/cats/" + filename
}
