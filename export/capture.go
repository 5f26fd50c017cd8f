package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"canva-clone/core"

	"github.com/sirupsen/logrus"
)

const (
	uriScheme       = "kv://"
	thumbnailPrefix = "thumbnails/"
)

// ThumbnailKey is the storage key of a design's captured thumbnail.
func ThumbnailKey(designID string) string {
	return thumbnailPrefix + designID + ".png"
}

// KeyFromURI returns the storage key behind a kv:// URI.
func KeyFromURI(uri string) (string, bool) {
	return strings.CutPrefix(uri, uriScheme)
}

// Capturer renders thumbnails and keeps them in the key-value backend.
type Capturer struct {
	kv            core.KeyValueStore
	width, height int
}

func NewCapturer(kv core.KeyValueStore, width, height int) *Capturer {
	return &Capturer{kv: kv, width: width, height: height}
}

// Capture stores a PNG thumbnail of the design and returns its kv:// URI.
func (c *Capturer) Capture(ctx context.Context, snap core.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := Thumbnail(snap, c.width, c.height, &buf); err != nil {
		return "", fmt.Errorf("render thumbnail: %w", err)
	}

	key := ThumbnailKey(snap.Design.ID)
	if err := c.kv.Set(ctx, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"design_id":   snap.Design.ID,
		"key":         key,
		"data_length": buf.Len(),
	}).Debug("Thumbnail captured")
	return uriScheme + key, nil
}

// Open returns the PNG stored behind a URI returned by Capture.
func (c *Capturer) Open(ctx context.Context, uri string) ([]byte, error) {
	key, ok := KeyFromURI(uri)
	if !ok || !strings.HasPrefix(key, thumbnailPrefix) {
		return nil, fmt.Errorf("not a thumbnail uri: %q", uri)
	}
	return c.kv.Get(ctx, key)
}
