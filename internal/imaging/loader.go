package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// cachedImage is a decoded file and the file state it was decoded from.
type cachedImage struct {
	img     image.Image
	size    int64
	modTime time.Time
}

// fresh reports whether the entry still matches the file on disk.
func (e *cachedImage) fresh(fi os.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// ImageCache keeps decoded images keyed by path so that planning, extracting
// and drawing overlays for the same file decode it once.
//
// An entry is reused only while the file keeps the size and modification
// time it had when decoded; a rewritten file is decoded again on the next
// access. Entries stay until Evict or Clear drops them.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*cachedImage
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*cachedImage),
	}
}

// Load returns the decoded image at path, from the cache when it is fresh.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. JPEG files
// carrying an EXIF orientation tag are rotated upright while decoding, so
// patch coordinates always refer to the image as displayed.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, _, err := c.entry(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// Source returns the image at path as a Source for patch extraction.
// Decoded files are always top-left.
func (c *ImageCache) Source(path string) (Source, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Evict drops path from the cache and reports whether it was cached.
func (c *ImageCache) Evict(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.images[path]
	delete(c.images, path)
	return ok
}

// Clear drops every cached image and returns how many there were.
func (c *ImageCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.images)
	c.images = make(map[string]*cachedImage)
	return n
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func (c *ImageCache) entry(path string) (*cachedImage, os.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.fresh(fi) {
		return e, fi, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	e = &cachedImage{img: img, size: fi.Size(), modTime: fi.ModTime()}
	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()

	return e, fi, nil
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "bmp", "tiff", "webp" or "unknown",
	// taken from the file extension.
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Info loads the image at path and describes it.
func (c *ImageCache) Info(path string) (*ImageInfo, error) {
	e, fi, err := c.entry(path)
	if err != nil {
		return nil, err
	}

	depth, alpha := pixelTraits(e.img)
	b := e.img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        formatOf(path),
		ColorDepth:    depth,
		HasAlpha:      alpha,
		FileSizeBytes: fi.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions loads the image at path and returns its size.
func (c *ImageCache) Dimensions(path string) (*DimensionsResult, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}

// pixelTraits derives the channel depth and alpha presence from the
// decoded image type.
func pixelTraits(img image.Image) (depth string, alpha bool) {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		return "8-bit", true
	case *image.RGBA64, *image.NRGBA64:
		return "16-bit", true
	case *image.Gray16:
		return "16-bit", false
	}
	return "8-bit", false
}

// formatOf names the image format implied by the extension of path.
func formatOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" {
		return "webp"
	}
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "unknown"
	}
	return strings.ToLower(f.String())
}
