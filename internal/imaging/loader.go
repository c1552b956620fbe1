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
)

// ImageCache provides thread-safe caching of decoded photographs so that
// locating, segmenting and painting the same image does not decode it again.
//
// Images are keyed by the exact path string passed to Load and are treated
// as read-only once cached. Cached images remain in memory until Evict or
// Clear is called.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, and GIF. Images with no pixels are
// rejected with ErrInvalidImageShape and are not cached.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ValidateShape(img); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded photograph.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", or "unknown", based on the extension.
	Format string `json:"format"`

	// Channels is 1 for grayscale images and 3 or 4 for color images.
	Channels int `json:"channels"`

	// SuggestedRadius is a quarter of the shorter side, a reasonable first
	// guess when the object fills most of the frame.
	SuggestedRadius int `json:"suggested_radius"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	channels := 3
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		channels = 4
	}

	bounds := img.Bounds()
	minSide := bounds.Dx()
	if bounds.Dy() < minSide {
		minSide = bounds.Dy()
	}

	return &ImageInfo{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		Format:          format,
		Channels:        channels,
		SuggestedRadius: minSide / 4,
		FileSizeBytes:   stat.Size(),
	}, nil
}
