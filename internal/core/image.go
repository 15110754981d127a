// Viewer state: the loaded image, its scale factor and the pan state machine
package core

import (
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"
	"sync"
)

const (
	ZoomInFactor  = 1.25
	ZoomOutFactor = 0.8

	DefaultMinScale = 0.01
	DefaultMaxScale = 100.0

	// MaxDimension caps either side of a rendered bitmap.
	MaxDimension = 32768
)

// ZoomPolicy decides what a newly loaded image does to the scale factor.
type ZoomPolicy string

const (
	// ZoomReset starts every new image at 1.0.
	ZoomReset ZoomPolicy = "reset"
	// ZoomKeep keeps the current scale for path loads; clipboard bitmaps still reset.
	ZoomKeep ZoomPolicy = "keep"
)

// Source identifies where an image came from.
type Source int

const (
	SourceFile Source = iota
	SourceClipboard
	// SourceReload is the same file read again after it changed on disk.
	SourceReload
)

var ErrNoImage = errors.New("no image loaded")

// ImageMetadata describes the loaded image
type ImageMetadata struct {
	Width  int
	Height int
	Format string
	Path   string
}

// Options tunes a Viewer. Zero values fall back to the defaults.
type Options struct {
	MinScale   float64
	MaxScale   float64
	ZoomPolicy ZoomPolicy
}

// Viewer owns the current image and scale factor. Every mutation replaces
// state wholesale; a failed load never reaches it.
type Viewer struct {
	mu       sync.RWMutex
	original image.Image
	scale    float64
	metadata ImageMetadata
	opts     Options

	Pan Pan
}

// NewViewer creates an empty viewer at scale 1.0
func NewViewer(opts Options) *Viewer {
	if opts.MinScale <= 0 {
		opts.MinScale = DefaultMinScale
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = DefaultMaxScale
	}
	if opts.ZoomPolicy == "" {
		opts.ZoomPolicy = ZoomReset
	}
	return &Viewer{scale: 1.0, opts: opts}
}

// SetImage adopts img as the current image and applies the zoom policy.
func (v *Viewer) SetImage(img image.Image, src Source, path, format string) error {
	if err := ValidateImage(img); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.original = img
	b := img.Bounds()
	v.metadata = ImageMetadata{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
		Path:   path,
	}
	if format == "" {
		v.metadata.Format = getFormatFromPath(path)
	}

	switch {
	case src == SourceClipboard:
		v.scale = 1.0
	case src == SourceFile && v.opts.ZoomPolicy == ZoomReset:
		v.scale = 1.0
	}
	v.scale = v.clampLocked(v.scale)
	return nil
}

// Image returns the original, unscaled bitmap or nil.
func (v *Viewer) Image() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.original
}

// HasImage reports whether an image is loaded
func (v *Viewer) HasImage() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.original != nil
}

func (v *Viewer) Scale() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scale
}

func (v *Viewer) Metadata() ImageMetadata {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.metadata
}

// ZoomIn multiplies the scale by 1.25. It reports false when nothing changed.
func (v *Viewer) ZoomIn() bool {
	return v.multiply(ZoomInFactor)
}

// ZoomOut multiplies the scale by 0.8. It reports false when nothing changed.
func (v *Viewer) ZoomOut() bool {
	return v.multiply(ZoomOutFactor)
}

// ResetZoom sets the scale to exactly 1.0 when an image is loaded.
func (v *Viewer) ResetZoom() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.original == nil {
		return false
	}
	v.scale = v.clampLocked(1.0)
	return true
}

func (v *Viewer) multiply(factor float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.original == nil {
		return false
	}
	v.scale = v.clampLocked(v.scale * factor)
	return true
}

// ScaleBounds returns the effective scale range for the current image.
func (v *Viewer) ScaleBounds() (float64, float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.boundsLocked()
}

func (v *Viewer) boundsLocked() (float64, float64) {
	lo, hi := v.opts.MinScale, v.opts.MaxScale
	if v.original == nil {
		return lo, hi
	}
	longest := math.Max(float64(v.metadata.Width), float64(v.metadata.Height))
	if limit := MaxDimension / longest; limit < hi {
		hi = limit
	}
	// Keep at least one pixel on the shorter side.
	shortest := math.Min(float64(v.metadata.Width), float64(v.metadata.Height))
	if limit := 0.5 / shortest; limit > lo {
		lo = limit
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func (v *Viewer) clampLocked(s float64) float64 {
	lo, hi := v.boundsLocked()
	return math.Max(lo, math.Min(hi, s))
}

// TargetSize returns the rendered size for the current image and scale.
func (v *Viewer) TargetSize() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.original == nil {
		return 0, 0
	}
	return ScaledSize(v.metadata.Width, v.metadata.Height, v.scale)
}

// ScaledSize computes (round(w*s), round(h*s)).
func ScaledSize(w, h int, scale float64) (int, int) {
	return int(math.Round(float64(w) * scale)), int(math.Round(float64(h) * scale))
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// ValidateImage rejects nil and zero-area bitmaps
func ValidateImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("image is empty")
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return nil
}
