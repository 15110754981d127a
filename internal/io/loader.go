// Image loading and saving functionality
package io

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	stdio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is used for every JPEG write.
const JPEGQuality = 90

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("cannot save empty image")
)

// OpenExtensions lists the file extensions offered by the open dialog.
// TIFF and WebP are read-only.
var OpenExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// SaveExtensions lists the file extensions offered by the save dialog.
var SaveExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// Load decodes the file at path. The returned format is the codec name
// ("png", "jpeg", "bmp", "gif").
func (il *ImageLoader) Load(path string) (image.Image, string, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := il.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load image %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"format":   format,
		"width":    img.Bounds().Dx(),
		"height":   img.Bounds().Dy(),
	}).Info("Image loaded successfully")

	return img, format, nil
}

// Decode reads an encoded image of any supported format from r.
func (il *ImageLoader) Decode(r stdio.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", fmt.Errorf("invalid image dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return img, format, nil
}

// DecodeBytes is Decode over an in-memory payload such as clipboard data.
func (il *ImageLoader) DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrUnsupportedFormat
	}
	return il.Decode(bytes.NewReader(data))
}

// Save writes img to path in the format implied by its extension. A
// partially written file is removed on failure.
func (il *ImageLoader) Save(img image.Image, path string) (err error) {
	il.logger.WithField("filepath", path).Debug("Saving image")

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err = il.Encode(f, img, format); err != nil {
		return err
	}
	return nil
}

// Encode writes img to w using the named format.
func (il *ImageLoader) Encode(w stdio.Writer, img image.Image, format string) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}

	bw := bufio.NewWriter(w)
	var err error
	switch format {
	case "png":
		err = png.Encode(bw, img)
	case "jpeg":
		err = jpeg.Encode(bw, img, &jpeg.Options{Quality: JPEGQuality})
	case "bmp":
		err = bmp.Encode(bw, img)
	case "gif":
		err = gif.Encode(bw, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	il.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Info("Image saved successfully")
	return nil
}

// FormatFromPath maps a file extension to an encoder name. A path without
// an extension is written as PNG.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".bmp":
		return "bmp", nil
	case ".gif":
		return "gif", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedImageFormat reports whether path has an extension the open
// dialog accepts.
func IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range OpenExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

func GetSupportedFormats() []string {
	return []string{"PNG", "JPEG", "BMP", "GIF", "TIFF", "WebP"}
}
