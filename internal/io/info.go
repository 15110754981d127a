package io

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// FileInfo describes an image file without decoding its pixels.
type FileInfo struct {
	Width   int
	Height  int
	Format  string
	Size    int64
	ModTime time.Time
	// EXIF holds the camera fields that are present, keyed by label.
	EXIF map[string]string
}

// Info reads the header and EXIF block of the file at path.
func (il *ImageLoader) Info(path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image config: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting file stats: %w", err)
	}

	info := &FileInfo{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Format:  format,
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
		EXIF:    map[string]string{},
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seeking file for exif: %w", err)
	}
	x, err := exif.Decode(f)
	if err != nil {
		// Most PNG, BMP and GIF files carry no EXIF block.
		il.logger.WithField("filepath", path).Debug("No EXIF data")
		return info, nil
	}

	for label, field := range map[string]exif.FieldName{
		"Camera Make":  exif.Make,
		"Camera Model": exif.Model,
		"Lens":         exif.LensModel,
		"ISO":          exif.ISOSpeedRatings,
	} {
		if tag, err := x.Get(field); err == nil {
			info.EXIF[label] = tag.String()
		}
	}
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			info.EXIF["Aperture"] = fmt.Sprintf("f/%.1f", float64(num)/float64(den))
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil {
			info.EXIF["Exposure Time"] = fmt.Sprintf("%d/%d s", num, den)
		}
	}
	if taken, err := x.DateTime(); err == nil {
		info.EXIF["Taken"] = taken.Format("2006-01-02 15:04:05")
	}
	return info, nil
}
