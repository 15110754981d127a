// Render pipeline: resample the source bitmap to the current scale factor
package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"image-viewer/internal/core"
)

const DefaultResampler = "catmullrom"

var (
	ErrInvalidScale     = errors.New("invalid scale factor")
	ErrTooLarge         = errors.New("target dimensions too large")
	ErrUnknownResampler = errors.New("unknown resampler")
)

// Resampler produces a smoothly interpolated copy of src at w×h.
type Resampler interface {
	Name() string
	Resample(src image.Image, w, h int) (image.Image, error)
}

var registry = map[string]func() Resampler{
	"catmullrom":     func() Resampler { return drawResampler{"catmullrom", draw.CatmullRom} },
	"bilinear":       func() Resampler { return drawResampler{"bilinear", draw.BiLinear} },
	"approxbilinear": func() Resampler { return drawResampler{"approxbilinear", draw.ApproxBiLinear} },
}

func register(name string, fn func() Resampler) {
	registry[name] = fn
}

// NewResampler looks up a resampler by name.
func NewResampler(name string) (Resampler, error) {
	if name == "" {
		name = DefaultResampler
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownResampler, name, Available())
	}
	return fn(), nil
}

// Available lists registered resampler names.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type drawResampler struct {
	name   string
	kernel draw.Interpolator
}

func (r drawResampler) Name() string { return r.name }

func (r drawResampler) Resample(src image.Image, w, h int) (image.Image, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r.kernel.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Pipeline renders the displayed bitmap from the source image and scale.
type Pipeline struct {
	resampler Resampler
	logger    *logrus.Logger
}

func NewPipeline(resampler Resampler, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		resampler: resampler,
		logger:    logger,
	}
}

func (p *Pipeline) Resampler() Resampler {
	return p.resampler
}

// Render resamples src to (round(w*scale), round(h*scale)). At the source
// size src is returned as is.
func (p *Pipeline) Render(src image.Image, scale float64) (image.Image, error) {
	if err := core.ValidateImage(src); err != nil {
		return nil, err
	}
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	b := src.Bounds()
	w, h := core.ScaledSize(b.Dx(), b.Dy(), scale)
	w, h = max(w, 1), max(h, 1)

	if w > core.MaxDimension || h > core.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (max: %d)", ErrTooLarge, w, h, core.MaxDimension)
	}
	if w == b.Dx() && h == b.Dy() {
		return src, nil
	}

	start := time.Now()
	out, err := p.resampler.Resample(src, w, h)
	if err != nil {
		return nil, fmt.Errorf("resample with %s: %w", p.resampler.Name(), err)
	}

	p.logger.WithFields(logrus.Fields{
		"resampler": p.resampler.Name(),
		"source":    fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"target":    fmt.Sprintf("%dx%d", w, h),
		"scale":     scale,
		"duration":  time.Since(start),
	}).Debug("Rendered image")

	return out, nil
}
