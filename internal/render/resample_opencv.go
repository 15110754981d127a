//go:build opencv

package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

func init() {
	register("opencv", func() Resampler { return opencvResampler{} })
}

// opencvResampler uses Lanczos4 when enlarging and area averaging when shrinking.
type opencvResampler struct{}

func (opencvResampler) Name() string { return "opencv" }

func (opencvResampler) Resample(src image.Image, w, h int) (image.Image, error) {
	mat, err := gocv.ImageToMatRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("convert to mat: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("input matrix is empty")
	}

	interpolation := gocv.InterpolationLanczos4
	if w < mat.Cols() || h < mat.Rows() {
		interpolation = gocv.InterpolationArea
	}

	result := gocv.NewMat()
	defer result.Close()

	if err := gocv.Resize(mat, &result, image.Point{X: w, Y: h}, 0, 0, interpolation); err != nil {
		return nil, err
	}
	if result.Empty() {
		return nil, fmt.Errorf("scaling operation failed")
	}

	return result.ToImage()
}
