// Image surface widget: shows the rendered bitmap and turns pointer events into pan gestures
package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"image-viewer/internal/core"
)

// ImageSurface displays a bitmap at exactly its pixel size so the enclosing
// scroll container sees the true content size.
type ImageSurface struct {
	widget.BaseWidget

	image  *canvas.Image
	cursor desktop.Cursor

	onPress   func(core.Button, core.Point)
	onDrag    func(core.Point)
	onRelease func(core.Button)
}

var (
	_ desktop.Mouseable  = (*ImageSurface)(nil)
	_ desktop.Cursorable = (*ImageSurface)(nil)
	_ fyne.Draggable     = (*ImageSurface)(nil)
)

func NewImageSurface() *ImageSurface {
	s := &ImageSurface{
		cursor: desktop.DefaultCursor,
	}
	s.image = &canvas.Image{FillMode: canvas.ImageFillStretch}
	s.ExtendBaseWidget(s)
	return s
}

func (s *ImageSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.image)
}

// SetImage shows img and resizes the surface to match it.
func (s *ImageSurface) SetImage(img image.Image) {
	s.image.Image = img
	if img == nil {
		s.image.SetMinSize(fyne.NewSize(0, 0))
	} else {
		b := img.Bounds()
		s.image.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	}
	s.image.Refresh()
	s.Refresh()
}

// Displayed returns the bitmap currently on screen.
func (s *ImageSurface) Displayed() image.Image {
	return s.image.Image
}

func (s *ImageSurface) MinSize() fyne.Size {
	s.ExtendBaseWidget(s)
	return s.image.MinSize()
}

func (s *ImageSurface) SetCursor(c desktop.Cursor) {
	s.cursor = c
}

func (s *ImageSurface) Cursor() desktop.Cursor {
	return s.cursor
}

// SetCallbacks wires the pointer handlers
func (s *ImageSurface) SetCallbacks(onPress func(core.Button, core.Point), onDrag func(core.Point), onRelease func(core.Button)) {
	s.onPress = onPress
	s.onDrag = onDrag
	s.onRelease = onRelease
}

func (s *ImageSurface) MouseDown(event *desktop.MouseEvent) {
	if s.onPress != nil {
		s.onPress(toButton(event.Button), toPoint(event.AbsolutePosition))
	}
}

func (s *ImageSurface) MouseUp(event *desktop.MouseEvent) {
	if s.onRelease != nil {
		s.onRelease(toButton(event.Button))
	}
}

func (s *ImageSurface) Dragged(event *fyne.DragEvent) {
	if s.onDrag != nil {
		s.onDrag(toPoint(event.AbsolutePosition))
	}
}

// DragEnd can arrive without a matching MouseUp; releasing twice is harmless.
func (s *ImageSurface) DragEnd() {
	if s.onRelease != nil {
		s.onRelease(core.ButtonLeft)
	}
}

func toButton(b desktop.MouseButton) core.Button {
	switch b {
	case desktop.MouseButtonPrimary:
		return core.ButtonLeft
	case desktop.MouseButtonSecondary:
		return core.ButtonRight
	default:
		return core.ButtonMiddle
	}
}

func toPoint(p fyne.Position) core.Point {
	return core.Point{X: p.X, Y: p.Y}
}
