package gui

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-viewer/internal/config"
	"image-viewer/internal/core"
	"image-viewer/internal/io"
)

type fakeClipboard struct {
	image []byte
	text  string
}

func (c *fakeClipboard) ReadImage() []byte { return c.image }
func (c *fakeClipboard) ReadText() string  { return c.text }

func newTestApplication(t *testing.T, policy core.ZoomPolicy) (*Application, *logtest.Hook, *fakeClipboard) {
	t.Helper()

	settings := config.Default()
	settings.Viewer.DefaultDir = t.TempDir()
	settings.Viewer.ZoomOnLoad = string(policy)

	logger, hook := logtest.NewNullLogger()
	a, err := NewApplication(test.NewTempApp(t), logger, settings)
	require.NoError(t, err)

	clip := &fakeClipboard{}
	a.SetClipboard(clip)
	return a, hook, clip
}

// gradient returns an opaque image with distinct pixels.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, gradient(w, h)), 0o644))
	return path
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: path}).String()
}

func displayedSize(a *Application) [2]int {
	b := a.Displayed().Bounds()
	return [2]int{b.Dx(), b.Dy()}
}

func TestLoadAndZoomSizes(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "photo.png", 400, 300)))

	assert.Equal(t, [2]int{400, 300}, displayedSize(a))
	assert.Equal(t, [2]float32{400, 300}, [2]float32{a.surface.MinSize().Width, a.surface.MinSize().Height})

	a.ZoomIn()
	assert.Equal(t, [2]int{500, 375}, displayedSize(a))
	assert.Contains(t, a.status.Text, "500×375 @ 125%")

	a.ZoomOut()
	assert.Equal(t, [2]int{400, 300}, displayedSize(a))

	a.ZoomIn()
	a.ZoomIn()
	a.ResetZoom()
	assert.Equal(t, [2]int{400, 300}, displayedSize(a))
	assert.Equal(t, 1.0, a.viewer.Scale())
}

func TestZoomWithoutImageDoesNothing(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	status := a.status.Text

	a.ZoomIn()
	a.ZoomOut()
	a.ResetZoom()

	assert.Nil(t, a.Displayed())
	assert.Equal(t, 1.0, a.viewer.Scale())
	assert.Equal(t, status, a.status.Text)
}

func TestLoadFailureKeepsCurrentImage(t *testing.T) {
	a, hook, _ := newTestApplication(t, core.ZoomReset)
	good := writePNG(t, "good.png", 40, 30)
	require.NoError(t, a.LoadImage(good))
	a.ZoomIn()
	before := a.Displayed()

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	err := a.LoadImage(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnsupportedFormat)

	assert.Same(t, before, a.Displayed())
	assert.Equal(t, good, a.viewer.Metadata().Path)
	assert.Equal(t, core.ZoomInFactor, a.viewer.Scale())
	assert.Contains(t, a.status.Text, "Error")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoadMissingFileReportsError(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)

	err := a.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, a.Displayed())
}

func TestOpenInitialReportsWithoutFailing(t *testing.T) {
	a, hook, _ := newTestApplication(t, core.ZoomReset)

	a.OpenInitial(filepath.Join(t.TempDir(), "missing.png"))
	assert.Nil(t, a.Displayed())
	assert.Contains(t, a.status.Text, "Error")
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	a.OpenInitial(writePNG(t, "start.png", 12, 8))
	assert.Equal(t, [2]int{12, 8}, displayedSize(a))
}

func TestPasteBitmapResetsScale(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomKeep)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
	a.ZoomIn()
	a.ZoomIn()

	clip.image = encodePNG(t, gradient(30, 20))
	require.NoError(t, a.Paste())

	assert.Equal(t, 1.0, a.viewer.Scale())
	assert.Equal(t, [2]int{30, 20}, displayedSize(a))
	assert.Empty(t, a.viewer.Metadata().Path)
	assert.Equal(t, "png", a.viewer.Metadata().Format)
}

func TestPasteBitmapTakesPriorityOverText(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomReset)

	clip.image = encodePNG(t, gradient(30, 20))
	clip.text = fileURL(writePNG(t, "other.png", 50, 50))
	require.NoError(t, a.Paste())

	assert.Equal(t, [2]int{30, 20}, displayedSize(a))
}

func TestPasteFileURL(t *testing.T) {
	cases := []struct {
		name   string
		policy core.ZoomPolicy
		scale  float64
	}{
		{"reset", core.ZoomReset, 1.0},
		{"keep", core.ZoomKeep, core.ZoomInFactor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, _, clip := newTestApplication(t, tc.policy)
			require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
			a.ZoomIn()

			path := writePNG(t, "pasted.png", 20, 16)
			clip.text = "# copied\n" + fileURL(path) + "\n" + fileURL("/elsewhere.png")
			require.NoError(t, a.Paste())

			assert.Equal(t, path, a.viewer.Metadata().Path)
			assert.InDelta(t, tc.scale, a.viewer.Scale(), 1e-9)
		})
	}
}

func TestPasteWithNothingUsableIsNoop(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
	before := a.Displayed()

	require.NoError(t, a.Paste())

	clip.text = "just some words"
	require.NoError(t, a.Paste())

	clip.text = "https://example.com/a.png"
	require.NoError(t, a.Paste())

	assert.Same(t, before, a.Displayed())
}

func TestPasteCorruptBitmapKeepsImage(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
	before := a.Displayed()

	clip.image = []byte("garbage")
	require.Error(t, a.Paste())
	assert.Same(t, before, a.Displayed())
}

func TestSaveWritesDisplayedBitmap(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 400, 300)))
	a.ZoomIn()

	out := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, a.SaveAs(out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	saved, err := png.Decode(f)
	require.NoError(t, err)

	require.Equal(t, image.Rect(0, 0, 500, 375), saved.Bounds())

	shown := a.Displayed()
	sb := shown.Bounds()
	for y := 0; y < 375; y++ {
		for x := 0; x < 500; x++ {
			want := color.RGBAModel.Convert(shown.At(sb.Min.X+x, sb.Min.Y+y))
			got := color.RGBAModel.Convert(saved.At(x, y))
			if want != got {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSaveWithoutImage(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)

	out := filepath.Join(t.TempDir(), "out.png")
	assert.ErrorIs(t, a.SaveAs(out), core.ErrNoImage)
	assert.NoFileExists(t, out)

	// The dialog is never shown without an image.
	a.SaveFile()
}

func TestSaveUnknownExtension(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 10, 10)))

	out := filepath.Join(t.TempDir(), "out.tiff")
	assert.ErrorIs(t, a.SaveAs(out), io.ErrUnsupportedFormat)
	assert.NoFileExists(t, out)
}

func TestPanDragMovesViewport(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.adopt(gradient(2000, 2000), core.SourceFile, "big.png", "png"))
	a.scroll.Resize(fyne.NewSize(400, 300))
	a.SetScrollOffset(fyne.NewPos(50, 60))

	press := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	press.AbsolutePosition = fyne.NewPos(100, 100)
	a.surface.MouseDown(press)
	assert.Equal(t, desktop.PointerCursor, a.surface.Cursor())

	drag := &fyne.DragEvent{Dragged: fyne.NewDelta(-20, -30)}
	drag.AbsolutePosition = fyne.NewPos(80, 70)
	a.surface.Dragged(drag)

	assert.Equal(t, fyne.NewPos(70, 90), a.ScrollOffset())

	release := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	release.AbsolutePosition = fyne.NewPos(80, 70)
	a.surface.MouseUp(release)
	assert.Equal(t, desktop.DefaultCursor, a.surface.Cursor())
	assert.False(t, a.viewer.Pan.Dragging())
}

func TestPanClampsToContent(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.adopt(gradient(2000, 2000), core.SourceFile, "big.png", "png"))
	a.scroll.Resize(fyne.NewSize(400, 300))
	a.SetScrollOffset(fyne.NewPos(10, 10))

	press := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	press.AbsolutePosition = fyne.NewPos(100, 100)
	a.surface.MouseDown(press)

	// Dragging right and down scrolls towards the origin.
	drag := &fyne.DragEvent{}
	drag.AbsolutePosition = fyne.NewPos(300, 300)
	a.surface.Dragged(drag)

	assert.Equal(t, fyne.NewPos(0, 0), a.ScrollOffset())
	a.surface.DragEnd()
	assert.Equal(t, desktop.DefaultCursor, a.surface.Cursor())
}

func TestRightButtonDoesNotPan(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.adopt(gradient(2000, 2000), core.SourceFile, "big.png", "png"))
	a.scroll.Resize(fyne.NewSize(400, 300))
	a.SetScrollOffset(fyne.NewPos(50, 60))

	press := &desktop.MouseEvent{Button: desktop.MouseButtonSecondary}
	press.AbsolutePosition = fyne.NewPos(100, 100)
	a.surface.MouseDown(press)
	assert.Equal(t, desktop.DefaultCursor, a.surface.Cursor())

	drag := &fyne.DragEvent{}
	drag.AbsolutePosition = fyne.NewPos(80, 70)
	a.surface.Dragged(drag)

	assert.Equal(t, fyne.NewPos(50, 60), a.ScrollOffset())
}

func TestWindowTitleFollowsSource(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "holiday.png", 10, 10)))
	assert.Equal(t, "holiday.png - Image Viewer", a.window.Title())

	clip.image = encodePNG(t, gradient(5, 5))
	require.NoError(t, a.Paste())
	assert.Equal(t, "Image Viewer", a.window.Title())
}

func TestNewApplicationRejectsUnknownResampler(t *testing.T) {
	settings := config.Default()
	settings.Viewer.Resampler = "nearest-ish"
	logger, _ := logtest.NewNullLogger()

	_, err := NewApplication(test.NewTempApp(t), logger, settings)
	assert.Error(t, err)
}

func TestImageInfo(t *testing.T) {
	a, _, clip := newTestApplication(t, core.ZoomReset)

	_, err := a.imageInfo()
	assert.ErrorIs(t, err, core.ErrNoImage)

	path := writePNG(t, "info.png", 40, 30)
	require.NoError(t, a.LoadImage(path))
	a.ZoomIn()

	text, err := a.imageInfo()
	require.NoError(t, err)
	assert.Contains(t, text, "Size: 40×30 (png)")
	assert.Contains(t, text, "Displayed: 50×38 @ 125%")
	assert.Contains(t, text, "File: "+path)
	assert.Contains(t, text, "Zoom range: 1.7% to 10000%")
	assert.Contains(t, text, "Filter: catmullrom")

	clip.image = encodePNG(t, gradient(5, 5))
	require.NoError(t, a.Paste())
	text, err = a.imageInfo()
	require.NoError(t, err)
	assert.Contains(t, text, "Source: clipboard")
}

func TestReloadAfterRelativeOpen(t *testing.T) {
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	require.NoError(t, os.WriteFile("photo.png", encodePNG(t, gradient(40, 30)), 0o644))

	settings := config.Default()
	settings.Viewer.DefaultDir = dir
	settings.Viewer.Watch = true
	logger, _ := logtest.NewNullLogger()
	a, err := NewApplication(test.NewTempApp(t), logger, settings)
	require.NoError(t, err)
	require.NotNil(t, a.watcher)
	t.Cleanup(a.cleanup)

	a.OpenInitial("photo.png")
	require.Equal(t, [2]int{40, 30}, displayedSize(a))
	a.ZoomIn()

	abs := filepath.Join(dir, "photo.png")
	assert.Equal(t, abs, a.viewer.Metadata().Path)
	assert.Equal(t, abs, a.watcher.Target())

	// The watcher hands over the absolute name it watches.
	require.NoError(t, os.WriteFile(abs, encodePNG(t, gradient(80, 60)), 0o644))
	a.reload(a.watcher.Target())

	assert.Equal(t, [2]int{100, 75}, displayedSize(a))
	assert.Equal(t, core.ZoomInFactor, a.viewer.Scale())
}

func TestReloadIgnoresOtherFiles(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	path := writePNG(t, "a.png", 40, 30)
	require.NoError(t, a.LoadImage(path))
	before := a.Displayed()

	a.reload(writePNG(t, "b.png", 10, 10))
	assert.Same(t, before, a.Displayed())
}

func TestPasteNonImageFileIsIgnored(t *testing.T) {
	a, hook, clip := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
	before := a.Displayed()
	status := a.status.Text

	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	clip.text = fileURL(notes)

	require.NoError(t, a.Paste())
	assert.Same(t, before, a.Displayed())
	assert.Equal(t, status, a.status.Text)
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, entry.Level)
	}
}

func TestSaveGIF(t *testing.T) {
	a, _, _ := newTestApplication(t, core.ZoomReset)
	require.NoError(t, a.LoadImage(writePNG(t, "a.png", 40, 30)))
	a.ZoomOut()

	out := filepath.Join(t.TempDir(), "out.gif")
	require.NoError(t, a.SaveAs(out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "gif", format)
	assert.Equal(t, [2]int{32, 24}, [2]int{cfg.Width, cfg.Height})
	assert.Contains(t, io.SaveExtensions, ".gif")
}
