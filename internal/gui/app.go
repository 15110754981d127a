// Main window: image surface in a scroll viewport, status line and menus
package gui

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-viewer/internal/config"
	"image-viewer/internal/core"
	"image-viewer/internal/io"
	"image-viewer/internal/render"
)

// Application is the single viewer window
type Application struct {
	app      fyne.App
	window   fyne.Window
	logger   *logrus.Logger
	settings config.Settings

	// Core components
	viewer    *core.Viewer
	loader    *io.ImageLoader
	pipeline  *render.Pipeline
	clipboard Clipboard
	watcher   *FileWatcher

	// GUI components
	surface     *ImageSurface
	scroll      *container.Scroll
	status      *widget.Label
	menuHandler *MenuHandler

	// rendered is the bitmap on screen and what Save writes.
	rendered image.Image
}

func NewApplication(app fyne.App, logger *logrus.Logger, settings config.Settings) (*Application, error) {
	resampler, err := render.NewResampler(settings.Viewer.Resampler)
	if err != nil {
		return nil, err
	}

	window := app.NewWindow(settings.Window.Title)
	window.Resize(fyne.NewSize(settings.Window.Width, settings.Window.Height))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		settings:  settings,
		viewer:    core.NewViewer(settings.ViewerOptions()),
		loader:    io.NewImageLoader(logger),
		pipeline:  render.NewPipeline(resampler, logger),
		clipboard: newSystemClipboard(window.Clipboard(), logger),
	}

	if settings.Viewer.Watch {
		a.watcher, err = NewFileWatcher(logger, func(path string) {
			fyne.Do(func() { a.reload(path) })
		})
		if err != nil {
			// Viewing still works without reloads.
			logger.WithError(err).Warn("File watcher unavailable")
		}
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a, nil
}

func (a *Application) initializeGUI() {
	a.surface = NewImageSurface()
	a.scroll = container.NewScroll(container.NewCenter(a.surface))
	a.scroll.Direction = container.ScrollBoth
	a.status = widget.NewLabel("Open (Ctrl+O) or paste (Ctrl+V) an image")
	a.menuHandler = NewMenuHandler(a.window, a.logger)
}

func (a *Application) setupLayout() {
	a.window.SetContent(container.NewBorder(nil, a.status, nil, nil, a.scroll))
}

func (a *Application) setupCallbacks() {
	a.surface.SetCallbacks(a.onPress, a.onDrag, a.onRelease)

	a.menuHandler.SetCallbacks(MenuActions{
		Open:      a.OpenFile,
		Save:      a.SaveFile,
		Quit:      a.quit,
		ZoomIn:    a.ZoomIn,
		ZoomOut:   a.ZoomOut,
		ResetZoom: a.ResetZoom,
		Paste: func() {
			_ = a.Paste()
		},
		Info: a.ShowInfo,
	})
	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.menuHandler.RegisterShortcuts()
}

// SetClipboard replaces the system clipboard reader.
func (a *Application) SetClipboard(c Clipboard) {
	a.clipboard = c
}

// OpenFile shows the file-open dialog. Cancelling does nothing.
func (a *Application) OpenFile() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("Open failed", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		_ = a.LoadImage(path)
	}, a.window)

	d.SetFilter(storage.NewExtensionFileFilter(io.OpenExtensions))
	a.setDialogLocation(d)
	d.Show()
}

// LoadImage replaces the current image with the file at path. On failure
// the previous image stays and the error is reported.
func (a *Application) LoadImage(path string) error {
	if err := a.loadFile(path, core.SourceFile); err != nil {
		a.showError("Load failed", err)
		return err
	}
	return nil
}

// OpenInitial loads the startup path. Failures are logged and shown in the
// status line only, since the window is not up yet.
func (a *Application) OpenInitial(path string) {
	if path == "" {
		return
	}
	if err := a.loadFile(path, core.SourceFile); err != nil {
		a.logger.WithError(err).WithField("filepath", path).Error("Failed to open startup image")
		a.updateStatusMessage(fmt.Sprintf("Error: %s", err.Error()))
	}
}

func (a *Application) loadFile(path string, src core.Source) error {
	// The watcher reports absolute names, so the viewer keeps one too.
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	img, format, err := a.loader.Load(path)
	if err != nil {
		return err
	}
	return a.adopt(img, src, path, format)
}

func (a *Application) reload(path string) {
	if path != a.viewer.Metadata().Path {
		return
	}
	if err := a.loadFile(path, core.SourceReload); err != nil {
		// Editors often leave a half-written file behind for a moment.
		a.logger.WithError(err).WithField("filepath", path).Warn("Reload failed")
		a.updateStatusMessage(fmt.Sprintf("Reload failed: %s", err.Error()))
		return
	}
	a.logger.WithField("filepath", path).Info("Image reloaded")
}

func (a *Application) adopt(img image.Image, src core.Source, path, format string) error {
	if err := a.viewer.SetImage(img, src, path, format); err != nil {
		return err
	}

	title := a.settings.Window.Title
	if path != "" {
		title = fmt.Sprintf("%s - %s", filepath.Base(path), title)
	}
	a.window.SetTitle(title)

	if a.watcher != nil {
		if err := a.watcher.Watch(path); err != nil {
			a.logger.WithError(err).WithField("filepath", path).Warn("Cannot watch file")
		}
	}

	a.logger.WithFields(logrus.Fields{
		"filepath": path,
		"format":   a.viewer.Metadata().Format,
		"scale":    a.viewer.Scale(),
	}).Info("Image displayed")

	return a.updateImage()
}

// updateImage renders the current image at the current scale and shows it.
func (a *Application) updateImage() error {
	if !a.viewer.HasImage() {
		return nil
	}

	rendered, err := a.pipeline.Render(a.viewer.Image(), a.viewer.Scale())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	a.rendered = rendered
	a.surface.SetImage(rendered)
	a.scroll.Refresh()
	a.updateStatusMessage(a.describe())
	return nil
}

func (a *Application) describe() string {
	md := a.viewer.Metadata()
	w, h := a.viewer.TargetSize()
	name := "clipboard"
	if md.Path != "" {
		name = filepath.Base(md.Path)
	}
	return fmt.Sprintf("%s  %d×%d @ %.0f%%  (%d×%d %s)",
		name, w, h, a.viewer.Scale()*100, md.Width, md.Height, md.Format)
}

func (a *Application) refreshView() {
	if err := a.updateImage(); err != nil {
		a.showError("Render failed", err)
	}
}

func (a *Application) ZoomIn() {
	if a.viewer.ZoomIn() {
		a.refreshView()
	}
}

func (a *Application) ZoomOut() {
	if a.viewer.ZoomOut() {
		a.refreshView()
	}
}

func (a *Application) ResetZoom() {
	if a.viewer.ResetZoom() {
		a.refreshView()
	}
}

// Paste adopts a clipboard bitmap, or loads the first local file of a
// copied file list. Anything else is ignored.
func (a *Application) Paste() error {
	if a.clipboard == nil {
		return nil
	}

	if data := a.clipboard.ReadImage(); len(data) > 0 {
		img, format, err := a.loader.DecodeBytes(data)
		if err == nil {
			err = a.adopt(img, core.SourceClipboard, "", format)
		}
		if err != nil {
			err = fmt.Errorf("paste image: %w", err)
			a.showError("Paste failed", err)
			return err
		}
		return nil
	}

	if path, ok := FirstLocalFile(a.clipboard.ReadText()); ok {
		if io.IsSupportedImageFormat(path) {
			return a.LoadImage(path)
		}
		a.logger.WithField("filepath", path).Debug("Pasted file is not an image, ignoring")
		return nil
	}

	a.logger.Debug("Clipboard holds no image, nothing pasted")
	return nil
}

// SaveFile shows the file-save dialog for the displayed bitmap.
func (a *Application) SaveFile() {
	if a.rendered == nil {
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError("Save failed", err)
			return
		}
		if writer == nil {
			return
		}
		if err := a.saveToWriter(writer); err != nil {
			a.showError("Save failed", err)
			return
		}
		a.savedTo(writer.URI().Path())
	}, a.window)

	d.SetFileName("image.png")
	d.SetFilter(storage.NewExtensionFileFilter(io.SaveExtensions))
	a.setDialogLocation(d)
	d.Show()
}

func (a *Application) saveToWriter(writer fyne.URIWriteCloser) error {
	format, err := io.FormatFromPath(writer.URI().Name())
	if err == nil {
		err = a.loader.Encode(writer, a.rendered, format)
	}
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if derr := storage.Delete(writer.URI()); derr != nil {
			a.logger.WithError(derr).Debug("Could not remove partial file")
		}
		return err
	}
	return nil
}

// SaveAs writes the displayed bitmap to path.
func (a *Application) SaveAs(path string) error {
	if a.rendered == nil {
		return core.ErrNoImage
	}
	if err := a.loader.Save(a.rendered, path); err != nil {
		return err
	}
	a.savedTo(path)
	return nil
}

func (a *Application) savedTo(path string) {
	b := a.rendered.Bounds()
	a.logger.WithFields(logrus.Fields{
		"filepath": path,
		"size":     fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
	}).Info("Image saved")
	a.updateStatusMessage(fmt.Sprintf("Saved %s", path))
}

// ShowInfo shows the size, file details and camera fields of the image.
func (a *Application) ShowInfo() {
	text, err := a.imageInfo()
	if err != nil {
		a.showError("Image info failed", err)
		return
	}
	dialog.ShowInformation("Image Info", text, a.window)
}

func (a *Application) imageInfo() (string, error) {
	if !a.viewer.HasImage() {
		return "", core.ErrNoImage
	}

	md := a.viewer.Metadata()
	w, h := a.viewer.TargetSize()
	lines := []string{
		fmt.Sprintf("Size: %d×%d (%s)", md.Width, md.Height, md.Format),
		fmt.Sprintf("Displayed: %d×%d @ %.0f%%", w, h, a.viewer.Scale()*100),
	}
	lo, hi := a.viewer.ScaleBounds()
	lines = append(lines,
		fmt.Sprintf("Zoom range: %.1f%% to %.0f%%", lo*100, hi*100),
		fmt.Sprintf("Filter: %s", a.pipeline.Resampler().Name()),
	)
	if md.Path == "" {
		lines = append(lines, "Source: clipboard")
		return strings.Join(lines, "\n"), nil
	}

	info, err := a.loader.Info(md.Path)
	if err != nil {
		return "", err
	}
	lines = append(lines,
		fmt.Sprintf("File: %s", md.Path),
		fmt.Sprintf("Bytes: %d", info.Size),
		fmt.Sprintf("Modified: %s", info.ModTime.Format("2006-01-02 15:04:05")),
	)

	labels := make([]string, 0, len(info.EXIF))
	for label := range info.EXIF {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%s: %s", label, info.EXIF[label]))
	}
	return strings.Join(lines, "\n"), nil
}

// Displayed returns the bitmap on screen.
func (a *Application) Displayed() image.Image {
	return a.rendered
}

func (a *Application) setDialogLocation(d *dialog.FileDialog) {
	dir := a.settings.Viewer.DefaultDir
	if dir == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		a.logger.WithError(err).WithField("dir", dir).Debug("Default directory unavailable")
		return
	}
	d.SetLocation(lister)
}

func (a *Application) onPress(b core.Button, at core.Point) {
	if a.viewer.Pan.Press(b, at) {
		a.surface.SetCursor(desktop.PointerCursor)
	}
}

func (a *Application) onDrag(at core.Point) {
	if dx, dy, ok := a.viewer.Pan.Move(at); ok {
		a.scrollBy(dx, dy)
	}
}

func (a *Application) onRelease(b core.Button) {
	if a.viewer.Pan.Release(b) {
		a.surface.SetCursor(desktop.DefaultCursor)
	}
}

func (a *Application) scrollBy(dx, dy float32) {
	content := a.scroll.Content.MinSize()
	viewport := a.scroll.Size()

	offset := core.ApplyDelta(core.Point{X: a.scroll.Offset.X, Y: a.scroll.Offset.Y}, dx, dy)
	offset = core.ClampOffset(offset,
		core.Point{X: content.Width, Y: content.Height},
		core.Point{X: viewport.Width, Y: viewport.Height})

	a.SetScrollOffset(fyne.NewPos(offset.X, offset.Y))
}

// ScrollOffset returns the viewport's scroll position.
func (a *Application) ScrollOffset() fyne.Position {
	return a.scroll.Offset
}

func (a *Application) SetScrollOffset(pos fyne.Position) {
	a.scroll.Offset = pos
	a.scroll.Refresh()
}

func (a *Application) updateStatusMessage(message string) {
	if a.status != nil {
		a.status.SetText(message)
	}
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	a.updateStatusMessage(fmt.Sprintf("Error: %s", err.Error()))
	dialog.ShowError(err, a.window)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing viewer window")

	a.window.SetCloseIntercept(func() {
		a.quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) quit() {
	a.cleanup()
	a.app.Quit()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.WithError(err).Warn("Closing file watcher")
		}
		a.watcher = nil
	}
}
