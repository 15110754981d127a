// Menu handler for viewer actions and their keyboard shortcuts
package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/sirupsen/logrus"

	"image-viewer/internal/io"
)

// MenuActions are the operations reachable from menus and shortcuts.
type MenuActions struct {
	Open      func()
	Save      func()
	Quit      func()
	ZoomIn    func()
	ZoomOut   func()
	ResetZoom func()
	Paste     func()
	Info      func()
}

// MenuHandler builds the main menu and registers the matching shortcuts
type MenuHandler struct {
	window  fyne.Window
	logger  *logrus.Logger
	actions MenuActions
}

func NewMenuHandler(window fyne.Window, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window: window,
		logger: logger,
	}
}

func (mh *MenuHandler) SetCallbacks(actions MenuActions) {
	mh.actions = actions
}

func shortcut(key fyne.KeyName, mod fyne.KeyModifier) *desktop.CustomShortcut {
	return &desktop.CustomShortcut{KeyName: key, Modifier: mod}
}

// binding ties one shortcut to an action. Only the first binding of an
// action is shown on its menu item.
type binding struct {
	shortcut fyne.Shortcut
	action   func()
}

func (mh *MenuHandler) bindings() []binding {
	primary := fyne.KeyModifierShortcutDefault
	return []binding{
		{shortcut(fyne.KeyO, primary), mh.actions.Open},
		{shortcut(fyne.KeyS, primary), mh.actions.Save},
		{shortcut(fyne.KeyPlus, primary), mh.actions.ZoomIn},
		{shortcut(fyne.KeyEqual, primary), mh.actions.ZoomIn},
		// "+" is shift+"=" on most layouts.
		{shortcut(fyne.KeyEqual, primary|fyne.KeyModifierShift), mh.actions.ZoomIn},
		{shortcut(fyne.KeyMinus, primary), mh.actions.ZoomOut},
		{shortcut(fyne.Key0, primary), mh.actions.ResetZoom},
		// The driver reports Ctrl+V as the standard paste shortcut.
		{&fyne.ShortcutPaste{}, mh.actions.Paste},
	}
}

// RegisterShortcuts adds every binding to the window canvas.
func (mh *MenuHandler) RegisterShortcuts() {
	for _, b := range mh.bindings() {
		action := b.action
		if action == nil {
			continue
		}
		mh.window.Canvas().AddShortcut(b.shortcut, func(sc fyne.Shortcut) {
			mh.logger.WithField("shortcut", sc.ShortcutName()).Debug("Shortcut triggered")
			action()
		})
	}
}

// Shortcuts returns the names of all registered key bindings.
func (mh *MenuHandler) Shortcuts() []string {
	var names []string
	for _, b := range mh.bindings() {
		names = append(names, b.shortcut.ShortcutName())
	}
	return names
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	b := mh.bindings()
	item := func(label string, action func(), sc fyne.Shortcut) *fyne.MenuItem {
		mi := fyne.NewMenuItem(label, action)
		mi.Shortcut = sc
		return mi
	}

	quit := fyne.NewMenuItem("Quit", mh.actions.Quit)
	quit.IsQuit = true

	fileMenu := fyne.NewMenu("File",
		item("Open...", mh.actions.Open, b[0].shortcut),
		item("Save...", mh.actions.Save, b[1].shortcut),
		fyne.NewMenuItemSeparator(),
		quit,
	)

	viewMenu := fyne.NewMenu("View",
		item("Zoom In", mh.actions.ZoomIn, b[2].shortcut),
		item("Zoom Out", mh.actions.ZoomOut, b[5].shortcut),
		item("Reset Zoom", mh.actions.ResetZoom, b[6].shortcut),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Image Info...", mh.actions.Info),
	)

	editMenu := fyne.NewMenu("Edit",
		item("Paste", mh.actions.Paste, b[7].shortcut),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, viewMenu, editMenu, helpMenu)
}

func (mh *MenuHandler) showAbout() {
	lines := []string{
		"Open, paste, pan and zoom images.",
		"",
		fmt.Sprintf("Formats: %s", strings.Join(io.GetSupportedFormats(), ", ")),
		"Drag with the left mouse button to pan.",
	}
	dialog.ShowInformation("About", strings.Join(lines, "\n"), mh.window)
}
