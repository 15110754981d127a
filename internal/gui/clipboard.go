package gui

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"
)

// Clipboard is the read side of the system clipboard.
type Clipboard interface {
	// ReadImage returns an encoded bitmap payload (PNG) or nil.
	ReadImage() []byte
	// ReadText returns the text payload, which may be a URI list.
	ReadText() string
}

// systemClipboard reads bitmaps through golang.design/x/clipboard and text
// through fyne.
type systemClipboard struct {
	text   fyne.Clipboard
	logger *logrus.Logger

	once    sync.Once
	initErr error
}

func newSystemClipboard(text fyne.Clipboard, logger *logrus.Logger) *systemClipboard {
	return &systemClipboard{text: text, logger: logger}
}

func (c *systemClipboard) ReadImage() []byte {
	c.once.Do(func() {
		c.initErr = clipboard.Init()
		if c.initErr != nil {
			c.logger.WithError(c.initErr).Warn("Bitmap clipboard unavailable, only file URLs can be pasted")
		}
	})
	if c.initErr != nil {
		return nil
	}
	return clipboard.Read(clipboard.FmtImage)
}

func (c *systemClipboard) ReadText() string {
	if c.text == nil {
		return ""
	}
	return c.text.Content()
}

// FirstLocalFile returns the path of the first entry of a URI list when
// that entry is a local file URL.
func FirstLocalFile(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// GNOME prefixes its file lists with the pending operation.
		if line == "" || strings.HasPrefix(line, "#") || line == "copy" || line == "cut" {
			continue
		}

		u, err := url.Parse(line)
		if err != nil || u.Scheme != "file" {
			return "", false
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", false
		}
		if u.Path == "" {
			return "", false
		}
		return localPath(u.Path), true
	}
	return "", false
}

// localPath turns a file URL path into an OS path. Windows URLs carry the
// drive after a leading slash (/C:/pics/a.png).
func localPath(p string) string {
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' && isDriveLetter(p[1]) {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
