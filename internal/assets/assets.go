// Package assets holds the bundled window icon.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

//go:embed icon.svg
var iconSVG []byte

// Icon is the embedded application icon.
var Icon = fyne.NewStaticResource("icon.svg", iconSVG)

// ResolvePath finds rel next to the running executable (packaged layout)
// or under the working directory (development layout). Absolute paths are
// returned unchanged when they exist.
func ResolvePath(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err != nil {
			return "", err
		}
		return rel, nil
	}

	var bases []string
	if exe, err := os.Executable(); err == nil {
		bases = append(bases, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		bases = append(bases, wd)
	}
	return resolveIn(rel, bases)
}

func resolveIn(rel string, bases []string) (string, error) {
	for _, base := range bases {
		candidate := filepath.Join(base, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resource %q not found in %v: %w", rel, bases, os.ErrNotExist)
}

// LoadIcon returns the icon at path, or the embedded icon when path is empty.
func LoadIcon(path string) (fyne.Resource, error) {
	if path == "" {
		return Icon, nil
	}
	resolved, err := ResolvePath(path)
	if err != nil {
		return Icon, err
	}
	res, err := fyne.LoadResourceFromPath(resolved)
	if err != nil {
		return Icon, fmt.Errorf("load icon %s: %w", resolved, err)
	}
	return res, nil
}
