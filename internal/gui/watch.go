package gui

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const reloadDelay = 150 * time.Millisecond

// FileWatcher reports changes to the displayed file. It watches the parent
// directory so editors that replace files atomically are still seen.
// onChange runs on the watcher goroutine; callers hop to the UI thread.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *logrus.Logger
	onChange func(path string)

	mu     sync.Mutex
	target string
	dir    string
	timer  *time.Timer
}

func NewFileWatcher(logger *logrus.Logger, onChange func(path string)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  w,
		logger:   logger,
		onChange: onChange,
	}
	go fw.watchLoop()
	return fw, nil
}

// Watch retargets the watcher. An empty path stops watching.
func (fw *FileWatcher) Watch(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		path = abs
	}
	if path == fw.target {
		return nil
	}

	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	if dir != fw.dir {
		if fw.dir != "" {
			_ = fw.watcher.Remove(fw.dir)
		}
		if dir != "" {
			if err := fw.watcher.Add(dir); err != nil {
				fw.target, fw.dir = "", ""
				return err
			}
		}
		fw.dir = dir
	}
	fw.target = path

	fw.logger.WithField("filepath", path).Debug("Watching file")
	return nil
}

// Target returns the watched file, if any.
func (fw *FileWatcher) Target() string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.target
}

func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fw.schedule(filepath.Clean(event.Name))
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.WithError(err).Warn("File watcher error")
		}
	}
}

// schedule coalesces bursts of writes into one notification.
func (fw *FileWatcher) schedule(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if name != fw.target {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	target := fw.target
	fw.timer = time.AfterFunc(reloadDelay, func() {
		fw.mu.Lock()
		current := fw.target
		fw.mu.Unlock()
		if current == target {
			fw.onChange(target)
		}
	})
}
