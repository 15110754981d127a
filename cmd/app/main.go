// Image Viewer: open or paste an image, pan by dragging, zoom and save

package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"image-viewer/internal/assets"
	"image-viewer/internal/config"
	"image-viewer/internal/gui"
)

const (
	AppName    = "Image Viewer"
	AppID      = "com.example.image-viewer"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to a TOML settings file")
	watch := flag.Bool("watch", false, "Reload the displayed file when it changes on disk")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	settings, err := config.Load(*configPath)
	logger := initLogger(*debugMode, settings.Log.Level)
	if err != nil {
		logger.WithError(err).Warn("Using default settings")
		settings = config.Default()
	}
	if *watch {
		settings.Viewer.Watch = true
	}

	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
	}).Info("Starting Image Viewer")

	myApp := app.NewWithID(AppID)

	icon, err := assets.LoadIcon(settings.Window.Icon)
	if err != nil {
		logger.WithError(err).WithField("icon", settings.Window.Icon).Warn("Using built-in icon")
	}
	myApp.SetIcon(icon)

	viewer, err := gui.NewApplication(myApp, logger, settings)
	if err != nil {
		logger.WithError(err).Fatal("Cannot start viewer")
	}
	viewer.OpenInitial(flag.Arg(0))
	viewer.ShowAndRun()

	logger.Info("Application shutting down gracefully")
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}
