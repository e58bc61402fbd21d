// Package log configures the process-wide logrus logger.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/srodi/appimpact/pkg/config"
)

// New configures the logrus standard logger from cfg and returns it along with
// a close func for the log file, if one was opened.
func New(cfg config.Log, debug bool) (*logrus.Logger, func() error, error) {
	logger := logrus.StandardLogger()
	closer := func() error { return nil }

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, closer, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	if debug {
		level = logrus.DebugLevel
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closer, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		out = f
		closer = f.Close
	}

	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(level)
	logger.SetReportCaller(level >= logrus.DebugLevel)
	return logger, closer, nil
}

// Component returns an entry tagged with the component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", name)
}
