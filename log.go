package tiled

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger from the log settings of cfg.
func NewLogger(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("tiled: log level: %w", err)
	}
	log.SetLevel(lvl)
	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("tiled: unknown log format %q", cfg.LogFormat)
	}
	return log, nil
}
