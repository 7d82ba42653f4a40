package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/universal-model/universal-model/config"
)

const EnvLogLevel = "UM_LOG_LEVEL"

// Config is the "logging" extension section.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the UM_LOG_LEVEL environment variable.
	Level string `yaml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	ReportCaller bool `yaml:"report_caller"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format"`
}

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	output io.Writer = os.Stderr
	cfg    Config
)

// Configure applies the logging section of c to every logger created
// afterwards. Loggers already handed out keep their settings.
func Configure(c *config.Config) error {
	var next Config
	if c != nil {
		if err := c.UnmarshalExtension("logging", &next); err != nil {
			return err
		}
	}
	loggersMu.Lock()
	defer loggersMu.Unlock()
	cfg = next
	loggers = make(map[string]*logrus.Entry)
	return nil
}

// SetOutput redirects loggers created afterwards.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	output = w
	loggers = make(map[string]*logrus.Entry)
}

// NewLogger returns the logger for a component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logger.SetOutput(output)

	levelStr := "info"
	if env := os.Getenv(EnvLogLevel); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetReportCaller(cfg.ReportCaller)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
