package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// InfoLogger oddiy ma'lumot loglari uchun
	InfoLogger = log.New(os.Stdout, "INFO: ", log.LstdFlags)
	// ErrorLogger xatolar uchun
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.LstdFlags)

	base = logrus.New()
)

// Options controls where and how log lines are written.
type Options struct {
	File   string
	Format string
	Level  string
}

// Init logrus asosidagi loggerlarni sozlaydi. Env: LOG_FILE, LOG_FORMAT, LOG_LEVEL.
func Init() {
	InitWithOptions(Options{
		File:   os.Getenv("LOG_FILE"),
		Format: os.Getenv("LOG_FORMAT"),
		Level:  os.Getenv("LOG_LEVEL"),
	})
}

// InitWithOptions is Init without reading the environment.
func InitWithOptions(opts Options) {
	l := logrus.New()

	var out io.Writer = os.Stdout
	if strings.TrimSpace(opts.File) != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	l.SetOutput(out)

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(strings.TrimSpace(opts.Level)); err == nil && opts.Level != "" {
		level = parsed
	}
	l.SetLevel(level)

	base = l
	InfoLogger = log.New(l.WriterLevel(logrus.InfoLevel), "", 0)
	ErrorLogger = log.New(l.WriterLevel(logrus.ErrorLevel), "", 0)
}

// WithFields returns a structured entry on the shared logger.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// SetOutput redirects all loggers, used by tests to capture output.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
	InfoLogger = log.New(base.WriterLevel(logrus.InfoLevel), "", 0)
	ErrorLogger = log.New(base.WriterLevel(logrus.ErrorLevel), "", 0)
}
