package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	appCtx "github.com/baechuer/otp-dashboard/internal/pkg/context"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Log is the process logger. It discards everything until Init runs.
var Log = zerolog.Nop()

type Options struct {
	Level  string // zerolog level name; unknown falls back to info
	Format string // "json", anything else is console
}

// OptionsFromEnv reads LOG_LEVEL and LOG_FORMAT. main calls it before the
// full config is loaded so config errors are logged too.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

func Init(opts Options) {
	InitWithWriter(os.Stdout, opts)
}

func InitWithWriter(w io.Writer, opts Options) {
	Log = New(w, opts)
	zlog.Logger = Log
}

// New builds a logger without installing it.
func New(w io.Writer, opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(opts.Format, "json") {
		return zerolog.New(w).Level(level).With().
			Timestamp().
			Str("service", "dashboard-bff").
			Logger()
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Ctx scopes Log to the request: request_id, and trace_id when a span is
// active.
func Ctx(ctx context.Context) *zerolog.Logger {
	reqID := appCtx.GetRequestID(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if reqID == "" && !sc.IsValid() {
		return &Log
	}

	c := Log.With()
	if reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if sc.IsValid() {
		c = c.Str("trace_id", sc.TraceID().String())
	}
	l := c.Logger()
	return &l
}
