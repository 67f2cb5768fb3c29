package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the ID that ties a client request to its log line.
const RequestIDHeader = "X-Request-ID"

type Options struct {
	// Level is a slog level name such as "debug" or "WARN". Empty or
	// unparseable values mean info.
	Level string
	// File, when set, receives a copy of every record.
	File string
	// Service is attached to every record.
	Service string
}

// New builds the process logger and makes it the slog default. Records are
// JSON lines on stderr with UTC timestamps and durations in milliseconds.
// Debug level adds the source location. The returned func closes the log
// file, if any.
func New(opts Options) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFile := func() {}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFile = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}))
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	slog.SetDefault(logger)
	return logger, closeFile, nil
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch {
	case len(groups) == 0 && a.Key == slog.TimeKey:
		a.Value = slog.TimeValue(a.Value.Time().UTC())
	case a.Value.Kind() == slog.KindDuration:
		a.Value = slog.Float64Value(float64(a.Value.Duration()) / float64(time.Millisecond))
	}
	return a
}

// RequestLogger tags each request with an ID, reusing the caller's
// X-Request-ID when present and echoing it back, then logs one line once the
// handler chain is done. 5xx answers log at error and 4xx at warn. Requests
// to the quiet paths are not logged.
func RequestLogger(logger *slog.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		if skip[c.Request.URL.Path] {
			return
		}
		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("bytes", max(c.Writer.Size(), 0)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}
