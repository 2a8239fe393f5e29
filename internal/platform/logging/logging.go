package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Handler is a compact, optionally colored slog handler for console output.
type Handler struct {
	mu    *sync.Mutex
	l     *log.Logger
	level slog.Leveler
	color bool
	attrs []slog.Attr
	group string
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, level slog.Leveler, colored bool) *Handler {
	return &Handler{
		mu:    &sync.Mutex{},
		l:     log.New(out, "", 0),
		level: level,
		color: colored,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	if h.color {
		switch {
		case r.Level >= slog.LevelError:
			level = color.RedString(level)
		case r.Level >= slog.LevelWarn:
			level = color.YellowString(level)
		case r.Level >= slog.LevelInfo:
			level = color.HiBlueString(level)
		default:
			level = color.MagentaString(level)
		}
	}

	var b strings.Builder
	write := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		if h.color {
			key = color.GreenString(key)
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.l.Printf("%s %s %s%s", r.Time.Format("15:04:05.000"), level, r.Message, b.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the console handler as the process default logger.
func Setup(level string, colored bool) *slog.Logger {
	logger := slog.New(NewHandler(os.Stdout, ParseLevel(level), colored))
	slog.SetDefault(logger)
	return logger
}
