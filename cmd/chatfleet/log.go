// ABOUTME: Logger setup for the chatfleet CLI
// ABOUTME: Colorized console handler that prefixes each line with the bot identity

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/chatfleet/internal/config"
)

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&consoleHandler{mu: &sync.Mutex{}, level: level})
}

// installLogger builds the logger for cfg and makes it the process default,
// so components that fall back to slog.Default() honour the same settings.
func installLogger(cfg config.LoggingConfig) *slog.Logger {
	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	return logger
}

// consoleHandler writes one colored line per record. The "identity"
// attribute is pulled out of the attribute list and shown as a prefix so
// interleaved output from many bots stays readable.
type consoleHandler struct {
	mu       *sync.Mutex
	level    slog.Level
	identity string
	attrs    []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch {
	case r.Level >= slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	case r.Level >= slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case r.Level >= slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	default:
		buf.WriteString(color.MagentaString("DBG "))
	}

	identity := h.identity
	var recordAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "identity" {
			identity = a.Value.String()
			return true
		}
		recordAttrs = append(recordAttrs, a)
		return true
	})

	if identity != "" {
		buf.WriteString(color.GreenString("[" + identity + "] "))
	}
	buf.WriteString(r.Message)

	for _, attrs := range [][]slog.Attr{h.attrs, recordAttrs} {
		for _, a := range attrs {
			buf.WriteString(color.HiBlackString(" " + a.Key + "="))
			buf.WriteString(a.Value.String())
		}
	}
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(color.Output, buf.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &consoleHandler{
		mu:       h.mu,
		level:    h.level,
		identity: h.identity,
		attrs:    make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs)),
	}
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		if a.Key == "identity" {
			next.identity = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup is a no-op; chatfleet never groups attributes.
func (h *consoleHandler) WithGroup(string) slog.Handler {
	return h
}
