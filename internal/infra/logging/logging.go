// Package logging builds the structured loggers used by PromptForge: the
// application logger (stdout) and the chat log (append-only rotating file
// mirrored to stdout).
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatJSON = "json"
	FormatText = "text"

	chatLogMaxSizeMB  = 50
	chatLogMaxBackups = 5
	chatLogMaxAgeDays = 30
)

// Config selects the level and encoding of a logger.
type Config struct {
	Level  string // debug | info | warn | error
	Format string // json | text
}

// New returns a logger writing to w (stdout when nil).
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to slog.Level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// ChatLog is the chat transcript logger together with its file handle.
type ChatLog struct {
	*slog.Logger
	file *lumberjack.Logger
}

// NewChatLog opens the append-only chat log at path and mirrors every record
// to console. The file is rotated by size and pruned by age.
func NewChatLog(path string, console io.Writer) (*ChatLog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("logging: chat log path is empty")
	}
	if console == nil {
		console = os.Stdout
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    chatLogMaxSizeMB,
		MaxBackups: chatLogMaxBackups,
		MaxAge:     chatLogMaxAgeDays,
	}
	handler := slog.NewTextHandler(io.MultiWriter(file, console), &slog.HandlerOptions{Level: slog.LevelInfo})
	return &ChatLog{Logger: slog.New(handler).With("component", "chat"), file: file}, nil
}

// Close flushes and closes the underlying file.
func (c *ChatLog) Close() error {
	if c == nil || c.file == nil {
		return nil
	}
	return c.file.Close()
}

// Discard returns a logger that drops every record. Used by tests and by
// components built without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
