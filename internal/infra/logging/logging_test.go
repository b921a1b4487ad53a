// Tests for logger construction and the rotating chat log.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestNew_JSONByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(Config{Level: "info"}, &buf).Info("dispatch", "provider", "llama")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "dispatch" || rec["provider"] != "llama" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_TextAndLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text"}, &buf)
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected text-encoded warn record, got %q", out)
	}
}

func TestNewChatLog_WritesFileAndConsole(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chatbot_handler.log")
	var console bytes.Buffer

	chatLog, err := NewChatLog(path, &console)
	if err != nil {
		t.Fatalf("NewChatLog error = %v", err)
	}
	chatLog.Info("chat message", "user", "hello")
	if err := chatLog.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chat log: %v", err)
	}
	for name, got := range map[string]string{"file": string(data), "console": console.String()} {
		if !strings.Contains(got, "user=hello") || !strings.Contains(got, "component=chat") {
			t.Errorf("%s output missing record: %q", name, got)
		}
	}
}

func TestNewChatLog_Appends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.log")
	for _, msg := range []string{"first", "second"} {
		chatLog, err := NewChatLog(path, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("NewChatLog error = %v", err)
		}
		chatLog.Info(msg)
		_ = chatLog.Close()
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "msg=first") || !strings.Contains(string(data), "msg=second") {
		t.Errorf("expected both runs in the log, got %q", data)
	}
}

func TestNewChatLog_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewChatLog("  ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}
