package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/camstitch/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Color = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	var out, errOut bytes.Buffer
	l.SetOutput(&out, &errOut)
	l.Info("joining %d clips", 3)
	l.Error("boom")

	if !strings.Contains(out.String(), "[INFO] joining 3 clips") {
		t.Errorf("stdout = %q", out.String())
	}
	if strings.Contains(out.String(), "boom") {
		t.Error("ERROR lines must not go to stdout")
	}
	if !strings.Contains(errOut.String(), "[ERROR] boom") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestDebug_RespectsVerbose(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Color = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	l.SetOutput(&out, &out)

	l.Debug(false, "hidden")
	l.Debug(true, "shown")
	if strings.Contains(out.String(), "hidden") || !strings.Contains(out.String(), "shown") {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewLogger_WithFileWritesJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Color = config.ColorNever
	cfg.Logging.LogFile = filepath.Join(dir, "logs", "camstitch.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var discard bytes.Buffer
	l.SetOutput(&discard, &discard)
	l.Step("to file")
	l.Warn("careful")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(cfg.Logging.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), b)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["message"] != "to file" || rec["tag"] != "STEP" || rec["level"] != "info" {
		t.Errorf("record = %v", rec)
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["level"] != "warn" {
		t.Errorf("level = %v, want warn", rec["level"])
	}
}

func TestPrint_RawText(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Color = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	l.SetOutput(&out, &out)
	l.Print("╭──╮")
	l.Print("row\n")
	if got := out.String(); got != "╭──╮\nrow\n" {
		t.Errorf("Print output = %q", got)
	}
}
