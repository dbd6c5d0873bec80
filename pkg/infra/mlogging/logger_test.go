// 指示: miu200521358
package mlogging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := NewLogger(Options{Level: logging.LOG_LEVEL_WARN, Console: buf})

	logger.Info("info %d", 1)
	logger.Warn("warn %d", 2)

	out := buf.String()
	if strings.Contains(out, "info 1") {
		t.Fatalf("info should be filtered: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn 2") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestLoggerVerboseOnlyForEnabledIndex(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := NewLogger(Options{
		Level:   logging.LOG_LEVEL_ERROR,
		Verbose: []logging.VerboseIndex{logging.VERBOSE_INDEX_SOLVE},
		Console: buf,
	})

	logger.Verbose(logging.VERBOSE_INDEX_MATCH, "match")
	logger.Verbose(logging.VERBOSE_INDEX_SOLVE, "solve")

	out := buf.String()
	if strings.Contains(out, "match") {
		t.Fatalf("match verbose should be disabled: %s", out)
	}
	if !strings.Contains(out, "[V] solve") {
		t.Fatalf("solve verbose missing: %s", out)
	}
}

func TestLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retarget.log")
	logger := NewLogger(Options{Level: logging.LOG_LEVEL_DEBUG, Console: bytes.NewBuffer(nil), FilePath: path})
	logger.Error("failed: %s", "arc")
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if !strings.Contains(string(b), "[ERROR] failed: arc") {
		t.Fatalf("file log mismatch: %s", string(b))
	}
}
