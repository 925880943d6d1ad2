package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("sweep finished", "pairs", 42)
	logger.Debug("suppressed at info level")

	if !strings.Contains(stderr.String(), "sweep finished") {
		t.Errorf("stderr output missing message: %q", stderr.String())
	}
	if strings.Contains(stderr.String(), "suppressed") {
		t.Error("debug message leaked through info level")
	}

	// File side is JSON, one object per line
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["msg"] != "sweep finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["pairs"] != float64(42) {
		t.Errorf("pairs = %v", entry["pairs"])
	}
}
