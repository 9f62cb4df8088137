package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"invoizo/internal/logging"

	"github.com/sirupsen/logrus"
)

func TestNew_LevelFallback(t *testing.T) {
	logger := logging.New("nonsense", "json")
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level: want info, got %s", logger.GetLevel())
	}
	if logging.New("debug", "text").GetLevel() != logrus.DebugLevel {
		t.Errorf("level: want debug")
	}
}

func TestLogError_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("info", "json")
	logger.SetOutput(&buf)

	logging.LogError(logger, "core", "SaveDay", "writing entries", map[string]string{"date": "2025-04-01"}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "boom" {
		t.Errorf("msg: want boom, got %v", entry["msg"])
	}
	if entry["module"] != "core" || entry["funcName"] != "SaveDay" {
		t.Errorf("missing module/funcName fields: %v", entry)
	}
	if _, ok := entry["data"]; !ok {
		t.Errorf("expected data field")
	}
}
