//go:build unit

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/magma-studio/atelier/internal/config"
)

func TestLogger(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "info", Format: "console"}
		log := New(cfg, &buf)

		log.Info("content store ready")

		output := buf.String()
		if !strings.Contains(output, "content store ready") {
			t.Errorf("expected log output to contain 'content store ready', but got '%s'", output)
		}
		if strings.Contains(output, "{") {
			t.Errorf("expected console format, but got json-like output: %s", output)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "error", Format: "json"}
		log := New(cfg, &buf)

		testErr := errors.New("storage unavailable")
		log.Error(testErr, "hydration failed")

		var logEntry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("expected valid json output, got error: %v", err)
		}
		if logEntry["message"] != "hydration failed" {
			t.Errorf("want message 'hydration failed'; got %v", logEntry["message"])
		}
		if logEntry["error"] != "storage unavailable" {
			t.Errorf("want error 'storage unavailable'; got %v", logEntry["error"])
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "warn", Format: "json"}
		log := New(cfg, &buf)

		log.Debug("should be dropped")
		log.Info("should be dropped too")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got: %s", buf.String())
		}
	})

	t.Run("with fields", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "info", Format: "json"}
		log := New(cfg, &buf).With(map[string]interface{}{"locale": "ar"})

		log.Info("field update")

		var logEntry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("expected valid json output, got error: %v", err)
		}
		if logEntry["locale"] != "ar" {
			t.Errorf("want locale field 'ar'; got %v", logEntry["locale"])
		}
	})
}
