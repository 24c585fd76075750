package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestNew tests handler construction across levels and formats
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"debug json", Config{Level: "debug", Format: "json"}, false},
		{"warn text", Config{Level: "warn", Format: "text"}, false},
		{"warning alias", Config{Level: "warning"}, false},
		{"uppercase level", Config{Level: "ERROR"}, false},
		{"unknown level", Config{Level: "loud"}, true},
		{"unknown format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger without error")
			}
		})
	}
}

// TestNew_JSONOutput tests that the JSON handler writes parseable records
func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("evaluation complete", "subject", "p1", "compliant", true)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "evaluation complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["subject"] != "p1" || record["compliant"] != true {
		t.Errorf("attributes missing: %v", record)
	}
}

// TestNew_LevelFiltering tests that records below the level are dropped
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should be dropped") {
		t.Error("info record passed a warn-level logger")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("warn record missing")
	}
}
