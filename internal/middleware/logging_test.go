package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWriteAuditLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	WriteAuditLog(context.Background(), "ISSUE_LICENSE", "abc123", "SUCCESS")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode audit log: %v", err)
	}
	if entry["operation"] != "ISSUE_LICENSE" || entry["subject"] != "abc123" || entry["result"] != "SUCCESS" {
		t.Errorf("unexpected audit entry: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp should be present")
	}
}
