// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// AuditLog は監査ログの構造体。
type AuditLog struct {
	Operation string `json:"operation"`
	Subject   string `json:"subject,omitempty"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// WriteAuditLog は監査ログを出力する。
// subjectにはライセンスのフィンガープリントや発行記録IDを渡す。
func WriteAuditLog(ctx context.Context, operation string, subject string, result string) {
	entry := AuditLog{
		Operation: operation,
		Subject:   subject,
		Result:    result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	slog.InfoContext(ctx, "license operation completed",
		"operation", entry.Operation,
		"subject", entry.Subject,
		"result", entry.Result,
		"timestamp", entry.Timestamp,
	)
}
