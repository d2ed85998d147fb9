package infra

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"license-manager/config"
)

// TraceHandler はスパンのトレース情報をログに付与するslogハンドラ。
// GOOGLE_CLOUD_PROJECTが設定されていればCloud Loggingの相関フィールドも付与する。
type TraceHandler struct {
	handler     slog.Handler
	projectID   string
	otelEnabled bool
}

// NewTraceHandler はhandlerをラップしたTraceHandlerを生成する。
func NewTraceHandler(handler slog.Handler, cfg *config.Config) *TraceHandler {
	return &TraceHandler{
		handler:     handler,
		projectID:   cfg.GoogleCloudProject,
		otelEnabled: cfg.OtelEnabled,
	}
}

// Enabled はハンドラがログを処理するかどうかを返す。
func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle はトレース情報を付与してから委譲先に渡す。
func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.otelEnabled {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r.AddAttrs(h.traceAttrs(sc)...)
		}
	}
	return h.handler.Handle(ctx, r)
}

func (h *TraceHandler) traceAttrs(sc trace.SpanContext) []slog.Attr {
	traceID := sc.TraceID().String()
	spanID := sc.SpanID().String()

	attrs := []slog.Attr{
		slog.String("trace", traceID),
		slog.String("spanId", spanID),
		slog.Bool("traceSampled", sc.IsSampled()),
	}
	if h.projectID != "" {
		attrs = append(attrs,
			slog.String("logging.googleapis.com/trace", "projects/"+h.projectID+"/traces/"+traceID),
			slog.String("logging.googleapis.com/spanId", spanID),
		)
	}
	return attrs
}

// WithAttrs は属性を追加した新しいハンドラを返す。
func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.wrap(h.handler.WithAttrs(attrs))
}

// WithGroup はグループを追加した新しいハンドラを返す。
func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return h.wrap(h.handler.WithGroup(name))
}

func (h *TraceHandler) wrap(handler slog.Handler) *TraceHandler {
	return &TraceHandler{
		handler:     handler,
		projectID:   h.projectID,
		otelEnabled: h.otelEnabled,
	}
}

// ParseLevel はLOG_LEVELの値をslog.Levelに変換する。不明な値はINFO。
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger はトレース情報付きのJSONロガーをデフォルトに設定する。
// CLIは標準エラー、サーバーは標準出力を渡す。
func SetupLogger(cfg *config.Config, level slog.Level, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}
	if cfg.GoogleCloudProject != "" {
		opts.ReplaceAttr = cloudLoggingAttr
	}
	slog.SetDefault(slog.New(NewTraceHandler(slog.NewJSONHandler(w, opts), cfg)))
}

// cloudLoggingAttr はlevel/msgをCloud Loggingのseverity/messageに置き換える。
func cloudLoggingAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		if level, ok := a.Value.Any().(slog.Level); ok && level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
