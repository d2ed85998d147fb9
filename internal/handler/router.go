package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"license-manager/config"
)

// NewRouter はルーターを生成する。
func NewRouter(h *LicenseHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	// ルート定義
	r.Route("/v1/licenses", func(r chi.Router) {
		r.Post("/", h.IssueLicense)
		r.Get("/", h.ListIssued)
		r.Post("/verify", h.VerifyLicense)
		r.Get("/{id}", h.GetIssued)
	})

	if cfg != nil && cfg.OtelEnabled {
		return otelhttp.NewHandler(r, cfg.OtelServiceName)
	}
	return r
}
