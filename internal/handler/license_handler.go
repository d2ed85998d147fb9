// Package handler はHTTPハンドラを提供する。
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"license-manager/internal/domain"
	"license-manager/internal/middleware"
	"license-manager/internal/usecase"
	"license-manager/pkg/httputil"
)

const maxBodyBytes = 64 << 10

// LicenseHandler はHTTPハンドラを提供する。
type LicenseHandler struct {
	service     *usecase.LicenseService
	privateKeys usecase.KeySource
	publicKeys  usecase.KeySource
	validate    *validator.Validate
}

// NewLicenseHandler は新しいLicenseHandlerを生成する。
func NewLicenseHandler(service *usecase.LicenseService, privateKeys, publicKeys usecase.KeySource) *LicenseHandler {
	return &LicenseHandler{
		service:     service,
		privateKeys: privateKeys,
		publicKeys:  publicKeys,
		validate:    validator.New(),
	}
}

// IssueLicenseRequest はライセンス発行のリクエスト形式。
type IssueLicenseRequest struct {
	ValidFrom *int64 `json:"valid_from" validate:"required"`
	ValidTo   *int64 `json:"valid_to" validate:"required"`
}

// VerifyLicenseRequest はライセンス検証のリクエスト形式。
type VerifyLicenseRequest struct {
	License string `json:"license" validate:"required"`
}

// IssueLicenseResponse はライセンス発行のレスポンス形式。
type IssueLicenseResponse struct {
	License     string `json:"license"`
	Fingerprint string `json:"fingerprint"`
}

// LicenseRecordResponse はライセンス内容のレスポンス形式。
type LicenseRecordResponse struct {
	ValidFrom int64 `json:"valid_from"`
	ValidTo   int64 `json:"valid_to"`
	Active    bool  `json:"active"`
}

// IssuedLicenseResponse は発行記録のレスポンス形式。
type IssuedLicenseResponse struct {
	ID          string `json:"id"`
	ValidFrom   int64  `json:"valid_from"`
	ValidTo     int64  `json:"valid_to"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
}

// IssuedLicenseListResponse は発行記録一覧のレスポンス形式。
type IssuedLicenseListResponse struct {
	Licenses []IssuedLicenseResponse `json:"licenses"`
}

func (h *LicenseHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := httputil.DecodeJSON(w, r, v, maxBodyBytes); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be valid JSON")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

// IssueLicense は新しいライセンスを発行する。
func (h *LicenseHandler) IssueLicense(w http.ResponseWriter, r *http.Request) {
	var req IssueLicenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	record := domain.LicenseRecord{ValidFrom: *req.ValidFrom, ValidTo: *req.ValidTo}
	content, err := h.service.IssueLicense(r.Context(), record, h.privateKeys)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "ISSUE_LICENSE", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	fingerprint := usecase.Fingerprint(content)
	middleware.WriteAuditLog(r.Context(), "ISSUE_LICENSE", fingerprint, "SUCCESS")
	httputil.JSON(w, http.StatusCreated, IssueLicenseResponse{
		License:     string(content),
		Fingerprint: fingerprint,
	})
}

// VerifyLicense はライセンスを公開鍵で開封して内容を返す。
func (h *LicenseHandler) VerifyLicense(w http.ResponseWriter, r *http.Request) {
	var req VerifyLicenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	content := []byte(req.License)
	record, err := h.service.OpenLicense(r.Context(), content, h.publicKeys)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "VERIFY_LICENSE", usecase.Fingerprint(content), "FAILED")
		httputil.Error(w, http.StatusUnprocessableEntity, "INVALID_LICENSE", "license could not be verified")
		return
	}

	middleware.WriteAuditLog(r.Context(), "VERIFY_LICENSE", usecase.Fingerprint(content), "SUCCESS")
	httputil.JSON(w, http.StatusOK, LicenseRecordResponse{
		ValidFrom: record.ValidFrom,
		ValidTo:   record.ValidTo,
		Active:    record.ActiveAt(time.Now()),
	})
}

// ListIssued は発行記録一覧を取得する。
func (h *LicenseHandler) ListIssued(w http.ResponseWriter, r *http.Request) {
	issued, err := h.service.ListIssued(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLedgerUnavailable) {
			httputil.Error(w, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "issuance ledger is not configured")
			return
		}
		middleware.WriteAuditLog(r.Context(), "LIST_ISSUED", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "LIST_ISSUED", "", "SUCCESS")
	response := IssuedLicenseListResponse{
		Licenses: make([]IssuedLicenseResponse, len(issued)),
	}
	for i, l := range issued {
		response.Licenses[i] = toIssuedLicenseResponse(l)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// GetIssued は指定された発行記録を取得する。
func (h *LicenseHandler) GetIssued(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_ID", "invalid issued license ID format")
		return
	}

	issued, err := h.service.GetIssued(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLedgerUnavailable):
			httputil.Error(w, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "issuance ledger is not configured")
		case errors.Is(err, domain.ErrIssuanceNotFound):
			middleware.WriteAuditLog(r.Context(), "GET_ISSUED", id, "FAILED")
			httputil.Error(w, http.StatusNotFound, "NOT_FOUND", "issued license not found")
		default:
			middleware.WriteAuditLog(r.Context(), "GET_ISSUED", id, "FAILED")
			httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	middleware.WriteAuditLog(r.Context(), "GET_ISSUED", id, "SUCCESS")
	httputil.JSON(w, http.StatusOK, toIssuedLicenseResponse(issued))
}

func toIssuedLicenseResponse(l *domain.IssuedLicense) IssuedLicenseResponse {
	return IssuedLicenseResponse{
		ID:          l.ID,
		ValidFrom:   l.ValidFrom,
		ValidTo:     l.ValidTo,
		Fingerprint: l.Fingerprint,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}
