package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnprocessableEntity, "INVALID_LICENSE", "license could not be verified")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("want status 422, got %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("responses must not be cached")
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "INVALID_LICENSE" {
		t.Errorf("want code INVALID_LICENSE, got %s", resp.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		License string `json:"license"`
	}

	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr bool
	}{
		{"valid", `{"license":"a|b"}`, 1024, false},
		{"unknown field", `{"license":"a|b","extra":1}`, 1024, true},
		{"trailing data", `{"license":"a|b"} {}`, 1024, true},
		{"not json", `license=a|b`, 1024, true},
		{"too large", `{"license":"` + strings.Repeat("x", 100) + `"}`, 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))
			rec := httptest.NewRecorder()

			var v body
			err := DecodeJSON(rec, req, &v, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
