package licensefile

import (
	"bytes"
	"errors"
	"testing"

	"license-manager/internal/domain"
)

func TestEncodeRecord(t *testing.T) {
	b, err := EncodeRecord(domain.LicenseRecord{ValidFrom: 1704067200000, ValidTo: 1735603200000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"startDate":1704067200000,"endDate":1735603200000}`
	if string(b) != want {
		t.Errorf("want %s, got %s", want, b)
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.LicenseRecord
		wantErr bool
	}{
		{
			name:  "canonical",
			input: `{"startDate":1704067200000,"endDate":1735603200000}`,
			want:  domain.LicenseRecord{ValidFrom: 1704067200000, ValidTo: 1735603200000},
		},
		{
			name:  "whitespace and order",
			input: "{ \"endDate\" : 20,\n \"startDate\" : 10 }",
			want:  domain.LicenseRecord{ValidFrom: 10, ValidTo: 20},
		},
		{
			name:  "negative values",
			input: `{"startDate":-5,"endDate":-1}`,
			want:  domain.LicenseRecord{ValidFrom: -5, ValidTo: -1},
		},
		{name: "missing endDate", input: `{"startDate":1}`, wantErr: true},
		{name: "null startDate", input: `{"startDate":null,"endDate":1}`, wantErr: true},
		{name: "string value", input: `{"startDate":"1","endDate":2}`, wantErr: true},
		{name: "fraction", input: `{"startDate":1.5,"endDate":2}`, wantErr: true},
		{name: "not json", input: `startDate=1`, wantErr: true},
		{name: "empty", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecord([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrPayloadFormat) {
					t.Errorf("want ErrPayloadFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("want %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestFileForm_RoundTrip(t *testing.T) {
	sealed := &domain.SealedLicense{
		WrappedKey: bytes.Repeat([]byte{0xfe}, 256),
		Ciphertext: bytes.Repeat([]byte{0x01}, 64),
	}

	text := ToFileForm(sealed)
	got, err := FromFileForm(text + "\n")
	if err != nil {
		t.Fatalf("FromFileForm failed: %v", err)
	}
	if !bytes.Equal(got.WrappedKey, sealed.WrappedKey) || !bytes.Equal(got.Ciphertext, sealed.Ciphertext) {
		t.Error("round trip mismatch")
	}
}

func TestFromFileForm_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing delimiter", "QUJD"},
		{"invalid wrapped key", "!!!|QUJD"},
		{"invalid ciphertext", "QUJD|***"},
		{"second delimiter", "QUJD|QUJD|QUJD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromFileForm(tt.input); !errors.Is(err, domain.ErrFileFormat) {
				t.Errorf("want ErrFileFormat, got %v", err)
			}
		})
	}
}
