// Package licensefile はライセンスペイロードとライセンスファイルの形式を扱う。
package licensefile

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"license-manager/internal/domain"
)

const fileDelimiter = "|"

// payload はペイロードJSONの形。フィールド名と順序は固定。
type payload struct {
	StartDate int64 `json:"startDate"`
	EndDate   int64 `json:"endDate"`
}

// EncodeRecord はレコードを {"startDate":..,"endDate":..} のJSONにする。
func EncodeRecord(r domain.LicenseRecord) ([]byte, error) {
	b, err := json.Marshal(payload{StartDate: r.ValidFrom, EndDate: r.ValidTo})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPayloadFormat, err)
	}
	return b, nil
}

// DecodeRecord はペイロードJSONからレコードを復元する。
// フィールドの欠落や整数でない値はErrPayloadFormatとする。
func DecodeRecord(b []byte) (domain.LicenseRecord, error) {
	var raw struct {
		StartDate json.RawMessage `json:"startDate"`
		EndDate   json.RawMessage `json:"endDate"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&raw); err != nil {
		return domain.LicenseRecord{}, fmt.Errorf("%w: %v", domain.ErrPayloadFormat, err)
	}

	from, err := parseMillis("startDate", raw.StartDate)
	if err != nil {
		return domain.LicenseRecord{}, err
	}
	to, err := parseMillis("endDate", raw.EndDate)
	if err != nil {
		return domain.LicenseRecord{}, err
	}
	return domain.LicenseRecord{ValidFrom: from, ValidTo: to}, nil
}

func parseMillis(field string, raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: %s is missing", domain.ErrPayloadFormat, field)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", domain.ErrPayloadFormat, field)
	}
	return v, nil
}

// ToFileForm は base64(wrappedKey) "|" base64(ciphertext) を返す。
func ToFileForm(s *domain.SealedLicense) string {
	return base64.StdEncoding.EncodeToString(s.WrappedKey) +
		fileDelimiter +
		base64.StdEncoding.EncodeToString(s.Ciphertext)
}

// FromFileForm はライセンスファイルの内容を分割してデコードする。
func FromFileForm(text string) (*domain.SealedLicense, error) {
	keyPart, dataPart, ok := strings.Cut(strings.TrimSpace(text), fileDelimiter)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q delimiter", domain.ErrFileFormat, fileDelimiter)
	}

	wrapped, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped key: %v", domain.ErrFileFormat, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", domain.ErrFileFormat, err)
	}

	return &domain.SealedLicense{
		WrappedKey: wrapped,
		Ciphertext: ciphertext,
	}, nil
}
