package hybrid

import (
	"fmt"
	"math/big"
	"strings"

	"license-manager/internal/domain"
)

const keyDelimiter = "|"

// EncodeKey は鍵を "<法(10進)>|<指数(10進)>" 形式にする。
func EncodeKey(k *Key) string {
	return k.modulus.String() + keyDelimiter + k.exponent.String()
}

// DecodeKey は "<法>|<指数>" 形式のテキストから鍵を復元する。
// 最初の '|' で分割し、前後の空白は無視する。
func DecodeKey(text string, role Role) (*Key, error) {
	modStr, expStr, ok := strings.Cut(strings.TrimSpace(text), keyDelimiter)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q delimiter", domain.ErrMalformedKey, keyDelimiter)
	}

	modulus, err := parseDecimal(modStr)
	if err != nil {
		return nil, fmt.Errorf("%w: modulus: %v", domain.ErrMalformedKey, err)
	}
	exponent, err := parseDecimal(expStr)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent: %v", domain.ErrMalformedKey, err)
	}

	// 法が1以下だと剰余演算が定義できない
	if modulus.Cmp(big.NewInt(1)) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 1", domain.ErrMalformedKey)
	}
	if exponent.Sign() <= 0 {
		return nil, fmt.Errorf("%w: exponent must be positive", domain.ErrMalformedKey)
	}

	return &Key{modulus: modulus, exponent: exponent, role: role}, nil
}

func parseDecimal(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer")
	}
	return n, nil
}
