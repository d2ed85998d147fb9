package hybrid

import "fmt"

const (
	// DefaultAsymmetricKeyBits はRSA鍵長の既定値。
	DefaultAsymmetricKeyBits = 2048
	// DefaultSymmetricKeyBits はAES鍵長の既定値。
	DefaultSymmetricKeyBits = 128
	// DefaultPrivateKeyName は秘密鍵ファイル名の既定値。
	DefaultPrivateKeyName = "private.key"
	// DefaultPublicKeyName は公開鍵ファイル名の既定値。
	DefaultPublicKeyName = "public.key"
)

// Params は暗号処理のパラメータ。値として各コンポーネントに渡す。
type Params struct {
	AsymmetricKeyBits int
	SymmetricKeyBits  int
	PrivateKeyName    string
	PublicKeyName     string
}

// DefaultParams は既存ライセンスと互換のパラメータを返す。
func DefaultParams() Params {
	return Params{
		AsymmetricKeyBits: DefaultAsymmetricKeyBits,
		SymmetricKeyBits:  DefaultSymmetricKeyBits,
		PrivateKeyName:    DefaultPrivateKeyName,
		PublicKeyName:     DefaultPublicKeyName,
	}
}

// SymmetricKeySize は共通鍵のバイト長を返す。
func (p Params) SymmetricKeySize() int {
	return p.SymmetricKeyBits / 8
}

// Validate はパラメータの妥当性を検証する。
func (p Params) Validate() error {
	switch p.SymmetricKeyBits {
	case 128, 192, 256:
	default:
		return fmt.Errorf("unsupported symmetric key size: %d bits", p.SymmetricKeyBits)
	}
	if p.AsymmetricKeyBits < 1024 {
		return fmt.Errorf("asymmetric key size too small: %d bits", p.AsymmetricKeyBits)
	}
	if p.PrivateKeyName == "" || p.PublicKeyName == "" {
		return fmt.Errorf("key file names must not be empty")
	}
	if p.PrivateKeyName == p.PublicKeyName {
		return fmt.Errorf("private and public key file names must differ")
	}
	return nil
}
