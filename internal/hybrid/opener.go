package hybrid

import (
	"fmt"

	"license-manager/internal/domain"
)

// Opener は公開鍵でライセンスを開封する。
type Opener struct {
	publicKey *Key
	cipher    PayloadCipher
}

// NewOpener は公開鍵を使うOpenerを返す。
func NewOpener(publicKey *Key) (*Opener, error) {
	if publicKey == nil || publicKey.Role() != RolePublic {
		return nil, fmt.Errorf("%w: opening requires a public key", domain.ErrCrypto)
	}
	return &Opener{publicKey: publicKey, cipher: ECBCipher{}}, nil
}

// UnwrapKey はラップされた共通鍵を公開指数で復元する。
// パディング検証の失敗は改ざんか鍵の不一致を示す。
func (o *Opener) UnwrapKey(wrapped []byte) ([]byte, error) {
	secret, err := publicTransform(o.publicKey, wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrapping symmetric key: %w", err)
	}
	return secret, nil
}

// OpenPayload は暗号文を共通鍵で復号する。
func (o *Opener) OpenPayload(ciphertext, secret []byte) ([]byte, error) {
	plaintext, err := o.cipher.Open(secret, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypting payload: %w", err)
	}
	return plaintext, nil
}

// Open は共通鍵を復元してペイロードを復号する。
// 失敗は段階によらずLicenseOpenErrorとして返す。
func (o *Opener) Open(sealed *domain.SealedLicense) ([]byte, error) {
	secret, err := o.UnwrapKey(sealed.WrappedKey)
	if err != nil {
		return nil, domain.NewLicenseOpenError(err)
	}
	plaintext, err := o.OpenPayload(sealed.Ciphertext, secret)
	if err != nil {
		return nil, domain.NewLicenseOpenError(err)
	}
	return plaintext, nil
}
