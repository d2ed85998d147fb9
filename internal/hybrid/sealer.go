package hybrid

import (
	"fmt"
	"io"

	"license-manager/internal/domain"
)

// Sealer は1ライセンス分の共通鍵と秘密鍵を保持して封緘を行う。
type Sealer struct {
	privateKey *Key
	secret     []byte
	cipher     PayloadCipher
}

// NewSealer は新しい共通鍵を生成してSealerを返す。
func NewSealer(params Params, privateKey *Key, random io.Reader) (*Sealer, error) {
	if privateKey == nil || privateKey.Role() != RolePrivate {
		return nil, fmt.Errorf("%w: sealing requires a private key", domain.ErrCrypto)
	}

	secret := make([]byte, params.SymmetricKeySize())
	if _, err := io.ReadFull(random, secret); err != nil {
		return nil, fmt.Errorf("%w: generating symmetric key: %v", domain.ErrCrypto, err)
	}

	return newSealerWithSecret(privateKey, secret, ECBCipher{}), nil
}

func newSealerWithSecret(privateKey *Key, secret []byte, c PayloadCipher) *Sealer {
	return &Sealer{
		privateKey: privateKey,
		secret:     secret,
		cipher:     c,
	}
}

// WrapKey は共通鍵を秘密指数でラップする。
func (s *Sealer) WrapKey() ([]byte, error) {
	wrapped, err := privateTransform(s.privateKey, s.secret)
	if err != nil {
		return nil, fmt.Errorf("wrapping symmetric key: %w", err)
	}
	return wrapped, nil
}

// SealPayload は平文を共通鍵で暗号化する。
func (s *Sealer) SealPayload(plaintext []byte) ([]byte, error) {
	ciphertext, err := s.cipher.Seal(s.secret, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}
	return ciphertext, nil
}

// Seal は鍵のラップとペイロードの暗号化を行う。
func (s *Sealer) Seal(plaintext []byte) (*domain.SealedLicense, error) {
	wrapped, err := s.WrapKey()
	if err != nil {
		return nil, err
	}
	ciphertext, err := s.SealPayload(plaintext)
	if err != nil {
		return nil, err
	}
	return &domain.SealedLicense{
		WrappedKey: wrapped,
		Ciphertext: ciphertext,
	}, nil
}
