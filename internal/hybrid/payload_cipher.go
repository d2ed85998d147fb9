package hybrid

import (
	"bytes"
	"crypto/aes"
	"fmt"

	"license-manager/internal/domain"
)

// PayloadCipher はペイロードの共通鍵暗号を抽象化する。
type PayloadCipher interface {
	Seal(key, plaintext []byte) ([]byte, error)
	Open(key, ciphertext []byte) ([]byte, error)
}

// ECBCipher はAES/ECB/PKCS5Paddingによる暗号化。
// 同じ鍵と平文からは常に同じ暗号文が得られる。
type ECBCipher struct{}

// Seal は平文をPKCS#7でパディングしてブロックごとに暗号化する。
func (ECBCipher) Seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}

	bs := block.BlockSize()
	padLen := bs - len(plaintext)%bs
	buf := make([]byte, len(plaintext)+padLen)
	copy(buf, plaintext)
	copy(buf[len(plaintext):], bytes.Repeat([]byte{byte(padLen)}, padLen))

	for i := 0; i < len(buf); i += bs {
		block.Encrypt(buf[i:i+bs], buf[i:i+bs])
	}
	return buf, nil
}

// Open はブロックごとに復号し、パディングを検証して外す。
func (ECBCipher) Open(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}

	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", domain.ErrCrypto, len(ciphertext), bs)
	}

	buf := make([]byte, len(ciphertext))
	for i := 0; i < len(buf); i += bs {
		block.Decrypt(buf[i:i+bs], ciphertext[i:i+bs])
	}

	padLen := int(buf[len(buf)-1])
	if padLen == 0 || padLen > bs {
		return nil, fmt.Errorf("%w: invalid padding", domain.ErrCrypto)
	}
	for _, b := range buf[len(buf)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", domain.ErrCrypto)
		}
	}
	return buf[:len(buf)-padLen], nil
}
