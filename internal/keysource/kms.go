package keysource

import (
	"context"
	"fmt"
)

// Loader は鍵テキストの読み込み元。
type Loader interface {
	LoadBytes(ctx context.Context, name string) ([]byte, error)
}

// Decrypter はCloud KMSによる復号のインターフェース。
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// KMS はKMSで暗号化された鍵ファイルを読み込み、復号して返す。
type KMS struct {
	Source    Loader
	Decrypter Decrypter
}

// NewKMS は新しいKMSを生成する。
func NewKMS(source Loader, decrypter Decrypter) *KMS {
	return &KMS{Source: source, Decrypter: decrypter}
}

// LoadBytes は元の読み込み元から暗号文を取得してKMSで復号する。
func (k *KMS) LoadBytes(ctx context.Context, name string) ([]byte, error) {
	ciphertext, err := k.Source.LoadBytes(ctx, name)
	if err != nil {
		return nil, err
	}
	plaintext, err := k.Decrypter.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypting key %s with KMS: %w", name, err)
	}
	return plaintext, nil
}
