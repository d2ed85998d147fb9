package hybrid

import (
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
)

// GenerateKeyPair は指定ビット長のRSA鍵ペアを生成する。
// 秘密鍵は (n, d)、公開鍵は (n, e) として返す。
func GenerateKeyPair(random io.Reader, bits int) (privateKey, publicKey *Key, err error) {
	rsaKey, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("generating RSA key: %w", err)
	}

	privateKey = NewKey(rsaKey.N, rsaKey.D, RolePrivate)
	publicKey = NewKey(rsaKey.N, big.NewInt(int64(rsaKey.E)), RolePublic)
	return privateKey, publicKey, nil
}

// PersistKeyPair は鍵ペアをdir配下の固定ファイル名に書き込む。
// 既存ファイルは上書きする。途中で失敗した場合、書き込み済みのファイルは残る。
func PersistKeyPair(params Params, privateKey, publicKey *Key, dir string) (privatePath, publicPath string, err error) {
	privatePath = filepath.Join(dir, params.PrivateKeyName)
	if err := os.WriteFile(privatePath, []byte(EncodeKey(privateKey)), 0o600); err != nil {
		return "", "", fmt.Errorf("writing private key: %w", err)
	}

	publicPath = filepath.Join(dir, params.PublicKeyName)
	if err := os.WriteFile(publicPath, []byte(EncodeKey(publicKey)), 0o644); err != nil {
		return "", "", fmt.Errorf("writing public key: %w", err)
	}

	return privatePath, publicPath, nil
}
