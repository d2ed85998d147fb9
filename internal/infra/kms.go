package infra

import (
	"context"
	"fmt"
	"hash/crc32"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// KMSClient は秘密鍵ファイルを保護するCloud KMS鍵へのクライアント。
// keysource.Decrypter を満たす。
type KMSClient struct {
	client  *kms.KeyManagementClient
	keyName string
}

// NewKMSClient は指定されたキー名を使うKMSClientを生成する。
func NewKMSClient(ctx context.Context, keyName string) (*KMSClient, error) {
	if keyName == "" {
		return nil, fmt.Errorf("KMS_KEY_NAME is required")
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}

	return &KMSClient{
		client:  client,
		keyName: keyName,
	}, nil
}

// Encrypt は秘密鍵テキストをKMSで暗号化する。
// 送受信それぞれCRC32Cで破損がないことを確認する。
func (c *KMSClient) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	resp, err := c.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:            c.keyName,
		Plaintext:       plaintext,
		PlaintextCrc32C: wrapperspb.Int64(checksum(plaintext)),
	})
	if err != nil {
		return nil, fmt.Errorf("encrypting private key: %w", err)
	}
	if !resp.VerifiedPlaintextCrc32C {
		return nil, fmt.Errorf("encrypting private key: request corrupted in transit")
	}
	if resp.CiphertextCrc32C == nil || resp.CiphertextCrc32C.Value != checksum(resp.Ciphertext) {
		return nil, fmt.Errorf("encrypting private key: response corrupted in transit")
	}
	return resp.Ciphertext, nil
}

// Decrypt はKMSで保護された秘密鍵ファイルを復号する。
func (c *KMSClient) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	resp, err := c.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:             c.keyName,
		Ciphertext:       ciphertext,
		CiphertextCrc32C: wrapperspb.Int64(checksum(ciphertext)),
	})
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}
	if resp.PlaintextCrc32C == nil || resp.PlaintextCrc32C.Value != checksum(resp.Plaintext) {
		return nil, fmt.Errorf("decrypting private key: response corrupted in transit")
	}
	return resp.Plaintext, nil
}

// Close はKMSクライアントを閉じる。
func (c *KMSClient) Close() error {
	return c.client.Close()
}

func checksum(data []byte) int64 {
	return int64(crc32.Checksum(data, crc32cTable))
}
