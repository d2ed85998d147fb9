// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"license-manager/internal/hybrid"
)

// Config はアプリケーション設定を表す。
type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	DatabaseURL        string `envconfig:"DATABASE_URL"`
	KMSKeyName         string `envconfig:"KMS_KEY_NAME"`
	GoogleCloudProject string `envconfig:"GOOGLE_CLOUD_PROJECT"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`

	OtelEnabled      bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OtelEndpoint     string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	OtelInsecure     bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelServiceName  string  `envconfig:"OTEL_SERVICE_NAME" default:"license-manager"`
	OtelSamplingRate float64 `envconfig:"OTEL_SAMPLING_RATE" default:"1.0" validate:"gte=0,lte=1"`

	KeyDir         string `envconfig:"LICENSE_KEY_DIR" default:"."`
	PrivateKeyFile string `envconfig:"LICENSE_PRIVATE_KEY_FILE" default:"private.key" validate:"required"`
	PublicKeyFile  string `envconfig:"LICENSE_PUBLIC_KEY_FILE" default:"public.key" validate:"required,nefield=PrivateKeyFile"`
	// PrivateKeyKMS がtrueの場合、秘密鍵ファイルはKMSの暗号文として扱う
	PrivateKeyKMS bool `envconfig:"LICENSE_PRIVATE_KEY_KMS" default:"false"`
	RSAKeyBits    int  `envconfig:"LICENSE_RSA_KEY_BITS" default:"2048" validate:"gte=1024"`
	AESKeyBits    int  `envconfig:"LICENSE_AES_KEY_BITS" default:"128" validate:"oneof=128 192 256"`

	// MigrationsDir が空の場合はバイナリ同梱のマイグレーションを使う
	MigrationsDir string `envconfig:"MIGRATIONS_DIR"`
}

// Load は環境変数から設定を読み込む。
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.PrivateKeyKMS && cfg.KMSKeyName == "" {
		return nil, fmt.Errorf("invalid config: KMS_KEY_NAME is required when LICENSE_PRIVATE_KEY_KMS is set")
	}
	return &cfg, nil
}

// Params は暗号処理のパラメータを返す。
func (c *Config) Params() hybrid.Params {
	return hybrid.Params{
		AsymmetricKeyBits: c.RSAKeyBits,
		SymmetricKeyBits:  c.AESKeyBits,
		PrivateKeyName:    c.PrivateKeyFile,
		PublicKeyName:     c.PublicKeyFile,
	}
}
