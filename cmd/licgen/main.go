// Package main はライセンス発行CLIのエントリポイント。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"license-manager/config"
	"license-manager/internal/infra"
	"license-manager/internal/keysource"
	"license-manager/internal/repository"
	"license-manager/internal/usecase"
)

const version = "1.0.0"

var (
	cfg     *config.Config
	keyDir  string
	noStore bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "licgen",
		Short:         "License issuing and verification tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .envファイルを読み込む（存在しない場合は無視）
			_ = godotenv.Load()

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if keyDir != "" {
				loaded.KeyDir = keyDir
			}
			cfg = loaded

			infra.SetupLogger(cfg, infra.ParseLevel(cfg.LogLevel), os.Stderr)
			return nil
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&keyDir, "keys", "", "Directory holding private.key/public.key (or set LICENSE_KEY_DIR)")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-ledger", false, "Do not record issued licenses even if DATABASE_URL is set")

	// サブコマンド登録
	rootCmd.AddCommand(keypairCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(readCmd())
	rootCmd.AddCommand(protectKeyCmd())
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("licgen version %s\n", version)
		},
	}
}

// newLicenseService はDATABASE_URLがあれば発行台帳付きのサービスを返す。
// 戻り値のcloseは必ず呼ぶこと。
func newLicenseService() (*usecase.LicenseService, func(), error) {
	if cfg.DatabaseURL == "" || noStore {
		return usecase.NewLicenseService(cfg.Params(), nil), func() {}, nil
	}

	db, err := infra.NewDB(cfg.DatabaseURL, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := repository.NewIssuanceRepository(db)
	return usecase.NewLicenseService(cfg.Params(), repo), func() { closeDB(db) }, nil
}

// privateKeySource は秘密鍵の読み込み元を返す。
// LICENSE_PRIVATE_KEY_KMSが有効な場合はKMSで復号する。
func privateKeySource(ctx context.Context) (usecase.KeySource, func(), error) {
	dir := keysource.Dir(cfg.KeyDir)
	if !cfg.PrivateKeyKMS {
		return dir, func() {}, nil
	}

	kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init KMS client: %w", err)
	}
	closeFn := func() {
		if err := kmsClient.Close(); err != nil {
			slog.Error("failed to close KMS client", "error", err)
		}
	}
	return keysource.NewKMS(dir, kmsClient), closeFn, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
