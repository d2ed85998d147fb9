// Package main はライセンスAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"license-manager/config"
	"license-manager/internal/handler"
	"license-manager/internal/infra"
	"license-manager/internal/keysource"
	"license-manager/internal/repository"
	"license-manager/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg, infra.ParseLevel(cfg.LogLevel), os.Stdout)

	// DB初期化（未設定の場合は発行台帳なし）
	var issuanceRepo usecase.IssuanceRepository
	if cfg.DatabaseURL != "" {
		db, err := infra.NewDB(cfg.DatabaseURL, cfg)
		if err != nil {
			slog.Error("failed to init database", "error", err)
			os.Exit(1)
		}
		issuanceRepo = repository.NewIssuanceRepository(db)
	} else {
		slog.Warn("DATABASE_URL is not set, issuance ledger disabled")
	}

	// 鍵の読み込み元
	publicKeys := keysource.Dir(cfg.KeyDir)
	var privateKeys usecase.KeySource = keysource.Dir(cfg.KeyDir)
	if cfg.PrivateKeyKMS {
		kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			slog.Error("failed to init KMS client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := kmsClient.Close(); closeErr != nil {
				slog.Error("failed to close KMS client", "error", closeErr)
			}
		}()
		privateKeys = keysource.NewKMS(keysource.Dir(cfg.KeyDir), kmsClient)
	}

	// DI
	service := usecase.NewLicenseService(cfg.Params(), issuanceRepo)
	h := handler.NewLicenseHandler(service, privateKeys, publicKeys)
	router := handler.NewRouter(h, cfg)

	// サーバー起動
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
