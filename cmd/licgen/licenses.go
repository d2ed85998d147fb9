package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"license-manager/internal/domain"
	"license-manager/internal/infra"
	"license-manager/internal/keysource"
	"license-manager/internal/usecase"
)

const (
	dateLayout         = "2006.01.02"
	defaultLicenseName = "license.lic"
)

// keypairCmd は鍵ペアの生成コマンド。
func keypairCmd() *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "keypair",
		Short: "Generate a new RSA keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkWritableDir(outputDir); err != nil {
				return err
			}

			service := usecase.NewLicenseService(cfg.Params(), nil)
			privatePath, publicPath, err := service.GenerateKeypair(cmd.Context(), outputDir)
			if err != nil {
				return fmt.Errorf("generating keypair: %w", err)
			}

			fmt.Printf("Private key: %s\n", privatePath)
			fmt.Printf("Public key:  %s\n", publicPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output", ".", "Existing directory to write the keypair into")
	return cmd
}

// generateCmd はライセンスファイルの発行コマンド。
func generateCmd() *cobra.Command {
	var from, to, output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue a license valid between two dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			record, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			path, err := resolveLicensePath(output)
			if err != nil {
				return err
			}

			service, closeService, err := newLicenseService()
			if err != nil {
				return err
			}
			defer closeService()

			privateKeys, closeKeys, err := privateKeySource(ctx)
			if err != nil {
				return err
			}
			defer closeKeys()

			content, err := service.IssueLicense(ctx, record, privateKeys)
			if err != nil {
				return fmt.Errorf("issuing license: %w", err)
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("writing license: %w", err)
			}

			fmt.Printf("License: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date, yyyy.MM.dd (required)")
	cmd.Flags().StringVar(&to, "to", "", "End date, yyyy.MM.dd (required)")
	cmd.Flags().StringVar(&output, "output", defaultLicenseName, "License file path or directory")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

// readCmd はライセンスファイルを公開鍵で開封して表示するコマンド。
func readCmd() *cobra.Command {
	var licensePath string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Open a license file with the public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(licensePath)
			if err != nil {
				return fmt.Errorf("reading license: %w", err)
			}

			service := usecase.NewLicenseService(cfg.Params(), nil)
			record, err := service.OpenLicense(cmd.Context(), content, keysource.Dir(cfg.KeyDir))
			if err != nil {
				return err
			}

			status := "inactive"
			if record.ActiveAt(time.Now()) {
				status = "active"
			}
			fmt.Printf("Valid from: %s\n", record.From().Local().Format(time.RFC3339))
			fmt.Printf("Valid to:   %s\n", record.To().Local().Format(time.RFC3339))
			fmt.Printf("Status:     %s\n", status)
			return nil
		},
	}
	cmd.Flags().StringVar(&licensePath, "license", defaultLicenseName, "License file to read")
	return cmd
}

// protectKeyCmd は秘密鍵ファイルをCloud KMSで暗号化するコマンド。
func protectKeyCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "protect-key",
		Short: "Encrypt a private key file with Cloud KMS",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			plaintext, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("reading private key: %w", err)
			}

			kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
			if err != nil {
				return fmt.Errorf("failed to init KMS client: %w", err)
			}
			defer kmsClient.Close()

			ciphertext, err := kmsClient.Encrypt(ctx, plaintext)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, ciphertext, 0o600); err != nil {
				return fmt.Errorf("writing protected key: %w", err)
			}

			fmt.Printf("Protected key: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Plaintext private key file (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output file for the KMS ciphertext (required)")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

// parseWindow はyyyy.MM.dd形式の日付をローカル時刻として解釈する。
func parseWindow(from, to string) (domain.LicenseRecord, error) {
	start, err := time.ParseInLocation(dateLayout, from, time.Local)
	if err != nil {
		return domain.LicenseRecord{}, fmt.Errorf("invalid --from date %q: expected yyyy.MM.dd", from)
	}
	end, err := time.ParseInLocation(dateLayout, to, time.Local)
	if err != nil {
		return domain.LicenseRecord{}, fmt.Errorf("invalid --to date %q: expected yyyy.MM.dd", to)
	}
	return domain.NewLicenseRecord(start, end), nil
}

// resolveLicensePath はディレクトリが指定された場合にlicense.licを付与する。
func resolveLicensePath(path string) (string, error) {
	if path == "" {
		return defaultLicenseName, nil
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return filepath.Join(path, defaultLicenseName), nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("checking output path: %w", err)
	}
	return path, nil
}

// checkWritableDir は既存の書き込み可能なディレクトリであることを確認する。
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %q does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("output %q is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".licgen-*")
	if err != nil {
		return fmt.Errorf("output directory %q is not writable", dir)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

