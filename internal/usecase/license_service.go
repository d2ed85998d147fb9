// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"license-manager/internal/domain"
	"license-manager/internal/hybrid"
	"license-manager/internal/licensefile"
)

var tracer = otel.Tracer("license-manager/usecase")

// KeySource は鍵テキストの読み込み元のインターフェース。
type KeySource interface {
	LoadBytes(ctx context.Context, name string) ([]byte, error)
}

// IssuanceRepository は発行台帳のデータアクセスのインターフェース。
type IssuanceRepository interface {
	Create(ctx context.Context, issued *domain.IssuedLicense) error
	FindByID(ctx context.Context, id string) (*domain.IssuedLicense, error)
	FindAll(ctx context.Context) ([]*domain.IssuedLicense, error)
}

// LicenseService はライセンスの発行・検証に関するビジネスロジックを提供する。
type LicenseService struct {
	params hybrid.Params
	repo   IssuanceRepository
	random io.Reader
}

// NewLicenseService は新しいLicenseServiceを生成する。
// repoがnilの場合、発行台帳への記録は行わない。
func NewLicenseService(params hybrid.Params, repo IssuanceRepository) *LicenseService {
	return &LicenseService{
		params: params,
		repo:   repo,
		random: rand.Reader,
	}
}

// Params は使用中の暗号パラメータを返す。
func (s *LicenseService) Params() hybrid.Params {
	return s.params
}

// GenerateKeypair は鍵ペアを生成してdirに書き込む。
func (s *LicenseService) GenerateKeypair(ctx context.Context, dir string) (privatePath, publicPath string, err error) {
	ctx, span := tracer.Start(ctx, "license.generate_keypair")
	defer span.End()

	privateKey, publicKey, err := hybrid.GenerateKeyPair(s.random, s.params.AsymmetricKeyBits)
	if err != nil {
		recordError(span, err)
		return "", "", err
	}

	privatePath, publicPath, err = hybrid.PersistKeyPair(s.params, privateKey, publicKey, dir)
	if err != nil {
		recordError(span, err)
		slog.ErrorContext(ctx, "failed to persist keypair",
			"operation", "generate_keypair",
			"dir", dir,
			"error", err,
		)
		return "", "", err
	}

	slog.InfoContext(ctx, "generated keypair",
		"operation", "generate_keypair",
		"private_key", privatePath,
		"public_key", publicPath,
		"bits", s.params.AsymmetricKeyBits,
	)
	return privatePath, publicPath, nil
}

// IssueLicense はレコードを封緘してライセンスファイルの内容を返す。
// 発行側は信頼されているため、エラーはそのまま返す。
func (s *LicenseService) IssueLicense(ctx context.Context, record domain.LicenseRecord, privateKeys KeySource) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "license.issue")
	defer span.End()

	content, err := s.issue(ctx, record, privateKeys)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	fingerprint := Fingerprint(content)
	span.SetAttributes(attribute.String("license.fingerprint", fingerprint))

	if s.repo != nil {
		issued := &domain.IssuedLicense{
			ValidFrom:   record.ValidFrom,
			ValidTo:     record.ValidTo,
			Fingerprint: fingerprint,
		}
		if err := s.repo.Create(ctx, issued); err != nil {
			recordError(span, err)
			return nil, fmt.Errorf("recording issued license: %w", err)
		}
	}

	slog.InfoContext(ctx, "issued license",
		"operation", "issue_license",
		"valid_from", record.ValidFrom,
		"valid_to", record.ValidTo,
		"fingerprint", fingerprint,
	)
	return content, nil
}

func (s *LicenseService) issue(ctx context.Context, record domain.LicenseRecord, privateKeys KeySource) ([]byte, error) {
	privateKey, err := loadKey(ctx, privateKeys, s.params.PrivateKeyName, hybrid.RolePrivate)
	if err != nil {
		return nil, err
	}

	plaintext, err := licensefile.EncodeRecord(record)
	if err != nil {
		return nil, err
	}

	sealer, err := hybrid.NewSealer(s.params, privateKey, s.random)
	if err != nil {
		return nil, err
	}
	sealed, err := sealer.Seal(plaintext)
	if err != nil {
		return nil, err
	}

	return []byte(licensefile.ToFileForm(sealed)), nil
}

// OpenLicense はライセンスファイルの内容を公開鍵で開封してレコードを返す。
// 失敗はすべてLicenseOpenErrorとして返す。
func (s *LicenseService) OpenLicense(ctx context.Context, fileBytes []byte, publicKeys KeySource) (domain.LicenseRecord, error) {
	ctx, span := tracer.Start(ctx, "license.open")
	defer span.End()

	record, err := s.open(ctx, fileBytes, publicKeys)
	if err != nil {
		// 原因はログにのみ残し、呼び出し元には段階を明かさない
		slog.DebugContext(ctx, "failed to open license",
			"operation", "open_license",
			"error", err,
		)
		span.SetStatus(codes.Error, domain.ErrLicenseOpen.Error())
		return domain.LicenseRecord{}, domain.NewLicenseOpenError(err)
	}
	return record, nil
}

func (s *LicenseService) open(ctx context.Context, fileBytes []byte, publicKeys KeySource) (domain.LicenseRecord, error) {
	publicKey, err := loadKey(ctx, publicKeys, s.params.PublicKeyName, hybrid.RolePublic)
	if err != nil {
		return domain.LicenseRecord{}, err
	}

	sealed, err := licensefile.FromFileForm(string(fileBytes))
	if err != nil {
		return domain.LicenseRecord{}, err
	}

	opener, err := hybrid.NewOpener(publicKey)
	if err != nil {
		return domain.LicenseRecord{}, err
	}
	plaintext, err := opener.Open(sealed)
	if err != nil {
		return domain.LicenseRecord{}, err
	}

	return licensefile.DecodeRecord(plaintext)
}

// ListIssued は発行台帳の全エントリを返す。
func (s *LicenseService) ListIssued(ctx context.Context) ([]*domain.IssuedLicense, error) {
	if s.repo == nil {
		return nil, domain.ErrLedgerUnavailable
	}
	issued, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding issued licenses: %w", err)
	}
	return issued, nil
}

// GetIssued は指定されたIDの発行記録を返す。
func (s *LicenseService) GetIssued(ctx context.Context, id string) (*domain.IssuedLicense, error) {
	if s.repo == nil {
		return nil, domain.ErrLedgerUnavailable
	}
	issued, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding issued license: %w", err)
	}
	if issued == nil {
		return nil, domain.ErrIssuanceNotFound
	}
	return issued, nil
}

// Fingerprint はライセンスファイル内容のSHA-256を16進で返す。
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func loadKey(ctx context.Context, source KeySource, name string, role hybrid.Role) (*hybrid.Key, error) {
	text, err := source.LoadBytes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading %s key: %w", role, err)
	}
	return hybrid.DecodeKey(string(text), role)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
