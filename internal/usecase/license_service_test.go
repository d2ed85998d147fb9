package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"license-manager/internal/domain"
	"license-manager/internal/hybrid"
	"license-manager/internal/keysource"
)

// mockIssuanceRepository はテスト用のモックリポジトリ。
type mockIssuanceRepository struct {
	createErr     error
	findByIDValue *domain.IssuedLicense
	findByIDErr   error
	findAllValue  []*domain.IssuedLicense
	findAllErr    error
	created       []*domain.IssuedLicense
}

func (m *mockIssuanceRepository) Create(ctx context.Context, issued *domain.IssuedLicense) error {
	if m.createErr != nil {
		return m.createErr
	}
	issued.ID = "issued-001"
	issued.CreatedAt = time.Now()
	m.created = append(m.created, issued)
	return nil
}

func (m *mockIssuanceRepository) FindByID(ctx context.Context, id string) (*domain.IssuedLicense, error) {
	return m.findByIDValue, m.findByIDErr
}

func (m *mockIssuanceRepository) FindAll(ctx context.Context) ([]*domain.IssuedLicense, error) {
	return m.findAllValue, m.findAllErr
}

func testParams() hybrid.Params {
	p := hybrid.DefaultParams()
	p.AsymmetricKeyBits = 1024
	return p
}

// setupKeyDir は鍵ペアを一時ディレクトリに生成する。
func setupKeyDir(t *testing.T, svc *LicenseService) string {
	t.Helper()
	dir := t.TempDir()
	if _, _, err := svc.GenerateKeypair(context.Background(), dir); err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	return dir
}

func TestLicenseService_IssueAndOpen_Scenario(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)

	dir := t.TempDir()
	privPath, pubPath, err := svc.GenerateKeypair(ctx, dir)
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	if !strings.HasSuffix(privPath, "private.key") || !strings.HasSuffix(pubPath, "public.key") {
		t.Errorf("unexpected key paths: %s, %s", privPath, pubPath)
	}

	record := domain.NewLicenseRecord(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	content, err := svc.IssueLicense(ctx, record, keysource.Dir(dir))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}

	got, err := svc.OpenLicense(ctx, content, keysource.File(pubPath))
	if err != nil {
		t.Fatalf("OpenLicense failed: %v", err)
	}
	if got.ValidFrom != 1704067200000 {
		t.Errorf("want ValidFrom 1704067200000, got %d", got.ValidFrom)
	}
	if got.ValidTo != 1735603200000 {
		t.Errorf("want ValidTo 1735603200000, got %d", got.ValidTo)
	}
}

func TestLicenseService_WireFormat(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, svc)

	content, err := svc.IssueLicense(ctx, domain.LicenseRecord{ValidFrom: 1, ValidTo: 2}, keysource.Dir(dir))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}

	keyPart, dataPart, ok := strings.Cut(string(content), "|")
	if !ok {
		t.Fatalf("missing delimiter in %q", content)
	}
	wrapped, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil {
		t.Fatalf("wrapped key is not base64: %v", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(dataPart)
	if err != nil {
		t.Fatalf("ciphertext is not base64: %v", err)
	}
	if len(wrapped) != 128 {
		t.Errorf("want 128-byte wrapped key for 1024-bit modulus, got %d", len(wrapped))
	}
	if len(ciphertext)%16 != 0 {
		t.Errorf("ciphertext length %d is not a multiple of 16", len(ciphertext))
	}
}

func TestLicenseService_InjectedKeySources(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, svc)

	privText, _ := os.ReadFile(filepath.Join(dir, "private.key"))
	pubText, _ := os.ReadFile(filepath.Join(dir, "public.key"))

	record := domain.LicenseRecord{ValidFrom: 1000, ValidTo: 500}
	content, err := svc.IssueLicense(ctx, record, keysource.Bytes(privText))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}
	// 期間の前後関係はコアでは検証しない
	got, err := svc.OpenLicense(ctx, content, keysource.Bytes(pubText))
	if err != nil {
		t.Fatalf("OpenLicense failed: %v", err)
	}
	if got != record {
		t.Errorf("want %+v, got %+v", record, got)
	}
}

func TestLicenseService_OpenLicense_WrongKeyPair(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)
	issuerDir := setupKeyDir(t, svc)
	otherDir := setupKeyDir(t, svc)

	content, err := svc.IssueLicense(ctx, domain.LicenseRecord{ValidFrom: 1, ValidTo: 2}, keysource.Dir(issuerDir))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}

	_, err = svc.OpenLicense(ctx, content, keysource.Dir(otherDir))
	var openErr *domain.LicenseOpenError
	if !errors.As(err, &openErr) {
		t.Errorf("want LicenseOpenError, got %v", err)
	}
}

func TestLicenseService_OpenLicense_MissingDelimiter(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, svc)

	_, err := svc.OpenLicense(ctx, []byte("bm8tZGVsaW1pdGVy"), keysource.Dir(dir))
	if !errors.Is(err, domain.ErrLicenseOpen) {
		t.Errorf("want ErrLicenseOpen, got %v", err)
	}
	if !errors.Is(err, domain.ErrFileFormat) {
		t.Errorf("want ErrFileFormat in chain, got %v", err)
	}
	if err.Error() != "failed to parse license" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestLicenseService_OpenLicense_Tampered(t *testing.T) {
	ctx := context.Background()
	svc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, svc)

	content, err := svc.IssueLicense(ctx, domain.LicenseRecord{ValidFrom: 1, ValidTo: 2}, keysource.Dir(dir))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}
	keyPart, dataPart, _ := strings.Cut(string(content), "|")
	wrapped, _ := base64.StdEncoding.DecodeString(keyPart)

	for _, i := range []int{0, 1, len(wrapped) / 2, len(wrapped) - 1} {
		tampered := append([]byte(nil), wrapped...)
		tampered[i] ^= 0x80
		file := base64.StdEncoding.EncodeToString(tampered) + "|" + dataPart

		if _, err := svc.OpenLicense(ctx, []byte(file), keysource.Dir(dir)); !errors.Is(err, domain.ErrLicenseOpen) {
			t.Errorf("byte %d: want ErrLicenseOpen, got %v", i, err)
		}
	}
}

func TestLicenseService_OpenLicense_MissingPublicKey(t *testing.T) {
	svc := NewLicenseService(testParams(), nil)

	_, err := svc.OpenLicense(context.Background(), []byte("a|b"), keysource.Dir(t.TempDir()))
	if !errors.Is(err, domain.ErrLicenseOpen) {
		t.Errorf("want ErrLicenseOpen, got %v", err)
	}
}

func TestLicenseService_IssueLicense_MalformedKey(t *testing.T) {
	svc := NewLicenseService(testParams(), nil)

	_, err := svc.IssueLicense(context.Background(), domain.LicenseRecord{}, keysource.Bytes("modulus|exponent"))
	if !errors.Is(err, domain.ErrMalformedKey) {
		t.Errorf("want ErrMalformedKey, got %v", err)
	}
	// 発行側のエラーは包まない
	if errors.Is(err, domain.ErrLicenseOpen) {
		t.Error("issue errors must not be reported as open errors")
	}
}

func TestLicenseService_IssueLicense_RecordsIssuance(t *testing.T) {
	ctx := context.Background()
	repo := &mockIssuanceRepository{}
	keySvc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, keySvc)

	svc := NewLicenseService(testParams(), repo)
	content, err := svc.IssueLicense(ctx, domain.LicenseRecord{ValidFrom: 10, ValidTo: 20}, keysource.Dir(dir))
	if err != nil {
		t.Fatalf("IssueLicense failed: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("want 1 issued license recorded, got %d", len(repo.created))
	}
	issued := repo.created[0]
	if issued.ValidFrom != 10 || issued.ValidTo != 20 {
		t.Errorf("unexpected window: %d..%d", issued.ValidFrom, issued.ValidTo)
	}
	if issued.Fingerprint != Fingerprint(content) {
		t.Errorf("want fingerprint %s, got %s", Fingerprint(content), issued.Fingerprint)
	}
}

func TestLicenseService_IssueLicense_RepositoryError(t *testing.T) {
	repo := &mockIssuanceRepository{createErr: errors.New("db down")}
	keySvc := NewLicenseService(testParams(), nil)
	dir := setupKeyDir(t, keySvc)

	svc := NewLicenseService(testParams(), repo)
	if _, err := svc.IssueLicense(context.Background(), domain.LicenseRecord{}, keysource.Dir(dir)); err == nil {
		t.Error("expected error when the ledger cannot record the license")
	}
}

func TestLicenseService_ListIssued(t *testing.T) {
	repo := &mockIssuanceRepository{
		findAllValue: []*domain.IssuedLicense{
			{ID: "a", ValidFrom: 1, ValidTo: 2},
			{ID: "b", ValidFrom: 3, ValidTo: 4},
		},
	}
	svc := NewLicenseService(testParams(), repo)

	issued, err := svc.ListIssued(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 2 {
		t.Errorf("want 2 entries, got %d", len(issued))
	}
}

func TestLicenseService_LedgerUnavailable(t *testing.T) {
	svc := NewLicenseService(testParams(), nil)

	if _, err := svc.ListIssued(context.Background()); !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Errorf("want ErrLedgerUnavailable, got %v", err)
	}
	if _, err := svc.GetIssued(context.Background(), "a"); !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Errorf("want ErrLedgerUnavailable, got %v", err)
	}
}

func TestLicenseService_GetIssued_NotFound(t *testing.T) {
	svc := NewLicenseService(testParams(), &mockIssuanceRepository{})

	if _, err := svc.GetIssued(context.Background(), "missing"); !errors.Is(err, domain.ErrIssuanceNotFound) {
		t.Errorf("want ErrIssuanceNotFound, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	// SHA-256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Fingerprint([]byte("abc")); got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}
