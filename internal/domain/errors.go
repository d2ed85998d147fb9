package domain

import "errors"

var (
	// ErrMalformedKey は鍵テキストが解析できない場合のエラー。
	ErrMalformedKey = errors.New("malformed key")

	// ErrPayloadFormat はライセンスペイロードの構造が不正な場合のエラー。
	ErrPayloadFormat = errors.New("invalid license payload")

	// ErrFileFormat はライセンスファイルの区切り文字やBase64が不正な場合のエラー。
	ErrFileFormat = errors.New("invalid license file format")

	// ErrCrypto は暗号処理（初期化・変換・パディング検証）の失敗を表す。
	ErrCrypto = errors.New("crypto failure")

	// ErrLicenseOpen はライセンスを開く処理が失敗したことを表す。
	ErrLicenseOpen = errors.New("failed to parse license")

	// ErrIssuanceNotFound は指定された発行記録が存在しない場合のエラー。
	ErrIssuanceNotFound = errors.New("issued license not found")

	// ErrLedgerUnavailable は発行台帳が設定されていない場合のエラー。
	ErrLedgerUnavailable = errors.New("issuance ledger is not configured")

	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)

// LicenseOpenError はライセンスを開く処理で発生した全てのエラーを包む。
// メッセージはどの段階で失敗したかを含まない。
type LicenseOpenError struct {
	cause error
}

// NewLicenseOpenError は原因エラーを包んだLicenseOpenErrorを返す。
// 既にLicenseOpenErrorであればそのまま返す。
func NewLicenseOpenError(cause error) error {
	if cause == nil {
		return nil
	}
	var openErr *LicenseOpenError
	if errors.As(cause, &openErr) {
		return cause
	}
	return &LicenseOpenError{cause: cause}
}

func (e *LicenseOpenError) Error() string {
	return ErrLicenseOpen.Error()
}

// Unwrap はErrLicenseOpenと原因エラーを返す。
func (e *LicenseOpenError) Unwrap() []error {
	return []error{ErrLicenseOpen, e.cause}
}
