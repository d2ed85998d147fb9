// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import "time"

// LicenseRecord はライセンスの有効期間を表す。
// ValidFrom <= ValidTo はコアでは検証しない（発行側の責務）。
type LicenseRecord struct {
	ValidFrom int64 // エポックミリ秒
	ValidTo   int64 // エポックミリ秒
}

// NewLicenseRecord は時刻からLicenseRecordを生成する。
func NewLicenseRecord(from, to time.Time) LicenseRecord {
	return LicenseRecord{
		ValidFrom: from.UnixMilli(),
		ValidTo:   to.UnixMilli(),
	}
}

// From は有効期間の開始時刻を返す。
func (r LicenseRecord) From() time.Time {
	return time.UnixMilli(r.ValidFrom)
}

// To は有効期間の終了時刻を返す。
func (r LicenseRecord) To() time.Time {
	return time.UnixMilli(r.ValidTo)
}

// ActiveAt は指定時刻が有効期間内かどうかを返す。
func (r LicenseRecord) ActiveAt(t time.Time) bool {
	ms := t.UnixMilli()
	return r.ValidFrom <= ms && ms <= r.ValidTo
}

// SealedLicense は暗号化済みライセンスを表す。
type SealedLicense struct {
	WrappedKey []byte // RSAでラップされた共通鍵
	Ciphertext []byte // AESで暗号化されたペイロード
}

// IssuedLicense は発行台帳のエントリを表す（ライセンス本体は保持しない）。
type IssuedLicense struct {
	ID          string
	ValidFrom   int64
	ValidTo     int64
	Fingerprint string // ライセンスファイルのSHA-256（16進）
	CreatedAt   time.Time
}
