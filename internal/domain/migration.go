package domain

import "time"

// MigrationStatus は発行台帳スキーマの各マイグレーションの適用状態。
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// Migration は migrations/ 配下の1つのSQLファイルと、その適用履歴。
type Migration struct {
	Version   string // ファイル名の先頭部分（例: "001"）
	Name      string
	FilePath  string
	AppliedAt *time.Time // 未適用ならnil
	Status    MigrationStatus
}

// IsApplied は適用済みかどうかを返す。
func (m *Migration) IsApplied() bool {
	return m.Status == MigrationStatusApplied
}

// MarkApplied は適用日時を設定して適用済みにする。
func (m *Migration) MarkApplied(at time.Time) {
	m.AppliedAt = &at
	m.Status = MigrationStatusApplied
}

// CountPending は未適用のマイグレーション数を返す。
func CountPending(migrations []*Migration) int {
	n := 0
	for _, m := range migrations {
		if !m.IsApplied() {
			n++
		}
	}
	return n
}
