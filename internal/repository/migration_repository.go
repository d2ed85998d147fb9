package repository

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"license-manager/internal/domain"
)

// SchemaMigrationModel はschema_migrationsの1行。
type SchemaMigrationModel struct {
	Version   string    `gorm:"column:version;primaryKey;type:varchar(14)"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

// TableName はテーブル名を返す。
func (SchemaMigrationModel) TableName() string {
	return "schema_migrations"
}

// MigrationRepository は発行台帳スキーマの適用履歴を管理する。
type MigrationRepository struct {
	db *gorm.DB
}

// NewMigrationRepository は新しいMigrationRepositoryを生成する。
func NewMigrationRepository(db *gorm.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// EnsureTable はschema_migrationsが無ければ作成する。初回の migrate up で使う。
func (r *MigrationRepository) EnsureTable(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(&SchemaMigrationModel{})
	return logFailure(ctx, "ensure_table", err)
}

// FindAllApplied は適用済みの履歴をバージョン順に返す。
func (r *MigrationRepository) FindAllApplied(ctx context.Context) ([]*domain.Migration, error) {
	var models []SchemaMigrationModel
	if err := r.db.WithContext(ctx).Order("version ASC").Find(&models).Error; err != nil {
		return nil, logFailure(ctx, "find_all_applied", err)
	}

	migrations := make([]*domain.Migration, len(models))
	for i, model := range models {
		migrations[i] = &domain.Migration{Version: model.Version}
		migrations[i].MarkApplied(model.AppliedAt)
	}
	return migrations, nil
}

// RecordMigration はversionを現在時刻で適用済みとして記録する。
func (r *MigrationRepository) RecordMigration(ctx context.Context, version string) error {
	model := &SchemaMigrationModel{Version: version, AppliedAt: time.Now()}
	err := r.db.WithContext(ctx).Create(model).Error
	return logFailure(ctx, "record_migration", err, "version", version)
}

// IsMigrationApplied はversionが記録済みかどうかを返す。
func (r *MigrationRepository) IsMigrationApplied(ctx context.Context, version string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&SchemaMigrationModel{}).Where("version = ?", version).Count(&count).Error
	if err != nil {
		return false, logFailure(ctx, "is_migration_applied", err, "version", version)
	}
	return count > 0, nil
}

// logFailure はerrがnilでなければ操作名付きで記録し、そのまま返す。
func logFailure(ctx context.Context, operation string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	args := append([]any{"operation", operation, "error", err}, attrs...)
	slog.ErrorContext(ctx, "repository operation failed", args...)
	return err
}
