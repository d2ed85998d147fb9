// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"license-manager/internal/domain"
)

// IssuedLicenseModel はgorm用のモデル定義。
type IssuedLicenseModel struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	ValidFrom   int64     `gorm:"not null"`
	ValidTo     int64     `gorm:"not null"`
	Fingerprint string    `gorm:"type:char(64);not null;uniqueIndex:uk_fingerprint"`
	CreatedAt   time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (IssuedLicenseModel) TableName() string {
	return "issued_licenses"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *IssuedLicenseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *IssuedLicenseModel) toDomain() *domain.IssuedLicense {
	return &domain.IssuedLicense{
		ID:          m.ID,
		ValidFrom:   m.ValidFrom,
		ValidTo:     m.ValidTo,
		Fingerprint: m.Fingerprint,
		CreatedAt:   m.CreatedAt,
	}
}

// IssuanceRepository はライセンス発行台帳へのアクセスを提供する。
type IssuanceRepository struct {
	db *gorm.DB
}

// NewIssuanceRepository は新しいIssuanceRepositoryを生成する。
func NewIssuanceRepository(db *gorm.DB) *IssuanceRepository {
	return &IssuanceRepository{db: db}
}

// Create は発行記録を保存する。
func (r *IssuanceRepository) Create(ctx context.Context, issued *domain.IssuedLicense) error {
	model := &IssuedLicenseModel{
		ID:          issued.ID,
		ValidFrom:   issued.ValidFrom,
		ValidTo:     issued.ValidTo,
		Fingerprint: issued.Fingerprint,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create issued license",
			"operation", "create",
			"fingerprint", issued.Fingerprint,
			"error", err,
		)
		return err
	}
	// gormで設定された値をドメインエンティティに反映
	issued.ID = model.ID
	issued.CreatedAt = model.CreatedAt
	return nil
}

// FindByID は指定されたIDの発行記録を取得する。存在しない場合はnilを返す。
func (r *IssuanceRepository) FindByID(ctx context.Context, id string) (*domain.IssuedLicense, error) {
	var model IssuedLicenseModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find issued license",
			"operation", "find_by_id",
			"id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindAll は全ての発行記録を新しい順に取得する。
func (r *IssuanceRepository) FindAll(ctx context.Context) ([]*domain.IssuedLicense, error) {
	var models []IssuedLicenseModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find issued licenses",
			"operation", "find_all",
			"error", err,
		)
		return nil, err
	}

	issued := make([]*domain.IssuedLicense, len(models))
	for i, m := range models {
		issued[i] = m.toDomain()
	}
	return issued, nil
}
