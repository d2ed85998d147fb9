package repository

import (
	"context"
	"testing"
)

func TestMigrationRepository_RecordAndCheck(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewMigrationRepository(db)

	if err := repo.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable failed: %v", err)
	}
	// 2回目もエラーにならない
	if err := repo.EnsureTable(ctx); err != nil {
		t.Fatalf("second EnsureTable failed: %v", err)
	}

	applied, err := repo.IsMigrationApplied(ctx, "001")
	if err != nil {
		t.Fatalf("IsMigrationApplied failed: %v", err)
	}
	if applied {
		t.Error("expected 001 to be pending")
	}

	if err := repo.RecordMigration(ctx, "001"); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}

	applied, err = repo.IsMigrationApplied(ctx, "001")
	if err != nil {
		t.Fatalf("IsMigrationApplied failed: %v", err)
	}
	if !applied {
		t.Error("expected 001 to be applied")
	}

	all, err := repo.FindAllApplied(ctx)
	if err != nil {
		t.Fatalf("FindAllApplied failed: %v", err)
	}
	if len(all) != 1 || all[0].Version != "001" || all[0].AppliedAt == nil {
		t.Errorf("unexpected applied migrations: %+v", all)
	}
}
