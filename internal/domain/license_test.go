package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestLicenseRecord_ActiveAt(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	r := NewLicenseRecord(from, to)

	if r.ValidFrom != 1704067200000 {
		t.Errorf("want ValidFrom 1704067200000, got %d", r.ValidFrom)
	}
	if !r.ActiveAt(from) || !r.ActiveAt(to) {
		t.Error("expected boundaries to be active")
	}
	if r.ActiveAt(from.Add(-time.Millisecond)) {
		t.Error("expected time before ValidFrom to be inactive")
	}
	if r.ActiveAt(to.Add(time.Millisecond)) {
		t.Error("expected time after ValidTo to be inactive")
	}
	if !r.From().Equal(from) || !r.To().Equal(to) {
		t.Errorf("want %v..%v, got %v..%v", from, to, r.From(), r.To())
	}
}

func TestLicenseOpenError(t *testing.T) {
	cause := fmt.Errorf("%w: missing delimiter", ErrFileFormat)
	err := NewLicenseOpenError(cause)

	if err.Error() != "failed to parse license" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, ErrLicenseOpen) {
		t.Error("want errors.Is(err, ErrLicenseOpen)")
	}
	if !errors.Is(err, ErrFileFormat) {
		t.Error("want errors.Is(err, ErrFileFormat)")
	}

	// 二重に包まない
	if again := NewLicenseOpenError(err); again != err {
		t.Error("expected NewLicenseOpenError to return the same error")
	}
	if NewLicenseOpenError(nil) != nil {
		t.Error("expected nil for nil cause")
	}
}

func TestMigration_MarkApplied(t *testing.T) {
	migrations := []*Migration{
		{Version: "001", Status: MigrationStatusPending},
		{Version: "002", Status: MigrationStatusPending},
	}
	if got := CountPending(migrations); got != 2 {
		t.Fatalf("want 2 pending, got %d", got)
	}

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	migrations[0].MarkApplied(at)

	if !migrations[0].IsApplied() || migrations[0].AppliedAt == nil || !migrations[0].AppliedAt.Equal(at) {
		t.Errorf("unexpected migration state: %+v", migrations[0])
	}
	if got := CountPending(migrations); got != 1 {
		t.Errorf("want 1 pending, got %d", got)
	}
}
