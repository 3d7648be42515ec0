package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paydesk/taxdecl/internal/domain"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return r
}

func record(ppf string) domain.NestedRecord {
	return domain.NestedRecord{
		"section_80c": {"public_provident_fund": ppf},
	}
}

func TestGetComponentMissing(t *testing.T) {
	r := testRepo(t)
	_, err := r.GetComponent(context.Background(), 1, "2024-25", domain.KindDeductions)
	if !errors.Is(err, domain.ErrNoExistingData) {
		t.Fatalf("err = %v, want ErrNoExistingData", err)
	}
}

func TestFirstSaveOpensWindowAtYearStart(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	_, err := r.SaveComponent(ctx, &domain.SaveRequest{
		EmployeeID: 1, TaxYear: "2024-25", Kind: domain.KindDeductions,
		Component: record("100000"),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rev, err := r.ActiveRevision(ctx, 1, "2024-25", domain.KindDeductions)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if !rev.Active() {
		t.Error("revision window not open")
	}
	want := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !rev.EffectiveFrom.Equal(want) {
		t.Errorf("effective_from = %v, want %v", rev.EffectiveFrom, want)
	}

	got, err := r.GetComponent(ctx, 1, "2024-25", domain.KindDeductions)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["section_80c"]["public_provident_fund"] != "100000" {
		t.Errorf("stored data = %v", got)
	}
}

func TestUpdateRewritesActiveRevision(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	req := &domain.SaveRequest{
		EmployeeID: 1, TaxYear: "2024-25", Kind: domain.KindDeductions,
		Component: record("100000"),
	}
	if _, err := r.SaveComponent(ctx, req); err != nil {
		t.Fatalf("first save: %v", err)
	}
	req.Component = record("125000")
	if _, err := r.SaveComponent(ctx, req); err != nil {
		t.Fatalf("second save: %v", err)
	}

	hist, err := r.History(ctx, 1, "2024-25", domain.KindDeductions)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("update created a new revision: history has %d rows", len(hist))
	}
	if hist[0].Data["section_80c"]["public_provident_fund"] != "125000" {
		t.Errorf("active data not rewritten: %v", hist[0].Data)
	}
}

func TestForceNewRevisionClosesWindow(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	if _, err := r.SaveComponent(ctx, &domain.SaveRequest{
		EmployeeID: 1, TaxYear: "2024-25", Kind: domain.KindDeductions,
		Component: record("100000"),
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := r.SaveComponent(ctx, &domain.SaveRequest{
		EmployeeID: 1, TaxYear: "2024-25", Kind: domain.KindDeductions,
		Component: record("140000"), ForceNewRevision: true, EffectiveFrom: "2024-10-01",
		Notes: "salary revised",
	}); err != nil {
		t.Fatalf("new revision: %v", err)
	}

	hist, err := r.History(ctx, 1, "2024-25", domain.KindDeductions)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history has %d rows, want 2", len(hist))
	}

	closed, active := hist[0], hist[1]
	if closed.EffectiveTill == nil {
		t.Fatal("previous revision window still open")
	}
	cut := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !closed.EffectiveTill.Equal(cut) {
		t.Errorf("window closed at %v, want %v", closed.EffectiveTill, cut)
	}
	// The closed revision's data is untouched.
	if closed.Data["section_80c"]["public_provident_fund"] != "100000" {
		t.Errorf("closed revision mutated: %v", closed.Data)
	}
	if !active.Active() || !active.EffectiveFrom.Equal(cut) {
		t.Errorf("successor window wrong: from=%v till=%v", active.EffectiveFrom, active.EffectiveTill)
	}
	if active.Notes != "salary revised" {
		t.Errorf("notes = %q", active.Notes)
	}

	got, err := r.GetComponent(ctx, 1, "2024-25", domain.KindDeductions)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["section_80c"]["public_provident_fund"] != "140000" {
		t.Errorf("active data = %v", got)
	}
}

func TestForceNewRevisionWithoutDate(t *testing.T) {
	r := testRepo(t)
	_, err := r.SaveComponent(context.Background(), &domain.SaveRequest{
		EmployeeID: 1, TaxYear: "2024-25", Kind: domain.KindDeductions,
		Component: record("100000"), ForceNewRevision: true,
	})
	if !errors.Is(err, domain.ErrEffectiveFromRequired) {
		t.Fatalf("err = %v, want ErrEffectiveFromRequired", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	for _, k := range []domain.ComponentKind{domain.KindDeductions, domain.KindSalary} {
		if _, err := r.SaveComponent(ctx, &domain.SaveRequest{
			EmployeeID: 1, TaxYear: "2024-25", Kind: k, Component: record("1"),
		}); err != nil {
			t.Fatalf("save %s: %v", k, err)
		}
	}
	if _, err := r.GetComponent(ctx, 1, "2023-24", domain.KindDeductions); !errors.Is(err, domain.ErrNoExistingData) {
		t.Errorf("other year leaked: %v", err)
	}
	hist, err := r.History(ctx, 1, "2024-25", domain.KindSalary)
	if err != nil || len(hist) != 1 {
		t.Errorf("salary history = %d rows, err %v", len(hist), err)
	}
}
