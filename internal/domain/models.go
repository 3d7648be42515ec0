package domain

import (
	"errors"
	"time"
)

// DefaultTaxYear is the assessment year assumed when a request carries none.
const DefaultTaxYear = "2024-25"

// ComponentKind identifies one categorized slice of an employee's annual
// tax declaration.
type ComponentKind string

const (
	KindSalary             ComponentKind = "salary"
	KindPerquisites        ComponentKind = "perquisites"
	KindDeductions         ComponentKind = "deductions"
	KindOtherIncome        ComponentKind = "other_income"
	KindCapitalGains       ComponentKind = "capital_gains"
	KindRetirementBenefits ComponentKind = "retirement_benefits"
	KindHouseProperty      ComponentKind = "house_property"
)

// Kinds returns every component kind in declaration order.
func Kinds() []ComponentKind {
	return []ComponentKind{
		KindSalary, KindPerquisites, KindDeductions, KindOtherIncome,
		KindCapitalGains, KindRetirementBenefits, KindHouseProperty,
	}
}

func (k ComponentKind) Valid() bool {
	for _, kk := range Kinds() {
		if k == kk {
			return true
		}
	}
	return false
}

// SubRecord is a flat mapping of field name to value within one named
// section of a component (e.g. the fields of section_80c).
type SubRecord map[string]any

// NestedRecord is the canonical persisted shape of a component: named
// sub-records, each a flat field map. This is exactly what the persistence
// boundary stores and returns under component_data.
type NestedRecord map[string]SubRecord

// Revision is one time-bounded version of a component's values. At most one
// revision per (employee, tax year, kind) is active, i.e. has no
// EffectiveTill. Closed revisions are history and are never rewritten.
type Revision struct {
	ID            int64
	EmployeeID    int64
	TaxYear       string
	Kind          ComponentKind
	Data          NestedRecord
	EffectiveFrom time.Time
	EffectiveTill *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether this revision's window is still open.
func (r *Revision) Active() bool { return r.EffectiveTill == nil }

// SaveRequest is the outbound shape assembled at save time. When
// ForceNewRevision is set, EffectiveFrom must carry a date ("2006-01-02");
// the previous active revision's window is closed at that date by the
// persistence boundary, not by the client.
type SaveRequest struct {
	EmployeeID       int64         `json:"employee_id"`
	TaxYear          string        `json:"tax_year"`
	Kind             ComponentKind `json:"-"`
	Component        NestedRecord  `json:"-"`
	ForceNewRevision bool          `json:"force_new_revision"`
	EffectiveFrom    string        `json:"effective_from,omitempty"`
	Notes            string        `json:"notes"`
}

// ValidationError is one entry of a structured error payload returned by the
// persistence boundary (or produced locally for the effective_from gate).
type ValidationError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// ErrorPayload mirrors the boundary's error body: detail is either a plain
// string or a list of ValidationError.
type ErrorPayload struct {
	Detail any `json:"detail"`
}

var (
	// ErrNoExistingData means the boundary has no record for the requested
	// (employee, year, kind). Callers treat it as "use defaults", not as a
	// failure.
	ErrNoExistingData = errors.New("no existing component data")

	// ErrEffectiveFromRequired blocks a new-revision save that carries no
	// effective date. This is the only blocking validation in the engine:
	// an un-dated revision cannot be ordered in history.
	ErrEffectiveFromRequired = errors.New("effective_from is required when forcing a new revision")
)

// Statement is the input to the declaration-statement generator: the active
// component data for one employee and year.
type Statement struct {
	EmployeeID   int64
	EmployeeName string
	TaxYear      string
	Components   map[ComponentKind]NestedRecord
	GeneratedAt  time.Time
}
