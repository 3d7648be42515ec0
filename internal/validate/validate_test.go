package validate_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/statute"
	"github.com/paydesk/taxdecl/internal/validate"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func limits(t *testing.T) *statute.YearLimits {
	t.Helper()
	l, ok := statute.ForYear("2024-25")
	if !ok {
		t.Fatal("2024-25 limits missing")
	}
	return l
}

// Section 80C aggregate of exactly 150,000 passes; 150,001 warns with an
// excess of exactly 1.
func TestValidate_80C_CeilingExactness(t *testing.T) {
	ctx := validate.Context{Limits: limits(t), Group: statute.Group80C, GroupTotal: d("150000")}
	res := validate.Validate(validate.Section80CField, "50000", ctx)
	if res.Severity != validate.None {
		t.Fatalf("at ceiling: severity %q, message %q", res.Severity, res.Message)
	}

	ctx.GroupTotal = d("150001")
	res = validate.Validate(validate.Section80CField, "50001", ctx)
	if res.Severity != validate.Warning {
		t.Fatalf("over ceiling: severity %q, want warning", res.Severity)
	}
	if !strings.Contains(res.Message, "₹1 over") {
		t.Errorf("message must report the exact excess, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "₹1,50,000") {
		t.Errorf("message must name the ceiling, got %q", res.Message)
	}
}

// HRA case: basic 40,000, no DA, metro, rent 25,000, claimed 20,000 →
// exemption is the full 20,000, so no message.
func TestValidate_HRA(t *testing.T) {
	ctx := validate.Context{
		Limits:      limits(t),
		BasicPlusDA: d("40000"),
		RentPaid:    d("25000"),
		City:        "Mumbai",
	}
	res := validate.Validate(validate.HRA, "20000", ctx)
	if res.Severity != validate.None {
		t.Fatalf("fully exempt claim flagged: %q %q", res.Severity, res.Message)
	}

	// Non-metro rate 40% binds: exemption 16,000 of 20,000 claimed.
	ctx.City = "Indore"
	res = validate.Validate(validate.HRA, "20000", ctx)
	if res.Severity != validate.Info {
		t.Fatalf("partially exempt claim: severity %q, want info", res.Severity)
	}
	if !strings.Contains(res.Message, "₹16,000") || !strings.Contains(res.Message, "₹4,000") {
		t.Errorf("message must show exempt and taxed portions, got %q", res.Message)
	}
}

// Savings interest of 40,000 is over the 80TTA cap for an employee under
// 60, but a senior claims under 80TTB and stays within its 50,000 ceiling.
func TestValidate_SavingsInterest_SeniorUses80TTB(t *testing.T) {
	ctx := validate.Context{Limits: limits(t), Group: statute.Group80TTA, GroupTotal: d("40000"), Age: 40}
	res := validate.Validate(validate.Amount, "40000", ctx)
	if res.Severity != validate.Warning {
		t.Fatalf("non-senior: severity %q, want warning", res.Severity)
	}
	if !strings.Contains(res.Message, "by ₹30,000") {
		t.Errorf("message must report the excess, got %q", res.Message)
	}

	ctx.Age = 65
	res = validate.Validate(validate.Amount, "40000", ctx)
	if res.Severity != validate.None {
		t.Fatalf("senior within 80TTB flagged: %q %q", res.Severity, res.Message)
	}
}

func TestValidate_NeverBlocks(t *testing.T) {
	// Even absurd amounts classify as warnings, never as errors: the server
	// caps excess amounts, the client only advises.
	ctx := validate.Context{Limits: limits(t), Group: statute.Group80C, GroupTotal: d("99999999")}
	res := validate.Validate(validate.Amount, "99999999", ctx)
	if res.Severity != validate.Warning {
		t.Fatalf("severity %q, want warning", res.Severity)
	}
}

func TestValidate_FieldTypes(t *testing.T) {
	l := limits(t)
	cases := []struct {
		name string
		ft   validate.FieldType
		raw  string
		ctx  validate.Context
		want validate.Severity
	}{
		{"text passes", validate.Text, "whatever", validate.Context{Limits: l}, validate.None},
		{"select passes", validate.Select, "Parents", validate.Context{Limits: l}, validate.None},
		{"empty numeric passes", validate.Amount, "", validate.Context{Limits: l}, validate.None},
		{"garbage numeric informs", validate.Amount, "12abc", validate.Context{Limits: l}, validate.Info},
		{"negative amount warns", validate.Amount, "-5", validate.Context{Limits: l}, validate.Warning},
		{"comma grouping accepted", validate.Amount, "1,50,000", validate.Context{Limits: l}, validate.None},
		{"rupee prefix accepted", validate.Amount, "₹500", validate.Context{Limits: l}, validate.None},
		{"age in range", validate.Age, "35", validate.Context{Limits: l}, validate.None},
		{"age out of range", validate.Age, "14", validate.Context{Limits: l}, validate.Warning},
		{"months over twelve", validate.Months, "13", validate.Context{Limits: l}, validate.Warning},
		{"percentage over hundred", validate.Percentage, "130", validate.Context{Limits: l}, validate.Warning},
		{"interest rate plausible", validate.InterestRate, "8.5", validate.Context{Limits: l}, validate.None},
		{"interest rate implausible", validate.InterestRate, "45", validate.Context{Limits: l}, validate.Info},
		{"lta within block", validate.LTAClaimedCount, "2", validate.Context{Limits: l}, validate.None},
		{"lta over block", validate.LTAClaimedCount, "3", validate.Context{Limits: l}, validate.Warning},
		{"children within cap", validate.ChildrenCount, "2", validate.Context{Limits: l}, validate.None},
		{"children over cap", validate.ChildrenCount, "3", validate.Context{Limits: l}, validate.Info},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := validate.Validate(tc.ft, tc.raw, tc.ctx)
			if res.Severity != tc.want {
				t.Errorf("Validate(%s, %q) severity = %q (%q), want %q",
					tc.ft, tc.raw, res.Severity, res.Message, tc.want)
			}
		})
	}
}

func TestValidate_80D_SeniorContext(t *testing.T) {
	l := limits(t)
	ctx := validate.Context{Limits: l, Group: statute.Group80DSelf, GroupTotal: d("30000"), Age: 45}
	if res := validate.Validate(validate.Amount, "30000", ctx); res.Severity != validate.Warning {
		t.Errorf("age 45, 30000 premium: severity %q, want warning", res.Severity)
	}
	ctx.Age = 62
	if res := validate.Validate(validate.Amount, "30000", ctx); res.Severity != validate.None {
		t.Errorf("age 62, 30000 premium within 50000 cap: severity %q, want none", res.Severity)
	}
}

func TestIsAmountField(t *testing.T) {
	// Any tag containing "amount" is currency-valued by convention.
	for _, ft := range []validate.FieldType{validate.Amount, validate.LoanAmount, validate.FieldType("exempt_amount"), validate.HRA} {
		if !validate.IsAmountField(ft) {
			t.Errorf("IsAmountField(%s) = false", ft)
		}
	}
	for _, ft := range []validate.FieldType{validate.Text, validate.Age, validate.Months} {
		if validate.IsAmountField(ft) {
			t.Errorf("IsAmountField(%s) = true", ft)
		}
	}
}

func TestFormatINR(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0", "₹0"},
		{"999", "₹999"},
		{"1500", "₹1,500"},
		{"150000", "₹1,50,000"},
		{"12345678", "₹1,23,45,678"},
		{"-2500", "-₹2,500"},
		{"1234.5", "₹1,234.5"},
	}
	for _, tc := range cases {
		if got := validate.FormatINR(d(tc.in)); got != tc.want {
			t.Errorf("FormatINR(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
