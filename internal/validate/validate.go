// Package validate classifies candidate field values against the statutory
// rule table. Every outcome is advisory: amounts over a ceiling are capped
// server-side, so the engine warns and informs but never blocks submission.
// The host renders Result however it likes; nothing here knows about widgets.
package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/statute"
)

// FieldType tags what a form field holds. The set is closed across all
// component forms.
type FieldType string

const (
	Amount          FieldType = "amount"
	Age             FieldType = "age"
	Section80CField FieldType = "section_80c_component"
	HRA             FieldType = "hra"
	LTAClaimedCount FieldType = "lta_claimed_count"
	ChildrenCount   FieldType = "children_count"
	Months          FieldType = "months"
	Percentage      FieldType = "percentage"
	InterestRate    FieldType = "interest_rate"
	LoanAmount      FieldType = "loan_amount"
	Text            FieldType = "text"
	Select          FieldType = "select"
)

// IsAmountField reports whether a field type is currency-valued for display
// purposes. By convention any tag containing "amount" counts, alongside the
// explicitly monetary tags.
func IsAmountField(ft FieldType) bool {
	if strings.Contains(string(ft), "amount") {
		return true
	}
	switch ft {
	case Section80CField, HRA:
		return true
	}
	return false
}

// Severity of a validation result. Advisory only.
type Severity string

const (
	None    Severity = "none"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// Result is a plain classification; rendering is the host's concern.
type Result struct {
	Severity Severity
	Message  string
}

var ok = Result{Severity: None}

// Context carries everything a classification needs, passed explicitly;
// the engine reads no ambient state.
type Context struct {
	Limits *statute.YearLimits

	// GroupTotal is the aggregate of the field's group including the
	// candidate value, recomputed by the caller from the in-memory form.
	Group      statute.AggregateGroup
	GroupTotal decimal.Decimal

	// Employee context for age-dependent ceilings and HRA.
	Age         int
	BasicPlusDA decimal.Decimal
	RentPaid    decimal.Decimal
	City        string
}

func (c Context) limits() *statute.YearLimits {
	if c.Limits != nil {
		return c.Limits
	}
	l, _ := statute.ForYear(statute.DefaultYear)
	return l
}

func (c Context) senior() bool { return c.Age >= c.limits().SeniorAge }

// Validate classifies a raw field value. Unparsable numeric input yields an
// info result (the form keeps the keystroke; commit-time parsing is the
// calculator's job), and text/select fields always pass.
func Validate(ft FieldType, raw string, ctx Context) Result {
	switch ft {
	case Text, Select:
		return ok
	}

	v, err := parseNumber(raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return ok
		}
		return Result{Severity: Info, Message: "enter a numeric value"}
	}

	switch ft {
	case Amount, LoanAmount:
		return validateAmount(v, ctx)
	case Section80CField:
		return validate80C(v, ctx)
	case HRA:
		return validateHRA(v, ctx)
	case Age:
		return validateAge(v)
	case LTAClaimedCount:
		return validateLTACount(v, ctx)
	case ChildrenCount:
		return validateChildren(v, ctx)
	case Months:
		return validateMonths(v)
	case Percentage:
		return validatePercentage(v)
	case InterestRate:
		return validateInterestRate(v)
	}
	// Unknown tags that look like amounts follow the amount rules.
	if IsAmountField(ft) {
		return validateAmount(v, ctx)
	}
	return ok
}

func validateAmount(v decimal.Decimal, ctx Context) Result {
	if v.IsNegative() {
		return Result{Severity: Warning, Message: "amount cannot be negative"}
	}
	if ctx.Group == "" {
		return ok
	}
	c := ctx.limits().CheckAggregateLimitFor(ctx.Group, []decimal.Decimal{ctx.GroupTotal}, ctx.senior())
	if c.Exceeded() {
		return Result{
			Severity: Warning,
			Message: fmt.Sprintf("total %s exceeds the %s limit by %s; the excess earns no deduction",
				FormatINR(c.Total), FormatINR(c.Ceiling), FormatINR(c.ExceededBy)),
		}
	}
	return ok
}

func validate80C(v decimal.Decimal, ctx Context) Result {
	if v.IsNegative() {
		return Result{Severity: Warning, Message: "amount cannot be negative"}
	}
	l := ctx.limits()
	c := l.CheckAggregateLimit(statute.Group80C, []decimal.Decimal{ctx.GroupTotal})
	if c.Exceeded() {
		return Result{
			Severity: Warning,
			Message: fmt.Sprintf("Section 80C investments total %s, %s over the %s ceiling; the excess earns no deduction",
				FormatINR(c.Total), FormatINR(c.ExceededBy), FormatINR(c.Ceiling)),
		}
	}
	return ok
}

func validateHRA(v decimal.Decimal, ctx Context) Result {
	if v.IsNegative() {
		return Result{Severity: Warning, Message: "amount cannot be negative"}
	}
	l := ctx.limits()
	exempt := l.HRAExemption(v, ctx.BasicPlusDA, ctx.RentPaid, ctx.City)
	if v.GreaterThan(exempt) {
		return Result{
			Severity: Info,
			Message: fmt.Sprintf("only %s of the %s claimed is exempt under Rule 2A; %s will be taxed",
				FormatINR(exempt), FormatINR(v), FormatINR(v.Sub(exempt))),
		}
	}
	return ok
}

func validateAge(v decimal.Decimal) Result {
	if v.IsZero() {
		// Not entered yet.
		return ok
	}
	if !v.IsInteger() || v.LessThan(decimal.NewFromInt(18)) || v.GreaterThan(decimal.NewFromInt(100)) {
		return Result{Severity: Warning, Message: "age must be a whole number between 18 and 100"}
	}
	return ok
}

func validateLTACount(v decimal.Decimal, ctx Context) Result {
	max := int64(ctx.limits().LTAJourneysPerBlock)
	if v.GreaterThan(decimal.NewFromInt(max)) {
		return Result{
			Severity: Warning,
			Message:  fmt.Sprintf("LTA is exempt for at most %d journeys in the current block of four years", max),
		}
	}
	if v.IsNegative() || !v.IsInteger() {
		return Result{Severity: Warning, Message: "journey count must be a whole number"}
	}
	return ok
}

func validateChildren(v decimal.Decimal, ctx Context) Result {
	if v.IsNegative() || !v.IsInteger() {
		return Result{Severity: Warning, Message: "children count must be a whole number"}
	}
	max := int64(ctx.limits().AllowanceMaxChildren)
	if v.GreaterThan(decimal.NewFromInt(max)) {
		return Result{
			Severity: Info,
			Message:  fmt.Sprintf("the allowance exemption covers at most %d children", max),
		}
	}
	return ok
}

func validateMonths(v decimal.Decimal) Result {
	if v.IsNegative() || !v.IsInteger() || v.GreaterThan(decimal.NewFromInt(12)) {
		return Result{Severity: Warning, Message: "months must be a whole number between 0 and 12"}
	}
	return ok
}

func validatePercentage(v decimal.Decimal) Result {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return Result{Severity: Warning, Message: "percentage must be between 0 and 100"}
	}
	return ok
}

func validateInterestRate(v decimal.Decimal) Result {
	if v.IsNegative() {
		return Result{Severity: Warning, Message: "interest rate cannot be negative"}
	}
	if v.GreaterThan(decimal.NewFromInt(30)) {
		return Result{Severity: Info, Message: "interest rate above 30%, check the figure"}
	}
	return ok
}

// parseNumber accepts plain numerals with optional Indian-style comma
// grouping and an optional rupee prefix.
func parseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	return decimal.NewFromString(s)
}

// FormatINR renders a rupee amount with Indian digit grouping: 1,50,000.
func FormatINR(v decimal.Decimal) string {
	neg := v.IsNegative()
	s := v.Abs().Round(2).String()
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	grouped := groupIndian(intPart)
	if neg {
		return "-₹" + grouped + frac
	}
	return "₹" + grouped + frac
}

// groupIndian inserts commas after the last three digits, then every two.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head := digits[:n-3]
	out := digits[n-3:]
	for len(head) > 2 {
		out = head[len(head)-2:] + "," + out
		head = head[:len(head)-2]
	}
	return head + "," + out
}
