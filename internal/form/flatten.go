package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/statute"
)

// FlatForm is the editable view of one component: flat field key to value.
// Amounts are held as strings (field text), counts as ints, flags as bools.
type FlatForm map[string]any

// Str returns the field as a string, "" when absent.
func (f FlatForm) Str(key string) string {
	s, _ := f[key].(string)
	return s
}

// Amount parses the field as a decimal amount, zero when absent or
// unparseable.
func (f FlatForm) Amount(key string) decimal.Decimal {
	v, ok := f[key]
	if !ok {
		return decimal.Zero
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int returns the field as an int, 0 when absent.
func (f FlatForm) Int(key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		d, err := toDecimal(v)
		if err != nil {
			return 0
		}
		return int(d.IntPart())
	}
	return 0
}

// Bool returns the field as a bool, false when absent.
func (f FlatForm) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

// Clone returns a shallow copy.
func (f FlatForm) Clone() FlatForm {
	out := make(FlatForm, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// GroupTotal sums every amount field in the kind's schema that belongs to
// the aggregate group.
func (f FlatForm) GroupTotal(kind domain.ComponentKind, group statute.AggregateGroup) decimal.Decimal {
	total := decimal.Zero
	for _, def := range Schema(kind) {
		if def.Group == group && group != "" {
			total = total.Add(f.Amount(def.Key))
		}
	}
	return total
}

// Defaults returns a fully populated form with every declared default.
func Defaults(kind domain.ComponentKind) FlatForm {
	defs := Schema(kind)
	f := make(FlatForm, len(defs))
	for _, d := range defs {
		f[d.Key] = d.Default
	}
	return f
}

// Flatten maps a stored nested record onto the kind's flat form. Missing
// sub-records or missing fields take their declared defaults without
// complaint; a record whose present values cannot be read as their declared
// types is treated as unusable, and Flatten returns the full default form
// together with domain.ErrNoExistingData so the caller can start fresh.
func Flatten(kind domain.ComponentKind, rec domain.NestedRecord) (FlatForm, error) {
	f := Defaults(kind)
	malformed := false
	for _, def := range Schema(kind) {
		sub, ok := rec[def.Sub]
		if !ok || sub == nil {
			continue
		}
		if def.Computed() {
			v, err := computeDerived(def, sub)
			if err != nil {
				malformed = true
				continue
			}
			f[def.Key] = v
			continue
		}
		raw, ok := sub[def.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := coerce(def, raw)
		if err != nil {
			malformed = true
			continue
		}
		f[def.Key] = v
	}
	if malformed {
		return Defaults(kind), fmt.Errorf("unreadable %s record: %w", kind, domain.ErrNoExistingData)
	}
	return f, nil
}

// Unflatten rebuilds the nested record the boundary stores from a flat
// form. Amounts are written as decimal strings. Derived fields write their
// catch-all constituent: the four donation buckets each keep an "other"
// fund entry, and the education sum becomes a single annual entry, so a
// second Flatten reproduces the same flat values.
func Unflatten(kind domain.ComponentKind, f FlatForm) domain.NestedRecord {
	rec := domain.NestedRecord{}
	for _, def := range Schema(kind) {
		sub, ok := rec[def.Sub]
		if !ok {
			sub = domain.SubRecord{}
			rec[def.Sub] = sub
		}
		if def.Computed() {
			writeDerived(def, sub, f)
			continue
		}
		switch def.Type {
		case "text", "select":
			if b, ok := f[def.Key].(bool); ok {
				sub[def.Name] = b
				continue
			}
			sub[def.Name] = f.Str(def.Key)
		case "age", "months", "lta_claimed_count", "children_count":
			sub[def.Name] = f.Int(def.Key)
		default:
			if _, isBool := f[def.Key].(bool); isBool {
				sub[def.Name] = f.Bool(def.Key)
				continue
			}
			sub[def.Name] = f.Amount(def.Key).String()
		}
	}
	return rec
}

// donationFunds maps each 80G rate bucket's flat key to the named funds
// that sum into it. Every bucket also reads its catch-all "other" entry.
var donationFunds = map[string][]string{
	"donation_100pct":         {"pm_national_relief_fund", "national_defence_fund", "pm_cares_fund", "other_100pct"},
	"donation_50pct":          {"pm_drought_relief_fund", "jn_memorial_fund", "other_50pct"},
	"donation_100pct_limited": {"family_planning_association", "other_100pct_limited"},
	"donation_50pct_limited":  {"approved_institution", "other_50pct_limited"},
}

// donationSink is where Unflatten writes each bucket total.
var donationSink = map[string]string{
	"donation_100pct":         "other_100pct",
	"donation_50pct":          "other_50pct",
	"donation_100pct_limited": "other_100pct_limited",
	"donation_50pct_limited":  "other_50pct_limited",
}

func computeDerived(def FieldDef, sub domain.SubRecord) (any, error) {
	if def.Sub == "section_80g" {
		total := decimal.Zero
		for _, fund := range donationFunds[def.Key] {
			raw, ok := sub[fund]
			if !ok || raw == nil {
				continue
			}
			d, err := toDecimal(raw)
			if err != nil {
				return nil, err
			}
			total = total.Add(d)
		}
		return total.String(), nil
	}
	// free_education: one entry per child, monthly cost times months.
	total := decimal.Zero
	for _, raw := range sub {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("education entry is %T, not an object", raw)
		}
		monthly, err := toDecimal(entry["monthly_cost"])
		if err != nil {
			return nil, err
		}
		months, err := toDecimal(entry["months"])
		if err != nil {
			return nil, err
		}
		total = total.Add(monthly.Mul(months))
	}
	return total.String(), nil
}

func writeDerived(def FieldDef, sub domain.SubRecord, f FlatForm) {
	v := f.Amount(def.Key)
	if def.Sub == "section_80g" {
		sub[donationSink[def.Key]] = v.String()
		return
	}
	sub["children"] = map[string]any{
		"monthly_cost": v.String(),
		"months":       "1",
	}
}

// coerce reads a stored value into its flat representation for the field
// type: strings for amounts and selects, ints for counts, bools kept as-is.
func coerce(def FieldDef, raw any) (any, error) {
	switch def.Type {
	case "text", "select":
		switch s := raw.(type) {
		case string:
			return s, nil
		case bool:
			return s, nil
		}
		return nil, fmt.Errorf("%s is %T, not a string", def.Key, raw)
	case "age", "months", "lta_claimed_count", "children_count":
		d, err := toDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Key, err)
		}
		return int(d.IntPart()), nil
	}
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	d, err := toDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Key, err)
	}
	return d.String(), nil
}

// toDecimal accepts the numeric shapes a JSON boundary can hand back.
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(n, "₹"), ",", ""))
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	}
	return decimal.Zero, fmt.Errorf("value %v (%T) is not numeric", v, v)
}
