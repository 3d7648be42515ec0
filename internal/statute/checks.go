package statute

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AggregateCheck is the result of summing a field group against its ceiling.
// Exactly at the ceiling is within limit: ExceededBy is zero and Remaining is
// zero. One rupee over reports ExceededBy of exactly one.
type AggregateCheck struct {
	Total      decimal.Decimal
	Ceiling    decimal.Decimal
	ExceededBy decimal.Decimal
	Remaining  decimal.Decimal
}

// Exceeded reports whether the aggregate is over its ceiling.
func (c AggregateCheck) Exceeded() bool { return c.ExceededBy.IsPositive() }

// Ceiling returns the rupee ceiling for an aggregate group. senior selects
// the 60-and-above figure where the Act provides one. A zero ceiling means
// the group is uncapped (80E-style: deduction limited only by amount paid).
func (l *YearLimits) Ceiling(group AggregateGroup, senior bool) int64 {
	switch group {
	case Group80C:
		return l.Section80C
	case Group80CCD1B:
		return l.Section80CCD1B
	case Group80DSelf:
		if senior {
			return l.Section80DSelfSr
		}
		return l.Section80DSelf
	case Group80DParents:
		if senior {
			return l.Section80DParentSr
		}
		return l.Section80DParent
	case Group80EEB:
		return l.Section80EEB
	case Group80TTA:
		// Seniors claim under 80TTB instead, which also covers FD
		// interest and carries the higher cap.
		if senior {
			return l.Section80TTB
		}
		return l.Section80TTA
	case Group80TTB:
		return l.Section80TTB
	case GroupSection24B:
		return l.Section24B
	case GroupGratuity:
		return l.GratuityExemption
	case GroupLeaveEncash:
		return l.LeaveEncashExemption
	case GroupRetrenchment:
		return l.RetrenchmentExemption
	}
	return 0
}

// CheckAggregateLimit sums values and compares them to the group's non-senior
// ceiling. Use CheckAggregateLimitFor when the employee's age matters.
func (l *YearLimits) CheckAggregateLimit(group AggregateGroup, values []decimal.Decimal) AggregateCheck {
	return l.CheckAggregateLimitFor(group, values, false)
}

// CheckAggregateLimitFor is CheckAggregateLimit with an explicit senior flag.
func (l *YearLimits) CheckAggregateLimitFor(group AggregateGroup, values []decimal.Decimal, senior bool) AggregateCheck {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	ceiling := decimal.NewFromInt(l.Ceiling(group, senior))
	c := AggregateCheck{Total: total, Ceiling: ceiling}
	if ceiling.IsZero() {
		// Uncapped group: nothing exceeded, nothing remaining to report.
		return c
	}
	if total.GreaterThan(ceiling) {
		c.ExceededBy = total.Sub(ceiling)
		c.Remaining = decimal.Zero
	} else {
		c.ExceededBy = decimal.Zero
		c.Remaining = ceiling.Sub(total)
	}
	return c
}

// IsMetro reports whether city is one of the four metros that attract the
// 50% HRA rate. Matching is case-insensitive.
func (l *YearLimits) IsMetro(city string) bool {
	for _, m := range l.Metros {
		if strings.EqualFold(strings.TrimSpace(city), m) {
			return true
		}
	}
	return false
}

// CityRate returns the HRA exemption rate for a city: 50% for the four
// metros, 40% otherwise.
func (l *YearLimits) CityRate(city string) decimal.Decimal {
	if l.IsMetro(city) {
		return l.HRAMetroRate
	}
	return l.HRANonMetroRate
}

// HRAExemption computes the exempt portion of house rent allowance per
// Rule 2A: the least of HRA received, salary × city rate, and rent paid less
// 10% of salary (floored at zero). salary is basic plus dearness allowance.
func (l *YearLimits) HRAExemption(hraClaimed, salary, rentPaid decimal.Decimal, city string) decimal.Decimal {
	byCity := salary.Mul(l.CityRate(city))
	byRent := rentPaid.Sub(salary.Mul(l.RentBasicOffset))
	if byRent.IsNegative() {
		byRent = decimal.Zero
	}
	return decimal.Min(hraClaimed, byCity, byRent)
}

// DisabilityCeiling returns the 80DD/80U ceiling for a disability band
// string. Bands at 80% and above take the severe figure.
func (l *YearLimits) DisabilityCeiling(band string) int64 {
	if strings.HasPrefix(strings.TrimSpace(band), "80") {
		return l.Section80DDSevere
	}
	return l.Section80DD
}

// MedicalTreatmentCeiling returns the 80DDB ceiling for the patient's age.
func (l *YearLimits) MedicalTreatmentCeiling(age int) int64 {
	if age >= l.SeniorAge {
		return l.Section80DDBSr
	}
	return l.Section80DDB
}

// ChildAllowanceCeiling returns the exempt children education (or hostel)
// allowance for the given head count over months months. Children beyond
// AllowanceMaxChildren do not add to the exemption.
func (l *YearLimits) ChildAllowanceCeiling(children, months int, hostel bool) decimal.Decimal {
	if children > l.AllowanceMaxChildren {
		children = l.AllowanceMaxChildren
	}
	if children < 0 {
		children = 0
	}
	per := l.ChildEducationPerMonth
	if hostel {
		per = l.ChildHostelPerMonth
	}
	return decimal.NewFromInt(per * int64(children) * int64(months))
}

// DonationQualifyingLimit returns 10% of adjusted gross total income, the
// cap applied to the two "with qualifying limit" 80G buckets.
func (l *YearLimits) DonationQualifyingLimit(adjustedGrossIncome decimal.Decimal) decimal.Decimal {
	return adjustedGrossIncome.Mul(l.DonationQualifyingRate)
}
