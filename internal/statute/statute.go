// Package statute holds every statutory ceiling, rate, and age threshold the
// declaration forms check against, keyed by assessment year. Amounts are whole
// rupees as published in the Income-tax Act chapters VI-A, 10 and 112/112A;
// rates are decimals. The table is data only; checks live in checks.go and
// are pure functions over it.
package statute

import (
	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/domain"
)

// AggregateGroup names a set of fields whose sum is checked against one
// ceiling. Groups are referenced from the form schemas.
type AggregateGroup string

const (
	Group80C           AggregateGroup = "section_80c"
	Group80CCD1B       AggregateGroup = "section_80ccd_1b"
	Group80DSelf       AggregateGroup = "section_80d_self"
	Group80DParents    AggregateGroup = "section_80d_parents"
	Group80G100Limited AggregateGroup = "section_80g_100_limited"
	Group80G50Limited  AggregateGroup = "section_80g_50_limited"
	Group80EEB         AggregateGroup = "section_80eeb"
	Group80TTA         AggregateGroup = "section_80tta"
	Group80TTB         AggregateGroup = "section_80ttb"
	GroupSection24B    AggregateGroup = "section_24b"
	GroupGratuity      AggregateGroup = "gratuity"
	GroupLeaveEncash   AggregateGroup = "leave_encashment"
	GroupRetrenchment  AggregateGroup = "retrenchment"
)

// YearLimits carries every limit for one assessment year.
type YearLimits struct {
	TaxYear string

	// Chapter VI-A deduction ceilings, rupees.
	Section80C       int64 // aggregate over the eleven 80C investment fields
	Section80CCD1B   int64 // NPS, over and above 80C
	Section80DSelf   int64 // self + family premium, below 60
	Section80DSelfSr int64 // self + family premium, 60 and above
	Section80DParent int64 // parents premium, below 60
	Section80DParentSr int64
	PreventiveCheckup int64 // counts inside the 80D cap
	Section80DD       int64 // disability 40-79%
	Section80DDSevere int64 // disability 80% and above
	Section80DDB      int64
	Section80DDBSr    int64
	Section80EEB      int64 // electric-vehicle loan interest
	Section80TTA      int64 // savings interest, below 60
	Section80TTB      int64 // deposit interest, 60 and above
	Section80U        int64
	Section80USevere  int64

	// House property and salary-side limits.
	Section24B        int64 // home-loan interest, self-occupied
	StandardDeduction int64

	// HRA city rates. Metro is the four named cities in Metros.
	HRAMetroRate    decimal.Decimal // 0.50
	HRANonMetroRate decimal.Decimal // 0.40
	RentBasicOffset decimal.Decimal // 0.10 of salary subtracted from rent
	Metros          []string

	// Travel / allowance limits.
	LTAJourneysPerBlock int
	ChildEducationPerMonth int64 // per child
	ChildHostelPerMonth    int64
	AllowanceMaxChildren   int

	// Retirement benefit exemption caps, rupees.
	GratuityExemption      int64
	LeaveEncashExemption   int64
	RetrenchmentExemption  int64

	// Capital gains.
	STCGRate111A     decimal.Decimal
	LTCGRate112A     decimal.Decimal
	LTCGRateOther    decimal.Decimal
	LTCG112AExemption int64 // 112A gains below this are untaxed

	// 80G qualifying limit for the "with limit" buckets: this fraction of
	// adjusted gross total income.
	DonationQualifyingRate decimal.Decimal

	SeniorAge      int
	VerySeniorAge  int
}

// DefaultYear is used when a request names an unknown assessment year.
const DefaultYear = domain.DefaultTaxYear

// Supported returns the assessment years with a limits table, ascending.
func Supported() []string { return []string{"2023-24", "2024-25"} }

// ForYear resolves the limits table for an assessment year. Unknown years
// fall back to DefaultYear; the second return reports an exact match.
func ForYear(year string) (*YearLimits, bool) {
	l, ok := years[year]
	if !ok {
		l = years[DefaultYear]
	}
	return l, ok
}

var years = map[string]*YearLimits{
	"2023-24": ay2023(),
	"2024-25": ay2024(),
}

func ay2023() *YearLimits {
	l := baseLimits("2023-24")
	// Leave encashment cap was raised to 25L effective 1 Apr 2023
	// (Notification 31/2023); both table years carry the new figure.
	return l
}

func ay2024() *YearLimits {
	return baseLimits("2024-25")
}

func baseLimits(year string) *YearLimits {
	return &YearLimits{
		TaxYear: year,

		Section80C:         150_000,
		Section80CCD1B:     50_000,
		Section80DSelf:     25_000,
		Section80DSelfSr:   50_000,
		Section80DParent:   25_000,
		Section80DParentSr: 50_000,
		PreventiveCheckup:  5_000,
		Section80DD:        75_000,
		Section80DDSevere:  125_000,
		Section80DDB:       40_000,
		Section80DDBSr:     100_000,
		Section80EEB:       150_000,
		Section80TTA:       10_000,
		Section80TTB:       50_000,
		Section80U:         75_000,
		Section80USevere:   125_000,

		Section24B:        200_000,
		StandardDeduction: 50_000,

		HRAMetroRate:    decimal.RequireFromString("0.50"),
		HRANonMetroRate: decimal.RequireFromString("0.40"),
		RentBasicOffset: decimal.RequireFromString("0.10"),
		Metros:          []string{"Delhi", "Mumbai", "Kolkata", "Chennai"},

		LTAJourneysPerBlock:    2,
		ChildEducationPerMonth: 100,
		ChildHostelPerMonth:    300,
		AllowanceMaxChildren:   2,

		GratuityExemption:     2_000_000,
		LeaveEncashExemption:  2_500_000,
		RetrenchmentExemption: 500_000,

		STCGRate111A:      decimal.RequireFromString("0.15"),
		LTCGRate112A:      decimal.RequireFromString("0.10"),
		LTCGRateOther:     decimal.RequireFromString("0.20"),
		LTCG112AExemption: 100_000,

		DonationQualifyingRate: decimal.RequireFromString("0.10"),

		SeniorAge:     60,
		VerySeniorAge: 80,
	}
}
