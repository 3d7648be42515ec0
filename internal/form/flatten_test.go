package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/form"
	"github.com/paydesk/taxdecl/internal/statute"
)

func TestDefaultsForEveryKind(t *testing.T) {
	for _, kind := range domain.Kinds() {
		defs := form.Schema(kind)
		require.NotEmpty(t, defs, "no schema for %s", kind)
		f := form.Defaults(kind)
		require.Len(t, f, len(defs))
		for _, d := range defs {
			assert.Contains(t, f, d.Key)
		}
	}
}

func TestFlattenFillsMissingSubRecords(t *testing.T) {
	// A deductions record with no section_80dd sub-record at all.
	rec := domain.NestedRecord{
		"section_80c": {"public_provident_fund": "90000"},
	}
	f, err := form.Flatten(domain.KindDeductions, rec)
	require.NoError(t, err)

	assert.Equal(t, "90000", f.Str("public_provident_fund"))
	assert.Equal(t, "Parents", f.Str("disabled_dependent_relation"))
	assert.Equal(t, "40-79%", f.Str("disability_band"))
	assert.Equal(t, "0", f.Str("disabled_dependent_amount"))
}

func TestFlattenMalformedRecord(t *testing.T) {
	rec := domain.NestedRecord{
		"section_80c": {"public_provident_fund": []any{"not", "a", "number"}},
	}
	f, err := form.Flatten(domain.KindDeductions, rec)
	require.ErrorIs(t, err, domain.ErrNoExistingData)
	// The caller still gets a complete, editable default form.
	assert.Equal(t, form.Defaults(domain.KindDeductions), f)
}

func TestFlattenDonationBuckets(t *testing.T) {
	rec := domain.NestedRecord{
		"section_80g": {
			"pm_national_relief_fund": "10000",
			"national_defence_fund":   5000,
			"pm_drought_relief_fund":  "2000",
			"approved_institution":    "7500",
			"other_50pct_limited":     "500",
		},
	}
	f, err := form.Flatten(domain.KindDeductions, rec)
	require.NoError(t, err)

	assert.Equal(t, "15000", f.Str("donation_100pct"))
	assert.Equal(t, "2000", f.Str("donation_50pct"))
	assert.Equal(t, "0", f.Str("donation_100pct_limited"))
	assert.Equal(t, "8000", f.Str("donation_50pct_limited"))
}

func TestFlattenFreeEducationSum(t *testing.T) {
	rec := domain.NestedRecord{
		"free_education": {
			"child_1": map[string]any{"monthly_cost": "2500", "months": 12},
			"child_2": map[string]any{"monthly_cost": 1500, "months": "10"},
		},
	}
	f, err := form.Flatten(domain.KindPerquisites, rec)
	require.NoError(t, err)
	assert.Equal(t, "45000", f.Str("free_education_amount"))
}

// Flattening the result of an unflatten must reproduce the same flat form,
// even though the donation buckets and the education sum are lossy on the
// nested side.
func TestRoundTrip(t *testing.T) {
	records := map[domain.ComponentKind]domain.NestedRecord{
		domain.KindSalary: {
			"basic_pay":          {"basic": "480000", "dearness_allowance": "12000"},
			"hra":                {"received": 240000, "rent_paid": "300000", "city": "Mumbai"},
			"lta":                {"claimed": "30000", "journeys": 1},
			"children_allowance": {"education_children": 2, "hostel_children": 0, "months": 12},
			"allowances":         {"special": "60000"},
		},
		domain.KindDeductions: {
			"section_80c":      {"public_provident_fund": "100000", "tuition_fees": 48000},
			"section_80ccd_1b": {"nps_contribution": "50000"},
			"section_80d":      {"self_premium": "22000", "parents_senior": true},
			"section_80g":      {"pm_cares_fund": "5000", "approved_institution": "1000"},
		},
		domain.KindPerquisites: {
			"company_car": {"perquisite_value": "39600"},
			"free_education": {
				"child_1": map[string]any{"monthly_cost": "3000", "months": 12},
			},
		},
		domain.KindOtherIncome: {
			"interest": {"savings_account": "8000", "fixed_deposit": "25000"},
		},
		domain.KindCapitalGains: {
			"long_term": {"equity_112a": "150000"},
		},
		domain.KindRetirementBenefits: {
			"gratuity": {"received": "1200000"},
		},
		domain.KindHouseProperty: {
			"property":  {"occupancy": "let_out", "annual_rent": "180000"},
			"home_loan": {"interest_paid": "210000"},
		},
	}
	for kind, rec := range records {
		t.Run(string(kind), func(t *testing.T) {
			first, err := form.Flatten(kind, rec)
			require.NoError(t, err)

			again, err := form.Flatten(kind, form.Unflatten(kind, first))
			require.NoError(t, err)
			assert.Equal(t, first, again)
		})
	}
}

func TestRoundTripFromDefaults(t *testing.T) {
	for _, kind := range domain.Kinds() {
		defaults := form.Defaults(kind)
		got, err := form.Flatten(kind, form.Unflatten(kind, defaults))
		require.NoError(t, err, kind)
		assert.Equal(t, defaults, got, kind)
	}
}

func TestGroupTotal(t *testing.T) {
	f := form.Defaults(domain.KindDeductions)
	f["public_provident_fund"] = "100000"
	f["elss_investment"] = "30000"
	f["tuition_fees"] = "25000"
	f["nps_additional"] = "50000" // different group, must not count

	total := f.GroupTotal(domain.KindDeductions, statute.Group80C)
	assert.Equal(t, "155000", total.String())
}

func TestFieldByKey(t *testing.T) {
	def, ok := form.FieldByKey(domain.KindDeductions, "public_provident_fund")
	require.True(t, ok)
	assert.Equal(t, statute.Group80C, def.Group)

	_, ok = form.FieldByKey(domain.KindDeductions, "no_such_field")
	assert.False(t, ok)
}

// Every grouped field must map to a ceiling the statute tables actually
// carry; a group with no ceiling would validate as uncapped and silently
// advise nothing. Fraction-based exemptions (commuted pension, VRS) stay
// ungrouped on purpose.
func TestRetirementGroupsHaveCeilings(t *testing.T) {
	l, ok := statute.ForYear(domain.DefaultTaxYear)
	require.True(t, ok)

	grouped := map[string]statute.AggregateGroup{}
	for _, def := range form.Schema(domain.KindRetirementBenefits) {
		if def.Group != "" {
			grouped[def.Key] = def.Group
		}
	}
	require.Equal(t, map[string]statute.AggregateGroup{
		"gratuity_received":         statute.GroupGratuity,
		"leave_encashment_received": statute.GroupLeaveEncash,
		"retrenchment_compensation": statute.GroupRetrenchment,
	}, grouped)
	for key, group := range grouped {
		assert.Positive(t, l.Ceiling(group, false), "field %s", key)
	}
}
