// Package form maps the nested component records the boundary stores to the
// flat field map an editing screen works with, and back. Each component kind
// has a declared schema; flattening fills every declared field with its
// default when the stored record is missing data, and unflattening rebuilds
// the nested shape the boundary expects.
package form

import (
	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/statute"
	"github.com/paydesk/taxdecl/internal/validate"
)

// FieldDef declares one editable field: its flat key, the nested sub-record
// and name it maps to, its validation type, the aggregate group it sums
// into (if any), and its default value. A FieldDef with an empty Name is
// computed: flattening derives it from the whole sub-record rather than a
// single nested value.
type FieldDef struct {
	Key     string
	Sub     string
	Name    string
	Label   string
	Type    validate.FieldType
	Group   statute.AggregateGroup
	Default any
}

// Computed reports whether the field is derived from its sub-record as a
// whole instead of a single nested value.
func (f FieldDef) Computed() bool { return f.Name == "" }

// Schema returns the field definitions for a component kind, in display
// order. Unknown kinds return nil.
func Schema(kind domain.ComponentKind) []FieldDef {
	switch kind {
	case domain.KindSalary:
		return salarySchema
	case domain.KindPerquisites:
		return perquisitesSchema
	case domain.KindDeductions:
		return deductionsSchema
	case domain.KindOtherIncome:
		return otherIncomeSchema
	case domain.KindCapitalGains:
		return capitalGainsSchema
	case domain.KindRetirementBenefits:
		return retirementSchema
	case domain.KindHouseProperty:
		return housePropertySchema
	}
	return nil
}

// FieldByKey looks up a field definition in a kind's schema.
func FieldByKey(kind domain.ComponentKind, key string) (FieldDef, bool) {
	for _, f := range Schema(kind) {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDef{}, false
}

var salarySchema = []FieldDef{
	{Key: "basic_salary", Sub: "basic_pay", Name: "basic", Label: "Basic salary", Type: validate.Amount, Default: "0"},
	{Key: "dearness_allowance", Sub: "basic_pay", Name: "dearness_allowance", Label: "Dearness allowance", Type: validate.Amount, Default: "0"},
	{Key: "hra_received", Sub: "hra", Name: "received", Label: "HRA received", Type: validate.HRA, Default: "0"},
	{Key: "rent_paid", Sub: "hra", Name: "rent_paid", Label: "Annual rent paid", Type: validate.Amount, Default: "0"},
	{Key: "city", Sub: "hra", Name: "city", Label: "City of residence", Type: validate.Select, Default: "Other"},
	{Key: "lta_claimed", Sub: "lta", Name: "claimed", Label: "LTA claimed", Type: validate.Amount, Default: "0"},
	{Key: "lta_journeys", Sub: "lta", Name: "journeys", Label: "Journeys in block", Type: validate.LTAClaimedCount, Default: 0},
	{Key: "education_children", Sub: "children_allowance", Name: "education_children", Label: "Children (education allowance)", Type: validate.ChildrenCount, Default: 0},
	{Key: "hostel_children", Sub: "children_allowance", Name: "hostel_children", Label: "Children (hostel allowance)", Type: validate.ChildrenCount, Default: 0},
	{Key: "allowance_months", Sub: "children_allowance", Name: "months", Label: "Months claimed", Type: validate.Months, Default: 12},
	{Key: "special_allowance", Sub: "allowances", Name: "special", Label: "Special allowance", Type: validate.Amount, Default: "0"},
}

var perquisitesSchema = []FieldDef{
	{Key: "company_car_value", Sub: "company_car", Name: "perquisite_value", Label: "Company car", Type: validate.Amount, Default: "0"},
	{Key: "accommodation_value", Sub: "accommodation", Name: "perquisite_value", Label: "Rent-free accommodation", Type: validate.Amount, Default: "0"},
	// Derived: the per-child education entries collapse to one annual sum.
	{Key: "free_education_amount", Sub: "free_education", Label: "Free education", Type: validate.Amount, Default: "0"},
	{Key: "esop_value", Sub: "esop", Name: "perquisite_value", Label: "ESOP perquisite", Type: validate.Amount, Default: "0"},
	{Key: "interest_free_loan", Sub: "loans", Name: "benefit_value", Label: "Interest-free loan benefit", Type: validate.Amount, Default: "0"},
}

var deductionsSchema = []FieldDef{
	// Section 80C investments. All eleven sum into one 1,50,000 ceiling.
	{Key: "life_insurance_premium", Sub: "section_80c", Name: "life_insurance_premium", Label: "Life insurance premium", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "public_provident_fund", Sub: "section_80c", Name: "public_provident_fund", Label: "PPF", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "employee_provident_fund", Sub: "section_80c", Name: "employee_provident_fund", Label: "EPF", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "elss_investment", Sub: "section_80c", Name: "elss_investment", Label: "ELSS mutual funds", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "nsc_investment", Sub: "section_80c", Name: "nsc_investment", Label: "NSC", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "tuition_fees", Sub: "section_80c", Name: "tuition_fees", Label: "Tuition fees", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "home_loan_principal", Sub: "section_80c", Name: "home_loan_principal", Label: "Home loan principal", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "sukanya_samriddhi", Sub: "section_80c", Name: "sukanya_samriddhi", Label: "Sukanya Samriddhi", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "tax_saver_fd", Sub: "section_80c", Name: "tax_saver_fd", Label: "Tax-saver fixed deposit", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "ulip_premium", Sub: "section_80c", Name: "ulip_premium", Label: "ULIP premium", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},
	{Key: "pension_fund_80ccc", Sub: "section_80c", Name: "pension_fund", Label: "Pension fund (80CCC)", Type: validate.Section80CField, Group: statute.Group80C, Default: "0"},

	{Key: "nps_additional", Sub: "section_80ccd_1b", Name: "nps_contribution", Label: "NPS (80CCD 1B)", Type: validate.Amount, Group: statute.Group80CCD1B, Default: "0"},

	{Key: "health_premium_self", Sub: "section_80d", Name: "self_premium", Label: "Health insurance, self and family", Type: validate.Amount, Group: statute.Group80DSelf, Default: "0"},
	{Key: "health_premium_parents", Sub: "section_80d", Name: "parents_premium", Label: "Health insurance, parents", Type: validate.Amount, Group: statute.Group80DParents, Default: "0"},
	{Key: "preventive_checkup", Sub: "section_80d", Name: "preventive_checkup", Label: "Preventive health checkup", Type: validate.Amount, Group: statute.Group80DSelf, Default: "0"},
	{Key: "parents_senior", Sub: "section_80d", Name: "parents_senior", Label: "Parents are senior citizens", Type: validate.Select, Default: false},

	{Key: "disabled_dependent_relation", Sub: "section_80dd", Name: "relation", Label: "Dependent relation", Type: validate.Select, Default: "Parents"},
	{Key: "disability_band", Sub: "section_80dd", Name: "disability_band", Label: "Disability band", Type: validate.Select, Default: "40-79%"},
	{Key: "disabled_dependent_amount", Sub: "section_80dd", Name: "amount", Label: "Expenditure on dependent (80DD)", Type: validate.Amount, Default: "0"},

	{Key: "medical_treatment_amount", Sub: "section_80ddb", Name: "amount", Label: "Specified disease treatment (80DDB)", Type: validate.Amount, Default: "0"},
	{Key: "patient_age", Sub: "section_80ddb", Name: "patient_age", Label: "Patient age", Type: validate.Age, Default: 0},

	{Key: "education_loan_interest", Sub: "section_80e", Name: "interest_paid", Label: "Education loan interest (80E)", Type: validate.Amount, Default: "0"},
	{Key: "ev_loan_interest", Sub: "section_80eeb", Name: "interest_paid", Label: "Electric vehicle loan interest (80EEB)", Type: validate.Amount, Group: statute.Group80EEB, Default: "0"},

	// Derived: named funds collapse into the four 80G rate buckets.
	{Key: "donation_100pct", Sub: "section_80g", Label: "Donations, 100% deductible", Type: validate.Amount, Default: "0"},
	{Key: "donation_50pct", Sub: "section_80g", Label: "Donations, 50% deductible", Type: validate.Amount, Default: "0"},
	{Key: "donation_100pct_limited", Sub: "section_80g", Label: "Donations, 100% with qualifying limit", Type: validate.Amount, Group: statute.Group80G100Limited, Default: "0"},
	{Key: "donation_50pct_limited", Sub: "section_80g", Label: "Donations, 50% with qualifying limit", Type: validate.Amount, Group: statute.Group80G50Limited, Default: "0"},

	{Key: "political_donation", Sub: "section_80ggc", Name: "amount", Label: "Political party donation (80GGC)", Type: validate.Amount, Default: "0"},
	{Key: "savings_interest_deduction", Sub: "section_80tta_ttb", Name: "interest", Label: "Savings/deposit interest (80TTA/TTB)", Type: validate.Amount, Group: statute.Group80TTA, Default: "0"},

	{Key: "self_disability_band", Sub: "section_80u", Name: "disability_band", Label: "Own disability band", Type: validate.Select, Default: "40-79%"},
	{Key: "self_disability_amount", Sub: "section_80u", Name: "amount", Label: "Own disability deduction (80U)", Type: validate.Amount, Default: "0"},
}

var otherIncomeSchema = []FieldDef{
	{Key: "savings_interest", Sub: "interest", Name: "savings_account", Label: "Savings account interest", Type: validate.Amount, Default: "0"},
	{Key: "fd_interest", Sub: "interest", Name: "fixed_deposit", Label: "Fixed deposit interest", Type: validate.Amount, Default: "0"},
	{Key: "dividend_income", Sub: "dividends", Name: "amount", Label: "Dividend income", Type: validate.Amount, Default: "0"},
	{Key: "family_pension", Sub: "pension", Name: "family_pension", Label: "Family pension", Type: validate.Amount, Default: "0"},
}

var capitalGainsSchema = []FieldDef{
	{Key: "stcg_111a", Sub: "short_term", Name: "equity_111a", Label: "STCG on listed equity (111A)", Type: validate.Amount, Default: "0"},
	{Key: "stcg_other", Sub: "short_term", Name: "other", Label: "Other short-term gains", Type: validate.Amount, Default: "0"},
	{Key: "ltcg_112a", Sub: "long_term", Name: "equity_112a", Label: "LTCG on listed equity (112A)", Type: validate.Amount, Default: "0"},
	{Key: "ltcg_other", Sub: "long_term", Name: "other", Label: "Other long-term gains", Type: validate.Amount, Default: "0"},
}

var retirementSchema = []FieldDef{
	{Key: "gratuity_received", Sub: "gratuity", Name: "received", Label: "Gratuity received", Type: validate.Amount, Group: statute.GroupGratuity, Default: "0"},
	{Key: "leave_encashment_received", Sub: "leave_encashment", Name: "received", Label: "Leave encashment", Type: validate.Amount, Group: statute.GroupLeaveEncash, Default: "0"},
	{Key: "retrenchment_compensation", Sub: "retrenchment", Name: "received", Label: "Retrenchment compensation", Type: validate.Amount, Group: statute.GroupRetrenchment, Default: "0"},
	// Commuted pension and VRS carry no group: the Sec 10(10A) exemption
	// is a fraction of the full pension value, not a flat rupee cap, and
	// the form never sees the full pension figure.
	{Key: "commuted_pension_received", Sub: "pension", Name: "commuted", Label: "Commuted pension", Type: validate.Amount, Default: "0"},
	{Key: "vrs_compensation", Sub: "vrs", Name: "received", Label: "VRS compensation", Type: validate.Amount, Default: "0"},
}

var housePropertySchema = []FieldDef{
	{Key: "occupancy", Sub: "property", Name: "occupancy", Label: "Occupancy", Type: validate.Select, Default: "self_occupied"},
	{Key: "annual_rent_received", Sub: "property", Name: "annual_rent", Label: "Annual rent received", Type: validate.Amount, Default: "0"},
	{Key: "municipal_taxes_paid", Sub: "property", Name: "municipal_taxes", Label: "Municipal taxes paid", Type: validate.Amount, Default: "0"},
	{Key: "home_loan_interest", Sub: "home_loan", Name: "interest_paid", Label: "Home loan interest (24b)", Type: validate.Amount, Group: statute.GroupSection24B, Default: "0"},
	{Key: "preconstruction_interest", Sub: "home_loan", Name: "preconstruction_interest", Label: "Pre-construction interest", Type: validate.Amount, Default: "0"},
}
