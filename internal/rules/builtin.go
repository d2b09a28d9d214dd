package rules

import "roofio/internal/domain"

// Confidence constants express how far each rule's precision is trusted.
const (
	confHigh   = 0.95
	confMedium = 0.90
	confLow    = 0.85
)

var (
	scopeAndContract = []domain.DocumentType{domain.DocTypeScope, domain.DocTypeContract}
	scopeOnly        = []domain.DocumentType{domain.DocTypeScope}
)

func datedRule(key, context string) *Rule {
	return &Rule{
		Key: key,
		Candidates: []Candidate{
			{Field: key, Pattern: compile(context + patDateMDY), Convert: dateMDY},
			{Field: key, Pattern: compile(context + patDateWritten), Convert: dateWritten},
			{Field: key, Pattern: compile(context + patDateISO), Convert: dateISO},
		},
		Confidence: confLow,
	}
}

func single(key, field, pattern string, conv Converter, conf float64, applies []domain.DocumentType) *Rule {
	return &Rule{
		Key:        key,
		Candidates: []Candidate{{Field: field, Pattern: compile(pattern)}},
		Convert:    conv,
		Confidence: conf,
		AppliesTo:  applies,
	}
}

var builtinRules = []*Rule{
	// Universal.
	{
		Key: "currency",
		Candidates: []Candidate{
			{Field: "contract_sum", Pattern: compile(ctxContractSum + patCurrency)},
			{Field: "amount", Pattern: compile(ctxTotal + patCurrency)},
			{Field: "amount", Pattern: compile(patCurrency)},
		},
		Convert:    currencyAbove(currencyThreshold),
		Confidence: confLow,
	},
	datedRule("contract_date", ctxContractDate),
	datedRule("substantial_completion", ctxSubstantial),
	datedRule("final_completion", ctxFinal),
	datedRule("start_date", ctxStartDate),

	// Scope and contract.
	single("square_footage", "total_square_footage", patSquareFootage, toInt, confMedium, scopeAndContract),
	single("r_value", "insulation_r_value", patRValue, prefixed("R-"), confHigh, scopeAndContract),
	single("roof_type", "roof_type", patRoofType, canonical("roof_type"), confHigh, scopeAndContract),
	single("warranty_years", "warranty_years", patWarrantyYears, toInt, confMedium, scopeAndContract),
	single("warranty_type", "warranty_type", patWarrantyType, warrantyType, confLow, scopeAndContract),
	single("retainage", "retainage_percent", patRetainage, toFloat, confMedium, scopeAndContract),

	// Single-type numbering.
	single("co_number", "co_number", patCONumber, toInt, confHigh, []domain.DocumentType{domain.DocTypeChangeOrder}),
	single("pay_app_number", "application_number", patPayAppNumber, toInt, confHigh, []domain.DocumentType{domain.DocTypePayApplication}),

	// Roof system details.
	single("spec_section", "spec_section", patSpecSection, specSection, confMedium, scopeOnly),
	single("membrane_thickness", "membrane_thickness_mil", patMilThickness, toInt, confLow, scopeOnly),
	single("design_load", "design_load_psf", patPSF, toInt, confLow, scopeOnly),
	single("roof_slope", "roof_slope", patSlope, slope, confLow, scopeOnly),
	single("penetrations", "penetration_count", patPenetrations, toInt, confLow, scopeOnly),
	single("drains", "drain_count", patDrains, toInt, confLow, scopeOnly),

	single("submittal_status", "status", patSubmittal, submittalStatus, confMedium, []domain.DocumentType{domain.DocTypeSubmittal}),
	single("drawing_number", "drawing_number", patDrawingNumber, toUpper, confLow, []domain.DocumentType{domain.DocTypeDrawing}),
}
