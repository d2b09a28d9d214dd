package rules

import "regexp"

// Pattern fragments shared by the built-in rules. Context prefixes are always
// non-capturing so each candidate exposes only its value groups to a Converter.
const (
	patCurrency      = `\$?\s*([\d,]+\.?\d*)`
	patSquareFootage = `([\d,]+)\s*(?:SF|sq\.?\s*ft\.?|square\s*feet)`
	patRValue        = `R-?\s*(\d+)`
	patDateMDY       = `(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`
	patDateWritten   = `(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`
	patDateISO       = `(\d{4})-(\d{2})-(\d{2})`
	patCONumber      = `(?:CO|Change\s*Order)\s*#?\s*-?\s*(\d+)`
	patPayAppNumber  = `(?:Pay\s*App(?:lication)?|Application)\s*(?:#|No\.?)\s*(\d+)`
	patWarrantyYears = `(\d+)\s*-?\s*(?:year|yr)s?`
	patWarrantyType  = `(NDL|No\s*Dollar\s*Limit|Material\s*Only|Labor\s*(?:and|&)\s*Material)`
	patRoofType      = `(TPO|EPDM|PVC|BUR|Modified\s*Bit(?:umen)?|Metal|Standing\s*Seam)`
	patRetainage     = `(\d+\.?\d*)\s*%\s*(?:retainage|retention)`
	patSpecSection   = `Section\s*(\d{2})\s*(\d{2})\s*(\d{2})`
	patMilThickness  = `(\d+)\s*mil\b`
	patPSF           = `(\d+)\s*(?:psf|pounds?\s*per\s*square\s*foot)`
	patSlope         = `(\d+/\d+)["\s]*(?:per\s*(?:foot|ft)|:\s*12)`
	patPenetrations  = `(\d+)\s*(?:penetration|curb|RTU|HVAC\s*unit)s?`
	patDrains        = `(\d+)\s*(?:drain|scupper|overflow)s?`
	patSubmittal     = `(Approved\s*as\s*Noted|Approved|Revise\s*(?:and|&)\s*Resubmit|Rejected|Pending)`
	patDrawingNumber = `(?:drawing|sheet)\s*(?:#|no\.?|number)?[:\s]*([A-Z]-?\d+(?:\.\d+)?)`
)

// Context prefixes for universal rules.
const (
	ctxContractSum    = `(?:contract\s*(?:sum|amount|price))[:\s]*`
	ctxTotal          = `(?:total|amount)[:\s]*`
	ctxContractDate   = `(?:contract\s*date|dated)[:\s]*`
	ctxSubstantial    = `(?:substantial\s*completion)[:\s]*`
	ctxFinal          = `(?:final\s*completion)[:\s]*`
	ctxStartDate      = `(?:start\s*date|commence)[:\s]*`
	currencyThreshold = 1000
)

// compile builds a case-insensitive pattern. All rule matching is case-insensitive.
func compile(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
