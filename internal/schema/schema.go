// Package schema declares which fields each document type must yield and the
// value kind of every known field.
package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"roofio/internal/domain"
)

// Kind is the value type a field is normalized to.
type Kind string

const (
	KindText       Kind = "text"
	KindInteger    Kind = "integer"
	KindCurrency   Kind = "currency"
	KindPercentage Kind = "percentage"
	KindDate       Kind = "date"
	KindEnum       Kind = "enum"
)

// FieldSpec describes one field.
type FieldSpec struct {
	Name   string
	Kind   Kind
	Values []string // allowed values for KindEnum
	// Aliases maps upper-cased spellings to one of Values.
	Aliases map[string]string
}

// Canonical maps raw to the field's canonical enum value. Case and inner
// whitespace are ignored. It reports false when raw names no known value.
func (s FieldSpec) Canonical(raw string) (string, bool) {
	key := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if key == "" {
		return "", false
	}
	for _, v := range s.Values {
		if strings.EqualFold(v, key) {
			return v, true
		}
	}
	if v, ok := s.Aliases[key]; ok {
		return v, true
	}
	if v, ok := s.Aliases[strings.ReplaceAll(key, " ", "")]; ok {
		return v, true
	}
	return "", false
}

var fieldSpecs = map[string]FieldSpec{
	"contract_sum":           {Name: "contract_sum", Kind: KindCurrency},
	"contract_date":          {Name: "contract_date", Kind: KindDate},
	"substantial_completion": {Name: "substantial_completion", Kind: KindDate},
	"final_completion":       {Name: "final_completion", Kind: KindDate},
	"start_date":             {Name: "start_date", Kind: KindDate},
	"retainage_percent":      {Name: "retainage_percent", Kind: KindPercentage},
	"total_square_footage":   {Name: "total_square_footage", Kind: KindInteger},
	"roof_type": {Name: "roof_type", Kind: KindEnum, Values: []string{
		"TPO", "EPDM", "PVC", "BUR", "MODIFIED BITUMEN", "METAL", "STANDING SEAM",
	}, Aliases: map[string]string{
		"MODIFIED BIT":    "MODIFIED BITUMEN",
		"MODIFIEDBIT":     "MODIFIED BITUMEN",
		"MODIFIEDBITUMEN": "MODIFIED BITUMEN",
		"MOD BIT":         "MODIFIED BITUMEN",
		"STANDINGSEAM":    "STANDING SEAM",
	}},
	"insulation_r_value": {Name: "insulation_r_value", Kind: KindText},
	"warranty_years":     {Name: "warranty_years", Kind: KindInteger},
	"warranty_type": {Name: "warranty_type", Kind: KindEnum, Values: []string{
		"NDL", "Material Only", "Labor & Material",
	}},
	"co_number":              {Name: "co_number", Kind: KindInteger},
	"amount":                 {Name: "amount", Kind: KindCurrency},
	"description":            {Name: "description", Kind: KindText},
	"application_number":     {Name: "application_number", Kind: KindInteger},
	"total_completed_stored": {Name: "total_completed_stored", Kind: KindCurrency},
	"current_payment_due":    {Name: "current_payment_due", Kind: KindCurrency},
	"drawing_number":         {Name: "drawing_number", Kind: KindText},
	"revision":               {Name: "revision", Kind: KindText},
	"scale":                  {Name: "scale", Kind: KindText},
	"submittal_number":       {Name: "submittal_number", Kind: KindText},
	"status": {Name: "status", Kind: KindEnum, Values: []string{
		"Pending", "Approved", "Approved as Noted", "Revise & Resubmit", "Rejected",
	}},
	"manufacturer": {Name: "manufacturer", Kind: KindText},
}

// Spec returns the spec for a field name. Unknown names are plain text.
func Spec(name string) FieldSpec {
	if s, ok := fieldSpecs[name]; ok {
		return s
	}
	return FieldSpec{Name: name, Kind: KindText}
}

// RequiredFields maps document types to the fields the paid tier may be asked for.
type RequiredFields struct {
	byType map[domain.DocumentType][]string
}

var builtinRequired = map[domain.DocumentType][]string{
	domain.DocTypeContract:       {"contract_sum", "contract_date", "retainage_percent"},
	domain.DocTypeScope:          {"total_square_footage", "roof_type", "insulation_r_value", "warranty_years"},
	domain.DocTypeChangeOrder:    {"co_number", "amount", "description"},
	domain.DocTypePayApplication: {"application_number", "total_completed_stored", "current_payment_due"},
	domain.DocTypeDrawing:        {"drawing_number", "revision", "scale"},
	domain.DocTypeSubmittal:      {"submittal_number", "status", "manufacturer"},
}

// Default returns the built-in required-field table.
func Default() *RequiredFields {
	byType := make(map[domain.DocumentType][]string, len(builtinRequired))
	for t, fields := range builtinRequired {
		byType[t] = append([]string(nil), fields...)
	}
	return &RequiredFields{byType: byType}
}

// For returns a copy of the required fields for docType. Unknown types yield an empty list.
func (r *RequiredFields) For(docType domain.DocumentType) []string {
	fields := r.byType[docType]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Types lists the document types with a required-field entry: known types first in
// display order, then override-only types.
func (r *RequiredFields) Types() []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(r.byType))
	seen := make(map[domain.DocumentType]bool)
	for _, t := range domain.KnownDocumentTypes {
		if _, ok := r.byType[t]; ok {
			out = append(out, t)
			seen[t] = true
		}
	}
	for t := range r.byType {
		if !seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// override is one [section] of the TOML override file.
type override struct {
	Required []string `toml:"required"`
	Add      []string `toml:"add"`
}

// LoadFile reads a TOML override file on top of the built-in table:
//
//	[scope]
//	required = ["roof_type", "total_square_footage"]
//
//	[submittal]
//	add = ["spec_section"]
//
// "required" replaces a type's list, "add" appends fields not yet present.
// An empty path returns the built-in table.
func LoadFile(path string) (*RequiredFields, error) {
	r := Default()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading required fields file: %w", err)
	}
	if err := r.apply(string(data)); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RequiredFields) apply(doc string) error {
	var overrides map[string]override
	if _, err := toml.Decode(doc, &overrides); err != nil {
		return fmt.Errorf("decoding required fields: %w", err)
	}
	for raw, o := range overrides {
		t := domain.ParseDocumentType(raw)
		if o.Required != nil {
			r.byType[t] = dedupe(o.Required)
		}
		for _, f := range o.Add {
			if !contains(r.byType[t], f) {
				r.byType[t] = append(r.byType[t], f)
			}
		}
	}
	return nil
}

func dedupe(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" && !contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
