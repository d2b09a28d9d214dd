package domain

import "strings"

// DocumentType tags a construction document. It selects which cheap-tier rules run
// and which fields are required.
type DocumentType string

const (
	DocTypeContract       DocumentType = "contract"
	DocTypeScope          DocumentType = "scope"
	DocTypeChangeOrder    DocumentType = "change_order"
	DocTypePayApplication DocumentType = "pay_application"
	DocTypeDrawing        DocumentType = "drawing"
	DocTypeSubmittal      DocumentType = "submittal"
)

// KnownDocumentTypes lists the supported document types in display order.
var KnownDocumentTypes = []DocumentType{
	DocTypeContract,
	DocTypeScope,
	DocTypeChangeOrder,
	DocTypePayApplication,
	DocTypeDrawing,
	DocTypeSubmittal,
}

var knownDocumentTypes = map[DocumentType]bool{
	DocTypeContract:       true,
	DocTypeScope:          true,
	DocTypeChangeOrder:    true,
	DocTypePayApplication: true,
	DocTypeDrawing:        true,
	DocTypeSubmittal:      true,
}

// ParseDocumentType normalizes a raw tag ("Change Order", " SCOPE ") into a DocumentType.
// Unknown tags are returned as-is so callers can still parse them; IsKnown reports support.
func ParseDocumentType(raw string) DocumentType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return DocumentType(s)
}

// IsKnown reports whether t is one of the supported document types.
func (t DocumentType) IsKnown() bool {
	return knownDocumentTypes[t]
}

// ParseTier records which extraction tier produced a field.
type ParseTier string

const (
	// TierCheapRule is deterministic pattern extraction with no external cost.
	TierCheapRule ParseTier = "cheap_rule"
	// TierPaidModel is extraction by a generative backend, billed per token.
	TierPaidModel ParseTier = "paid_model"
)
