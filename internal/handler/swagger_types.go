package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ParseTextRequest represents the raw-text parse request body.
type ParseTextRequest struct {
	Text         string `json:"text" example:"Change Order #7 for added crickets. Amount: $4,250.00"`
	DocumentType string `json:"document_type" binding:"required" example:"change_order"`
	DocumentID   string `json:"document_id" example:"co-7"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// DocumentTypeInfo lists the required fields for one document type and the
// fields the pattern tier can fill without a paid call.
type DocumentTypeInfo struct {
	Type           string   `json:"type" example:"scope"`
	RequiredFields []string `json:"required_fields" example:"total_square_footage,roof_type"`
	CheapFields    []string `json:"cheap_fields" example:"contract_sum,roof_type,insulation_r_value"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
