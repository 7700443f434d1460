package handlers

// GenerateReportRequest is the POST /api/reports/generate payload.
type GenerateReportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// GenerateReportResponse acknowledges an accepted generation request.
type GenerateReportResponse struct {
	Message string `json:"message"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
}

// ValidationErrorResponse carries structured detail for a 400.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// ErrorResponse is the generic error body. 5xx responses carry no
// internal detail.
type ErrorResponse struct {
	Error string `json:"error"`
}
