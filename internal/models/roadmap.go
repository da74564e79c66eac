// internal/models/roadmap.go
package models

import "time"

// GenerationRequest is the body posted to the generation endpoint.
// DestinationCountry stays a raw code so the server can look up its
// knowledge snippet; the other coded fields carry display labels.
type GenerationRequest struct {
	CurrentCountry     string `json:"currentCountry"`
	DestinationCountry string `json:"destinationCountry"`
	EducationLevel     string `json:"educationLevel"`
	FieldOfStudy       string `json:"fieldOfStudy"`
	BudgetRange        string `json:"budgetRange"`
}

// GenerationResponse is returned on success.
type GenerationResponse struct {
	Roadmap     string    `json:"roadmap"`
	Destination string    `json:"destination"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
