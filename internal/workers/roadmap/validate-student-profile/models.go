// internal/workers/roadmap/validate-student-profile/models.go
package validatestudentprofile

import (
	"visaverse-copilot/internal/common/validation"
	"visaverse-copilot/internal/models"
)

type Input struct {
	Profile map[string]interface{} `json:"profile"`
}

// Output is always produced for a parseable job; the process routes on
// IsValid. Profile is only set when the input passed validation.
type Output struct {
	IsValid          bool                         `json:"isValid"`
	Profile          *models.Profile              `json:"profile,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
