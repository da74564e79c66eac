// internal/models/profile.go
package models

// Profile is the student's five-field selection. Every field holds a code
// from its closed option set.
type Profile struct {
	CurrentCountry     string `json:"currentCountry"`
	DestinationCountry string `json:"destinationCountry"`
	EducationLevel     string `json:"educationLevel"`
	FieldOfStudy       string `json:"fieldOfStudy"`
	BudgetRange        string `json:"budgetRange"`
}

// Complete reports whether every field is non-empty.
func (p Profile) Complete() bool {
	return p.CurrentCountry != "" &&
		p.DestinationCountry != "" &&
		p.EducationLevel != "" &&
		p.FieldOfStudy != "" &&
		p.BudgetRange != ""
}

// Profile field names, as they appear on the wire.
const (
	FieldCurrentCountry     = "currentCountry"
	FieldDestinationCountry = "destinationCountry"
	FieldEducationLevel     = "educationLevel"
	FieldFieldOfStudy       = "fieldOfStudy"
	FieldBudgetRange        = "budgetRange"
)

// ProfileFields lists the field names in form order.
var ProfileFields = []string{
	FieldCurrentCountry,
	FieldDestinationCountry,
	FieldEducationLevel,
	FieldFieldOfStudy,
	FieldBudgetRange,
}
