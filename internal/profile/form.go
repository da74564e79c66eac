package profile

import (
	"fmt"

	"visaverse-copilot/internal/models"
)

// Form holds a partially filled profile. Submit is a no-op until every field
// is set.
type Form struct {
	current models.Profile
}

func NewForm() *Form {
	return &Form{}
}

// Set assigns value to field. An empty value clears the field; any other value
// must belong to the field's option set.
func (f *Form) Set(field, value string) error {
	opts, ok := Options(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if value != "" && !contains(opts, value) {
		return fmt.Errorf("%w: %s=%q", ErrValueNotAllowed, field, value)
	}

	switch field {
	case models.FieldCurrentCountry:
		f.current.CurrentCountry = value
	case models.FieldDestinationCountry:
		f.current.DestinationCountry = value
	case models.FieldEducationLevel:
		f.current.EducationLevel = value
	case models.FieldFieldOfStudy:
		f.current.FieldOfStudy = value
	case models.FieldBudgetRange:
		f.current.BudgetRange = value
	}
	return nil
}

// Profile returns the current, possibly partial, selection.
func (f *Form) Profile() models.Profile {
	return f.current
}

func (f *Form) CanSubmit() bool {
	return f.current.Complete() && Validate(f.current) == nil
}

// Submit returns the completed profile, or false when the form is not ready.
func (f *Form) Submit() (models.Profile, bool) {
	if !f.CanSubmit() {
		return models.Profile{}, false
	}
	return f.current, true
}

func (f *Form) Reset() {
	f.current = models.Profile{}
}
