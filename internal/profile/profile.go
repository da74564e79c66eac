// Package profile implements the form collector: it accumulates the five
// closed-set selections and only hands out a Profile once all of them hold an
// allowed value.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/common/validation"
	"visaverse-copilot/internal/models"
)

var (
	ErrUnknownField    = errors.New("unknown profile field")
	ErrValueNotAllowed = errors.New("value not allowed")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// InvalidError carries the per-field failures behind ErrInvalidProfile.
type InvalidError struct {
	Errors []validation.ValidationError
}

func (e *InvalidError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidProfile, strings.Join(parts, "; "))
}

func (e *InvalidError) Unwrap() error { return ErrInvalidProfile }

// Options returns the allowed option set for a profile field.
func Options(field string) ([]catalog.Option, bool) {
	switch field {
	case models.FieldCurrentCountry:
		return catalog.Origins(), true
	case models.FieldDestinationCountry:
		return catalog.Destinations(), true
	case models.FieldEducationLevel:
		return catalog.EducationLevels(), true
	case models.FieldFieldOfStudy:
		return catalog.StudyFields(), true
	case models.FieldBudgetRange:
		return catalog.BudgetRanges(), true
	}
	return nil, false
}

// Schema describes a complete profile as a JSON schema with one enum per
// field.
func Schema() validation.JSONSchema {
	props := make(map[string]validation.Property, len(models.ProfileFields))
	for _, f := range models.ProfileFields {
		opts, _ := Options(f)
		props[f] = validation.Property{
			Type:      "string",
			Enum:      catalog.Values(opts),
			MinLength: validation.Int(1),
		}
	}
	return validation.JSONSchema{
		Schema:               "http://json-schema.org/draft-07/schema#",
		Type:                 "object",
		Properties:           props,
		Required:             models.ProfileFields,
		AdditionalProperties: validation.Bool(false),
	}
}

// Check validates an arbitrary document (typically decoded job variables)
// against Schema.
func Check(document interface{}) (*validation.ValidationResult, error) {
	return validation.Validate(Schema(), document)
}

// Validate returns nil when every field of p is drawn from its option set,
// otherwise an *InvalidError.
func Validate(p models.Profile) error {
	result, err := Check(p)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &InvalidError{Errors: result.Errors}
	}
	return nil
}

func contains(opts []catalog.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
