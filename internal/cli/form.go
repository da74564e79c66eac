package cli

import (
	"errors"
	"fmt"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/profile"

	"github.com/charmbracelet/huh"
)

// ErrIncompleteProfile is returned when the form finishes without every
// field set.
var ErrIncompleteProfile = errors.New("profile incomplete")

type formField struct {
	field       string
	title       string
	placeholder string
}

var formFields = []formField{
	{models.FieldCurrentCountry, "Where are you from?", "Select your country"},
	{models.FieldDestinationCountry, "Where do you want to study?", "Select destination"},
	{models.FieldEducationLevel, "Education Level", "Select education level"},
	{models.FieldFieldOfStudy, "Field of Study", "Select your field"},
	{models.FieldBudgetRange, "Annual Budget", "Select your budget range"},
}

// selectOptions turns a catalog option set into huh options. Destinations
// carry their flag in the label.
func selectOptions(opts []catalog.Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		label := o.Label
		if o.Flag != "" {
			label = o.Flag + " " + o.Label
		}
		out = append(out, huh.NewOption(label, o.Value))
	}
	return out
}

// profileForm builds one select per profile field. Every selection goes
// through pf.Set, so the huh form can only complete with an allowed value.
func profileForm(pf *profile.Form, values map[string]*string) *huh.Form {
	selects := make([]huh.Field, 0, len(formFields))
	for _, f := range formFields {
		opts, _ := profile.Options(f.field)
		field := f.field
		value := values[field]
		selects = append(selects, huh.NewSelect[string]().
			Title(f.title).
			Description(f.placeholder).
			Options(selectOptions(opts)...).
			Value(value).
			Validate(func(v string) error {
				if v == "" {
					return fmt.Errorf("%s is required", f.title)
				}
				return pf.Set(field, v)
			}))
	}

	return huh.NewForm(
		huh.NewGroup(selects...).Title("Generate My Visa Roadmap"),
	).WithTheme(visaverseHuhTheme()).WithShowHelp(false)
}

// collectProfile runs the interactive form and submits the result.
func collectProfile(pf *profile.Form) (models.Profile, error) {
	values := make(map[string]*string, len(formFields))
	current := pf.Profile()
	for _, f := range formFields {
		v := fieldValue(current, f.field)
		values[f.field] = &v
	}

	if err := profileForm(pf, values).Run(); err != nil {
		return models.Profile{}, err
	}
	for field, v := range values {
		if err := pf.Set(field, *v); err != nil {
			return models.Profile{}, err
		}
	}
	return submit(pf)
}

// profileFromFlags fills pf from command-line values. It reports false when
// any field is missing so the caller can fall back to the form.
func profileFromFlags(pf *profile.Form, flags map[string]string) (bool, error) {
	complete := true
	for _, f := range formFields {
		v := flags[f.field]
		if v == "" {
			complete = false
			continue
		}
		if err := pf.Set(f.field, v); err != nil {
			return false, err
		}
	}
	return complete, nil
}

func submit(pf *profile.Form) (models.Profile, error) {
	p, ok := pf.Submit()
	if !ok {
		return models.Profile{}, ErrIncompleteProfile
	}
	return p, nil
}

func fieldValue(p models.Profile, field string) string {
	switch field {
	case models.FieldCurrentCountry:
		return p.CurrentCountry
	case models.FieldDestinationCountry:
		return p.DestinationCountry
	case models.FieldEducationLevel:
		return p.EducationLevel
	case models.FieldFieldOfStudy:
		return p.FieldOfStudy
	case models.FieldBudgetRange:
		return p.BudgetRange
	}
	return ""
}
