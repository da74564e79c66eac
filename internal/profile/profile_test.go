package profile

import (
	"errors"
	"testing"

	"visaverse-copilot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, f *Form) {
	t.Helper()
	require.NoError(t, f.Set(models.FieldCurrentCountry, "india"))
	require.NoError(t, f.Set(models.FieldDestinationCountry, "germany"))
	require.NoError(t, f.Set(models.FieldEducationLevel, "postgraduate"))
	require.NoError(t, f.Set(models.FieldFieldOfStudy, "engineering"))
	require.NoError(t, f.Set(models.FieldBudgetRange, "moderate"))
}

func TestForm_SubmitRequiresEveryField(t *testing.T) {
	for _, missing := range models.ProfileFields {
		t.Run(missing, func(t *testing.T) {
			f := NewForm()
			fill(t, f)
			require.NoError(t, f.Set(missing, ""))

			assert.False(t, f.CanSubmit())
			p, ok := f.Submit()
			assert.False(t, ok)
			assert.Equal(t, models.Profile{}, p)
		})
	}
}

func TestForm_Submit(t *testing.T) {
	f := NewForm()
	fill(t, f)

	require.True(t, f.CanSubmit())
	p, ok := f.Submit()
	require.True(t, ok)
	assert.Equal(t, models.Profile{
		CurrentCountry:     "india",
		DestinationCountry: "germany",
		EducationLevel:     "postgraduate",
		FieldOfStudy:       "engineering",
		BudgetRange:        "moderate",
	}, p)
}

func TestForm_SetRejectsOutOfSetValues(t *testing.T) {
	f := NewForm()

	err := f.Set(models.FieldDestinationCountry, "atlantis")
	assert.True(t, errors.Is(err, ErrValueNotAllowed))

	err = f.Set("favouriteColour", "blue")
	assert.True(t, errors.Is(err, ErrUnknownField))

	// a destination code is not an origin code
	err = f.Set(models.FieldCurrentCountry, "canada")
	assert.True(t, errors.Is(err, ErrValueNotAllowed))

	assert.Equal(t, models.Profile{}, f.Profile())
}

func TestForm_Reset(t *testing.T) {
	f := NewForm()
	fill(t, f)
	f.Reset()

	assert.Equal(t, models.Profile{}, f.Profile())
	assert.False(t, f.CanSubmit())
}

func TestValidate(t *testing.T) {
	valid := models.Profile{
		CurrentCountry:     "other",
		DestinationCountry: "japan",
		EducationLevel:     "language",
		FieldOfStudy:       "other",
		BudgetRange:        "limited",
	}
	require.NoError(t, Validate(valid))

	invalid := valid
	invalid.DestinationCountry = "atlantis"
	invalid.BudgetRange = ""

	err := Validate(invalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))

	var ie *InvalidError
	require.True(t, errors.As(err, &ie))
	fields := make([]string, 0, len(ie.Errors))
	for _, fe := range ie.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "destinationCountry")
	assert.Contains(t, fields, "budgetRange")
}

func TestCheck_RawDocument(t *testing.T) {
	result, err := Check(map[string]interface{}{
		"currentCountry":     "india",
		"destinationCountry": "canada",
		"educationLevel":     "doctoral",
		"fieldOfStudy":       "law",
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.True(t, result.HasErrors("budgetRange"))
	assert.Equal(t, "REQUIRED_FIELD_MISSING", result.GetErrorsForField("budgetRange")[0].Code)
}
