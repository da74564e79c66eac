package catalog

// Option is one entry of a closed selector set.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Flag  string `json:"flag,omitempty"`
}

var destinations = []Option{
	{Value: "canada", Label: "Canada", Flag: "🇨🇦"},
	{Value: "australia", Label: "Australia", Flag: "🇦🇺"},
	{Value: "germany", Label: "Germany", Flag: "🇩🇪"},
	{Value: "united-kingdom", Label: "United Kingdom", Flag: "🇬🇧"},
	{Value: "japan", Label: "Japan", Flag: "🇯🇵"},
}

var origins = []Option{
	{Value: "india", Label: "India"},
	{Value: "china", Label: "China"},
	{Value: "nigeria", Label: "Nigeria"},
	{Value: "pakistan", Label: "Pakistan"},
	{Value: "brazil", Label: "Brazil"},
	{Value: "vietnam", Label: "Vietnam"},
	{Value: "philippines", Label: "Philippines"},
	{Value: "bangladesh", Label: "Bangladesh"},
	{Value: "indonesia", Label: "Indonesia"},
	{Value: "turkey", Label: "Turkey"},
	{Value: "mexico", Label: "Mexico"},
	{Value: "south-korea", Label: "South Korea"},
	{Value: "other", Label: "Other"},
}

var educationLevels = []Option{
	{Value: "language", Label: "Language Program"},
	{Value: "undergraduate", Label: "Undergraduate (Bachelor's)"},
	{Value: "postgraduate", Label: "Postgraduate (Master's)"},
	{Value: "doctoral", Label: "Doctoral (PhD)"},
	{Value: "vocational", Label: "Vocational/Technical"},
}

var budgetRanges = []Option{
	{Value: "limited", Label: "Limited (< $15,000/year)"},
	{Value: "moderate", Label: "Moderate ($15,000 - $30,000/year)"},
	{Value: "comfortable", Label: "Comfortable ($30,000 - $50,000/year)"},
	{Value: "flexible", Label: "Flexible (> $50,000/year)"},
}

var studyFields = []Option{
	{Value: "engineering", Label: "Engineering & Technology"},
	{Value: "business", Label: "Business & Management"},
	{Value: "sciences", Label: "Natural Sciences"},
	{Value: "medicine", Label: "Medicine & Health Sciences"},
	{Value: "arts", Label: "Arts & Humanities"},
	{Value: "law", Label: "Law & Legal Studies"},
	{Value: "computer-science", Label: "Computer Science & IT"},
	{Value: "social-sciences", Label: "Social Sciences"},
	{Value: "education", Label: "Education"},
	{Value: "other", Label: "Other"},
}

func Destinations() []Option    { return clone(destinations) }
func Origins() []Option         { return clone(origins) }
func EducationLevels() []Option { return clone(educationLevels) }
func BudgetRanges() []Option    { return clone(budgetRanges) }
func StudyFields() []Option     { return clone(studyFields) }

// Label resolves code to its display label, falling back to the raw code.
func Label(options []Option, code string) string {
	for _, o := range options {
		if o.Value == code {
			return o.Label
		}
	}
	return code
}

// Values lists the allowed codes of an option set in display order.
func Values(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}

func clone(in []Option) []Option {
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
