package render

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	headingRe = regexp.MustCompile(`(?m)^#{2,} (.*)$`)
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	bulletRe  = regexp.MustCompile(`(?m)^[ \t]*[-*] (.*)$`)
	paraRe    = regexp.MustCompile(`\n\s*\n`)
)

var (
	roadmapPolicyOnce sync.Once
	roadmapPolicy     *bluemonday.Policy
)

func roadmapSanitizer() *bluemonday.Policy {
	roadmapPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "h2", "strong", "li")
		roadmapPolicy = policy
	})
	return roadmapPolicy
}

// FormatRoadmap applies the light markdown pass used for display: headings,
// bold, bullets and paragraph breaks. Model output is untrusted, so the
// result is sanitized down to those four tags.
func FormatRoadmap(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	out := headingRe.ReplaceAllString(text, "<h2>$1</h2>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = bulletRe.ReplaceAllString(out, "<li>• $1</li>")
	out = paraRe.ReplaceAllString(out, "</p><p>")
	out = "<p>" + out + "</p>"

	return roadmapSanitizer().Sanitize(out)
}
