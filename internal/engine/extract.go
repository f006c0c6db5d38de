package engine

import (
	"regexp"
	"strings"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`my name is ([a-z]+)`),
		regexp.MustCompile(`i am ([a-z]+)`),
		regexp.MustCompile(`call me ([a-z]+)`),
	}

	// Matched against the raw message so mixed-case addresses survive.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9._-]+`)

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`work (?:for|at) ([a-z0-9\s]+)`),
		regexp.MustCompile(`from ([a-z0-9\s]+) company`),
		regexp.MustCompile(`company (?:is|called) ([a-z0-9\s]+)`),
	}

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`from ([a-z\s,]+)`),
		regexp.MustCompile(`in ([a-z\s,]+)`),
		regexp.MustCompile(`live (?:in|at) ([a-z\s,]+)`),
	}

	// Captures from the location patterns that are prepositional noise
	// rather than places ("get in touch", "from the team").
	locationStopList = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "touch": {}, "contact": {},
	}
)

// interestBuckets maps keyword pairs to catalog service names. Checked
// in order with no early exit, so when a message mentions several
// topics the last bucket in this list wins.
var interestBuckets = []struct {
	keywords [2]string
	service  string
}{
	{[2]string{"workflow", "automation"}, "Workflow Automation"},
	{[2]string{"document", "processing"}, "Document Processing"},
	{[2]string{"agent", "assistant"}, "Custom AI Agents"},
	{[2]string{"analytics", "prediction"}, "Predictive Analytics"},
}

// Extractor pulls profile fields out of free text. Fields are only ever
// overwritten on a fresh match, never cleared, so the profile
// accumulates across a session. Stateless and safe for concurrent use.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract updates the profile in place with whatever the message
// reveals. A message with no recognizable facts leaves the profile
// untouched; that is the normal case, not an error.
func (e *Extractor) Extract(message string, profile *domain.UserProfile) {
	lower := strings.ToLower(message)

	if name := firstCapture(namePatterns, lower); name != "" {
		profile.Name = strings.ToUpper(name[:1]) + name[1:]
	}

	if email := emailPattern.FindString(message); email != "" {
		profile.Email = email
	}

	if company := firstCapture(companyPatterns, lower); company != "" {
		profile.Company = strings.TrimSpace(company)
	}

	if location := strings.TrimSpace(firstCapture(locationPatterns, lower)); location != "" {
		if _, stop := locationStopList[location]; !stop {
			profile.Location = location
		}
	}

	for _, bucket := range interestBuckets {
		if strings.Contains(lower, bucket.keywords[0]) || strings.Contains(lower, bucket.keywords[1]) {
			profile.Interest = bucket.service
		}
	}
}

// firstCapture returns the first capture group of the first pattern
// that matches, or "".
func firstCapture(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
