// Package audit evaluates a page.Extraction against a fixed catalog of
// independent rules and aggregates their verdicts into weighted scores.
package audit

import (
	"github.com/seo-optimizer/seoaudit/page"
)

// Severity is an ordered verdict tier. Critical is the most severe.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityPass     Severity = "pass"
)

// Category is one of the ten fixed topical buckets.
type Category string

const (
	CategoryTitle          Category = "title"
	CategoryDescription    Category = "description"
	CategoryHeadings       Category = "headings"
	CategoryImages         Category = "images"
	CategoryLinks          Category = "links"
	CategoryTechnical      Category = "technical"
	CategoryStructuredData Category = "structured-data"
	CategorySocial         Category = "social"
	CategoryContent        Category = "content"
	CategoryPerformance    Category = "performance"
)

// Categories lists every category in catalog order.
var Categories = []Category{
	CategoryTitle,
	CategoryDescription,
	CategoryHeadings,
	CategoryImages,
	CategoryLinks,
	CategoryTechnical,
	CategoryStructuredData,
	CategorySocial,
	CategoryContent,
	CategoryPerformance,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryWeights[c]
	return ok
}

// Result is one rule's verdict.
type Result struct {
	RuleID   string   `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Details  string   `json:"details,omitempty"`
}

// Verdict is what a check function decides; the owning Rule turns it into a
// Result carrying its own identity.
type Verdict struct {
	Severity Severity
	Message  string
	Details  string
}

// CheckFunc is a pure, total function over a page. It must not depend on any
// other rule's outcome.
type CheckFunc func(p page.Extraction) Verdict

// Rule is one entry of the catalog.
type Rule struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Check       CheckFunc `json:"-"`
}

// Evaluate runs the rule's check against p.
func (r Rule) Evaluate(p page.Extraction) Result {
	return r.result(r.Check(p))
}

func (r Rule) result(v Verdict) Result {
	return Result{
		RuleID:   r.ID,
		RuleName: r.Name,
		Category: r.Category,
		Severity: v.Severity,
		Message:  v.Message,
		Details:  v.Details,
	}
}

// Report is the outcome of one audit run.
type Report struct {
	Score          int              `json:"score"`
	Results        []Result         `json:"results"`
	CategoryScores map[Category]int `json:"categoryScores"`
	Timestamp      string           `json:"timestamp"`
	URL            string           `json:"url"`
}

// Count returns how many results carry severity s.
func (r Report) Count(s Severity) int {
	n := 0
	for _, res := range r.Results {
		if res.Severity == s {
			n++
		}
	}
	return n
}

// Filter returns the results with severity s, in catalog order.
func (r Report) Filter(s Severity) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Severity == s {
			out = append(out, res)
		}
	}
	return out
}

func pass(msg string) Verdict { return Verdict{Severity: SeverityPass, Message: msg} }
func info(msg string) Verdict { return Verdict{Severity: SeverityInfo, Message: msg} }
func warning(msg string) Verdict { return Verdict{Severity: SeverityWarning, Message: msg} }
func critical(msg string) Verdict { return Verdict{Severity: SeverityCritical, Message: msg} }
func (v Verdict) with(d string) Verdict { v.Details = d; return v }
