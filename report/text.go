// Package report formats audit results for people and tools: a Markdown text
// report, an extraction summary, a multi-page comparison, and file renderers.
package report

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/page"
)

// Band labels a category score: 80 and up passes, 50 and up warns.
func Band(score int) string {
	switch {
	case score >= 80:
		return "PASS"
	case score >= 50:
		return "WARN"
	}
	return "FAIL"
}

// Audit renders r as a Markdown report. The output depends only on its
// inputs, so the same report always renders to the same bytes.
func Audit(r audit.Report, p page.Extraction) string {
	var lines []string

	lines = append(lines, "# SEO Audit Report: "+p.URL)
	lines = append(lines, fmt.Sprintf("Overall Score: %d/100\n", r.Score))

	lines = append(lines, "## Category Scores")
	for _, c := range audit.Categories {
		score, ok := r.CategoryScores[c]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %d/100 [%s]", c, score, Band(score)))
	}

	sections := []struct {
		title    string
		severity audit.Severity
	}{
		{"Critical Issues", audit.SeverityCritical},
		{"Warnings", audit.SeverityWarning},
		{"Info", audit.SeverityInfo},
	}
	for _, s := range sections {
		found := r.Filter(s.severity)
		if len(found) == 0 {
			continue
		}
		lines = append(lines, "\n## "+s.title)
		for _, res := range found {
			lines = append(lines, fmt.Sprintf("- [%s] %s", res.Category, res.Message))
		}
	}

	lines = append(lines, "\n## Summary")
	lines = append(lines, Summary(r))

	return strings.Join(lines, "\n")
}

// Summary is the one-line count of results per severity.
func Summary(r audit.Report) string {
	return fmt.Sprintf("%d passed | %d critical | %d warnings | %d info",
		r.Count(audit.SeverityPass),
		r.Count(audit.SeverityCritical),
		r.Count(audit.SeverityWarning),
		r.Count(audit.SeverityInfo))
}

func orMissing(s string) string {
	return or(s, "MISSING")
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// maxOutlineHeadings caps the heading outline of an extraction summary.
const maxOutlineHeadings = 20

// Extraction renders the SEO-relevant surface of p without auditing it.
func Extraction(p page.Extraction) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("# Meta Tag Extraction: %s\n", p.URL))

	lines = append(lines, "## Basic Meta")
	lines = append(lines, fmt.Sprintf("- Title: %s (%d chars)", p.Meta.Title, p.Meta.TitleLength))
	lines = append(lines, fmt.Sprintf("- Description: %s (%d chars)", p.Meta.Description, p.Meta.DescriptionLength))
	lines = append(lines, "- Canonical: "+orMissing(p.Meta.Canonical))
	lines = append(lines, "- Robots: "+or(p.Meta.Robots, "none"))
	lines = append(lines, "- Language: "+orMissing(p.Meta.Language))
	lines = append(lines, "- Viewport: "+orMissing(p.Meta.Viewport))

	lines = append(lines, "\n## Open Graph")
	lines = append(lines, "- og:title: "+orMissing(p.OG.Title))
	lines = append(lines, "- og:description: "+orMissing(p.OG.Description))
	lines = append(lines, "- og:image: "+orMissing(p.OG.Image))
	lines = append(lines, "- og:type: "+orMissing(p.OG.Type))

	lines = append(lines, "\n## Twitter Card")
	lines = append(lines, "- twitter:card: "+orMissing(p.Twitter.Card))
	lines = append(lines, "- twitter:title: "+orMissing(p.Twitter.Title))
	lines = append(lines, "- twitter:image: "+orMissing(p.Twitter.Image))

	missingAlt, external := 0, 0
	for _, img := range p.Images {
		if img.Alt == "" {
			missingAlt++
		}
	}
	for _, l := range p.Links {
		if l.IsExternal {
			external++
		}
	}
	lines = append(lines, "\n## Content")
	lines = append(lines, fmt.Sprintf("- Word count: %d", p.WordCount))
	lines = append(lines, fmt.Sprintf("- Headings: %d", len(p.Headings)))
	lines = append(lines, fmt.Sprintf("- Images: %d (%d missing alt)", len(p.Images), missingAlt))
	lines = append(lines, fmt.Sprintf("- Links: %d (%d external)", len(p.Links), external))

	lines = append(lines, "\n## Structured Data")
	if len(p.JSONLD) == 0 {
		lines = append(lines, "- No JSON-LD found")
	}
	for _, block := range p.JSONLD {
		status := "INVALID"
		if block.IsValid {
			status = "Valid"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", or(block.Type, "Unknown"), status))
	}

	if p.RobotsTxt != nil {
		status := "disallowed"
		if p.RobotsTxt.Allowed {
			status = "allowed"
		}
		lines = append(lines, "\n## Robots.txt")
		lines = append(lines, fmt.Sprintf("- %s: %s", p.RobotsTxt.URL, status))
	}

	lines = append(lines, "\n## Heading Structure")
	outline := p.Headings
	if len(outline) > maxOutlineHeadings {
		outline = outline[:maxOutlineHeadings]
	}
	for _, h := range outline {
		indent := strings.Repeat("  ", max(h.Level-1, 0))
		lines = append(lines, fmt.Sprintf("%s- %s: %s", indent, strings.ToUpper(h.Tag), h.Text))
	}

	return strings.Join(lines, "\n")
}
