package audit

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

var headingRules = []Rule{
	{
		ID:          "h1-exists",
		Category:    CategoryHeadings,
		Name:        "H1 Tag Exists",
		Description: "Page must have at least one H1 tag.",
		Check:       checkH1Exists,
	},
	{
		ID:          "h1-multiple",
		Category:    CategoryHeadings,
		Name:        "Single H1",
		Description: "Page should have only one H1 tag.",
		Check:       checkSingleH1,
	},
	{
		ID:          "heading-hierarchy",
		Category:    CategoryHeadings,
		Name:        "Heading Hierarchy",
		Description: "Headings should not skip levels.",
		Check:       checkHeadingHierarchy,
	},
	{
		ID:          "heading-empty",
		Category:    CategoryHeadings,
		Name:        "Empty Headings",
		Description: "Headings should not be empty.",
		Check:       checkEmptyHeadings,
	},
}

func h1s(p page.Extraction) []page.Heading {
	var out []page.Heading
	for _, h := range p.Headings {
		if h.Level == 1 {
			out = append(out, h)
		}
	}
	return out
}

func checkH1Exists(p page.Extraction) Verdict {
	found := h1s(p)
	if len(found) == 0 {
		return critical("No H1 tag found. Every page should have exactly one H1.")
	}
	return pass(fmt.Sprintf("H1 found: %q", found[0].Text))
}

func checkSingleH1(p page.Extraction) Verdict {
	found := h1s(p)
	switch len(found) {
	case 0:
		return pass("No H1 tags.")
	case 1:
		return pass("Only one H1 tag found.")
	}
	lines := make([]string, len(found))
	for i, h := range found {
		lines[i] = "- " + h.Text
	}
	return warning(fmt.Sprintf("%d H1 tags found. Best practice is to have exactly one.", len(found))).
		with(strings.Join(lines, "\n"))
}

// checkHeadingHierarchy compares consecutive headings in document order; a
// skip is any step down of more than one level.
func checkHeadingHierarchy(p page.Extraction) Verdict {
	if len(p.Headings) == 0 {
		return info("No headings to evaluate.")
	}
	var skips []string
	for i := 1; i < len(p.Headings); i++ {
		prev, curr := p.Headings[i-1].Level, p.Headings[i].Level
		if curr > prev+1 {
			skips = append(skips, fmt.Sprintf("H%d → H%d (skipped H%d) at %q", prev, curr, prev+1, p.Headings[i].Text))
		}
	}
	if len(skips) == 0 {
		return pass("Heading hierarchy is correct.")
	}
	return warning(fmt.Sprintf("%d heading level skip(s) found.", len(skips))).
		with(strings.Join(skips, "\n"))
}

func checkEmptyHeadings(p page.Extraction) Verdict {
	var empty []string
	for _, h := range p.Headings {
		if strings.TrimSpace(h.Text) == "" {
			empty = append(empty, "Empty "+strings.ToUpper(h.Tag))
		}
	}
	if len(empty) == 0 {
		return pass("No empty headings found.")
	}
	return warning(fmt.Sprintf("%d empty heading(s) found.", len(empty))).
		with(strings.Join(empty, "\n"))
}
