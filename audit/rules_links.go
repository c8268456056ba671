package audit

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

const minInternalLinks = 3

// genericAnchors are matched exactly after trimming and lower-casing.
var genericAnchors = map[string]bool{
	"click here": true,
	"read more":  true,
	"here":       true,
	"learn more": true,
	"more":       true,
	"link":       true,
	"this":       true,
}

var linkRules = []Rule{
	{
		ID:          "links-generic-anchor",
		Category:    CategoryLinks,
		Name:        "Descriptive Anchor Text",
		Description: "Links should have descriptive anchor text.",
		Check:       checkGenericAnchors,
	},
	{
		ID:          "links-empty-href",
		Category:    CategoryLinks,
		Name:        "Empty Links",
		Description: "Links should not have empty href or href=\"#\".",
		Check:       checkEmptyHrefs,
	},
	{
		ID:          "links-internal-count",
		Category:    CategoryLinks,
		Name:        "Internal Links",
		Description: "Page should have a reasonable number of internal links.",
		Check:       checkInternalLinkCount,
	},
}

func checkGenericAnchors(p page.Extraction) Verdict {
	var generic []page.Link
	for _, l := range p.Links {
		if genericAnchors[strings.ToLower(strings.TrimSpace(l.Text))] {
			generic = append(generic, l)
		}
	}
	if len(generic) == 0 {
		return pass("All links have descriptive anchor text.")
	}
	listed := generic
	if len(listed) > 10 {
		listed = listed[:10]
	}
	lines := make([]string, len(listed))
	for i, l := range listed {
		lines[i] = fmt.Sprintf("%q → %s", l.Text, l.Href)
	}
	return warning(fmt.Sprintf("%d link(s) with generic anchor text found.", len(generic))).
		with(strings.Join(lines, "\n"))
}

func isPlaceholderHref(href string) bool {
	return href == "" || href == "#" || href == "javascript:void(0)"
}

func checkEmptyHrefs(p page.Extraction) Verdict {
	n := 0
	for _, l := range p.Links {
		if isPlaceholderHref(l.Href) {
			n++
		}
	}
	if n == 0 {
		return pass("No empty or placeholder links found.")
	}
	return warning(fmt.Sprintf("%d link(s) with empty or placeholder href.", n))
}

// Few internal links is a hint, not a defect.
func checkInternalLinkCount(p page.Extraction) Verdict {
	n := 0
	for _, l := range p.Links {
		if !l.IsExternal {
			n++
		}
	}
	if n >= minInternalLinks {
		return pass(fmt.Sprintf("%d internal links found.", n))
	}
	return info(fmt.Sprintf("Only %d internal link(s) found. Consider adding more for better site structure.", n))
}
