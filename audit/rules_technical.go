package audit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

var technicalRules = []Rule{
	{
		ID:          "canonical-exists",
		Category:    CategoryTechnical,
		Name:        "Canonical URL",
		Description: "Page should have a canonical URL.",
		Check:       checkCanonicalExists,
	},
	{
		ID:          "canonical-self",
		Category:    CategoryTechnical,
		Name:        "Canonical Self-Reference",
		Description: "Canonical should point to the current page URL.",
		Check:       checkCanonicalSelf,
	},
	{
		ID:          "robots-noindex",
		Category:    CategoryTechnical,
		Name:        "Robots Noindex",
		Description: "Check if page is accidentally set to noindex.",
		Check:       checkRobotsNoindex,
	},
	{
		ID:          "https",
		Category:    CategoryTechnical,
		Name:        "HTTPS",
		Description: "Page should be served over HTTPS.",
		Check:       checkHTTPS,
	},
	{
		ID:          "viewport-exists",
		Category:    CategoryTechnical,
		Name:        "Viewport Meta Tag",
		Description: "Page must have a viewport meta tag for mobile.",
		Check:       checkViewport,
	},
	{
		ID:          "lang-exists",
		Category:    CategoryTechnical,
		Name:        "HTML Lang Attribute",
		Description: "HTML element should have a lang attribute.",
		Check:       checkLang,
	},
	{
		ID:          "hreflang-valid",
		Category:    CategoryTechnical,
		Name:        "Hreflang Tags",
		Description: "Hreflang tags should be properly configured.",
		Check:       checkHreflang,
	},
	{
		ID:          "x-robots-noindex",
		Category:    CategoryTechnical,
		Name:        "X-Robots-Tag Header",
		Description: "X-Robots-Tag HTTP header should not contain noindex.",
		Check:       checkXRobotsTag,
	},
}

func checkCanonicalExists(p page.Extraction) Verdict {
	if p.Technical.Canonical == "" {
		return warning("No canonical URL found. This can cause duplicate content issues.")
	}
	return pass("Canonical URL set: " + p.Technical.Canonical)
}

func checkCanonicalSelf(p page.Extraction) Verdict {
	if p.Technical.Canonical == "" {
		return info("No canonical URL to evaluate.")
	}
	if p.Technical.Canonical == p.URL {
		return pass("Canonical URL is self-referencing.")
	}
	return info("Canonical URL points to a different page. Verify this is intentional.").
		with(fmt.Sprintf("Current URL: %s\nCanonical: %s", p.URL, p.Technical.Canonical))
}

func hasNoindex(directives string) bool {
	return strings.Contains(strings.ToLower(directives), "noindex")
}

func checkRobotsNoindex(p page.Extraction) Verdict {
	if !hasNoindex(p.Technical.RobotsMeta) {
		return pass("No noindex directive found.")
	}
	return critical("Page has noindex directive. It will NOT appear in search results.").
		with(fmt.Sprintf("robots meta: %q\nIf intentional, ignore this warning.", p.Technical.RobotsMeta))
}

func checkHTTPS(p page.Extraction) Verdict {
	if p.Technical.IsHTTPS {
		return pass("Page is served over HTTPS.")
	}
	return warning("Page is NOT served over HTTPS. This is a ranking signal.")
}

func checkViewport(p page.Extraction) Verdict {
	if p.Meta.Viewport == "" {
		return critical("No viewport meta tag. Page may not render properly on mobile devices.")
	}
	return pass("Viewport meta tag found.")
}

func checkLang(p page.Extraction) Verdict {
	if p.Meta.Language == "" {
		return warning("No lang attribute on <html> element. This helps search engines and screen readers.")
	}
	return pass("Language set: " + p.Meta.Language)
}

func checkHreflang(p page.Extraction) Verdict {
	tags := p.Technical.HreflangTags
	if len(tags) == 0 {
		return pass("No hreflang tags found (not required for single-language sites).")
	}

	var issues []string
	hasXDefault := false
	for _, t := range tags {
		if t.Lang == "x-default" {
			hasXDefault = true
		}
	}
	if !hasXDefault {
		issues = append(issues, "Missing x-default hreflang tag.")
	}
	for _, t := range tags {
		if t.Href == "" {
			issues = append(issues, fmt.Sprintf("Hreflang for %q has no href.", t.Lang))
		}
	}
	if len(issues) > 0 {
		return warning("Hreflang issues found.").with(strings.Join(issues, "\n"))
	}
	return pass(fmt.Sprintf("%d hreflang tags properly configured.", len(tags)))
}

// responseHeader looks a header up case-insensitively; hosts are expected to
// lower-case names but extractions posted from outside may not.
func responseHeader(p page.Extraction, name string) string {
	if v, ok := p.ResponseHeaders[name]; ok {
		return v
	}
	for _, k := range slices.Sorted(maps.Keys(p.ResponseHeaders)) {
		if strings.EqualFold(k, name) {
			return p.ResponseHeaders[k]
		}
	}
	return ""
}

// checkXRobotsTag inspects the X-Robots-Tag response header. A noindex here
// overrides whatever the robots meta tag says.
func checkXRobotsTag(p page.Extraction) Verdict {
	xRobots := responseHeader(p, "x-robots-tag")
	switch {
	case hasNoindex(xRobots):
		return critical("X-Robots-Tag contains noindex - page is blocked from indexing via HTTP header.").
			with(fmt.Sprintf("X-Robots-Tag: %s\nThis header overrides meta robots. If intentional, ignore this warning.", xRobots))
	case xRobots != "":
		return pass("X-Robots-Tag: " + xRobots)
	}
	return pass("No X-Robots-Tag header detected (normal for most sites).")
}
