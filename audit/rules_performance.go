package audit

import (
	"fmt"
	"strconv"

	"github.com/seo-optimizer/seoaudit/page"
)

// The performance rules are placeholders: they never look at the page and
// exist so that measured vitals can replace them by ID.
var performanceRules = []Rule{
	{
		ID:          "lcp-good",
		Category:    CategoryPerformance,
		Name:        "Largest Contentful Paint",
		Description: "LCP should be under 2.5 seconds.",
		Check:       unavailable("LCP data not available. Supply measured vitals for performance metrics."),
	},
	{
		ID:          "inp-good",
		Category:    CategoryPerformance,
		Name:        "Interaction to Next Paint",
		Description: "INP should be under 200ms.",
		Check:       unavailable("INP data not available."),
	},
	{
		ID:          "cls-good",
		Category:    CategoryPerformance,
		Name:        "Cumulative Layout Shift",
		Description: "CLS should be under 0.1.",
		Check:       unavailable("CLS data not available."),
	},
	{
		ID:          "ttfb-good",
		Category:    CategoryPerformance,
		Name:        "Time to First Byte",
		Description: "TTFB should be under 800ms.",
		Check:       unavailable("TTFB data not available."),
	},
}

var vitalsRuleIDs = []string{"lcp-good", "inp-good", "cls-good", "ttfb-good"}

func unavailable(msg string) CheckFunc {
	return func(page.Extraction) Verdict { return info(msg) }
}

// threshold grades a measurement: below good passes, below poor warns,
// anything else is critical.
func threshold(v, good, poor float64) (Severity, string) {
	switch {
	case v < good:
		return SeverityPass, "(good)"
	case v < poor:
		return SeverityWarning, "(needs improvement)"
	}
	return SeverityCritical, "(poor)"
}

func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

// vitalsOverrides computes a replacement verdict for every measured metric,
// keyed by the placeholder rule ID it replaces.
func vitalsOverrides(v page.WebVitals) map[string]Verdict {
	overrides := make(map[string]Verdict, len(vitalsRuleIDs))
	add := func(id string, sev Severity, msg string) {
		overrides[id] = Verdict{Severity: sev, Message: msg}
	}

	if v.LCP != nil {
		sev, label := threshold(*v.LCP, 2500, 4000)
		add("lcp-good", sev, fmt.Sprintf("LCP: %.2fs %s", *v.LCP/1000, label))
	}
	if v.INP != nil {
		sev, label := threshold(*v.INP, 200, 500)
		add("inp-good", sev, fmt.Sprintf("INP: %sms %s", formatMillis(*v.INP), label))
	}
	if v.CLS != nil {
		sev, label := threshold(*v.CLS, 0.1, 0.25)
		add("cls-good", sev, fmt.Sprintf("CLS: %.3f %s", *v.CLS, label))
	}
	// A slow first byte alone is not severe, so TTFB tops out at info.
	if v.TTFB != nil {
		if *v.TTFB < 800 {
			add("ttfb-good", SeverityPass, fmt.Sprintf("TTFB: %sms (good)", formatMillis(*v.TTFB)))
		} else {
			add("ttfb-good", SeverityInfo, fmt.Sprintf("TTFB: %sms (slow)", formatMillis(*v.TTFB)))
		}
	}
	return overrides
}
