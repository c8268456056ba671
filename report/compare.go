package report

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/page"
)

// Entry is one audited page of a comparison.
type Entry struct {
	URL        string          `json:"url"`
	Extraction page.Extraction `json:"extraction"`
	Report     audit.Report    `json:"audit"`
}

const descriptionPreview = 80

// Comparison renders entries side by side in the order given. The best and
// lowest performers are the first entries reaching the highest and lowest
// score.
func Comparison(entries []Entry) string {
	lines := []string{"# SEO Comparison Report\n"}
	if len(entries) == 0 {
		return lines[0]
	}

	lines = append(lines, "## Overall Scores")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s: **%d/100**", e.URL, e.Report.Score))
	}

	lines = append(lines, "\n## Category Breakdown")
	for _, c := range audit.Categories {
		if _, ok := entries[0].Report.CategoryScores[c]; !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n### %s", c))
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("- %s: %d/100", e.URL, e.Report.CategoryScores[c]))
		}
	}

	lines = append(lines, "\n## Meta Tag Comparison")
	for _, e := range entries {
		meta := e.Extraction.Meta
		description := "MISSING"
		if meta.Description != "" {
			description = preview(meta.Description, descriptionPreview) + "..."
		}
		var schemas []string
		for _, block := range e.Extraction.JSONLD {
			schemas = append(schemas, block.Type)
		}

		lines = append(lines, fmt.Sprintf("\n**%s**", e.URL))
		lines = append(lines, fmt.Sprintf("- Title: %s (%d chars)", orMissing(meta.Title), meta.TitleLength))
		lines = append(lines, "- Description: "+description)
		lines = append(lines, "- Schema: "+or(strings.Join(schemas, ", "), "None"))
		lines = append(lines, fmt.Sprintf("- Word count: %d", e.Extraction.WordCount))
	}

	best, worst := entries[0], entries[0]
	for _, e := range entries[1:] {
		if e.Report.Score > best.Report.Score {
			best = e
		}
		if e.Report.Score < worst.Report.Score {
			worst = e
		}
	}
	lines = append(lines, "\n## Key Differences")
	lines = append(lines, fmt.Sprintf("- Best performing: %s (%d/100)", best.URL, best.Report.Score))
	lines = append(lines, fmt.Sprintf("- Lowest performing: %s (%d/100)", worst.URL, worst.Report.Score))
	lines = append(lines, fmt.Sprintf("- Score gap: %d points", best.Report.Score-worst.Report.Score))

	return strings.Join(lines, "\n")
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
