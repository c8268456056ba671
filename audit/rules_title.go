package audit

import (
	"fmt"

	"github.com/seo-optimizer/seoaudit/page"
)

const (
	titleMinLength = 30
	titleMaxLength = 60
)

var titleRules = []Rule{
	{
		ID:          "title-exists",
		Category:    CategoryTitle,
		Name:        "Title Tag Exists",
		Description: "Page must have a title tag.",
		Check:       checkTitleExists,
	},
	{
		ID:          "title-length",
		Category:    CategoryTitle,
		Name:        "Title Length",
		Description: "Title should be between 30 and 60 characters.",
		Check:       checkTitleLength,
	},
	{
		ID:          "title-og-match",
		Category:    CategoryTitle,
		Name:        "Title / OG Title Match",
		Description: "Title and og:title should ideally match.",
		Check:       checkTitleOGMatch,
	},
}

func checkTitleExists(p page.Extraction) Verdict {
	if p.Meta.Title == "" {
		return critical("No title tag found. Every page must have a unique title tag.")
	}
	return pass(fmt.Sprintf("Title tag found: %q", p.Meta.Title))
}

func checkTitleLength(p page.Extraction) Verdict {
	if p.Meta.Title == "" {
		return critical("No title to evaluate.")
	}
	n := p.Meta.TitleLength
	switch {
	case n < titleMinLength:
		return warning(fmt.Sprintf("Title length is %d characters. Recommended: 30-60 characters.", n)).
			with("Your title is too short. Consider adding more descriptive keywords.")
	case n > titleMaxLength:
		return warning(fmt.Sprintf("Title length is %d characters. Recommended: 30-60 characters.", n)).
			with("Your title may be truncated in search results. Consider shortening it.")
	}
	return pass(fmt.Sprintf("Title length is %d characters (optimal range).", n))
}

// A differing og:title is often deliberate, so it is never worse than info.
func checkTitleOGMatch(p page.Extraction) Verdict {
	if p.OG.Title == "" {
		return info("No og:title set to compare with title tag.")
	}
	if p.Meta.Title == p.OG.Title {
		return pass("Title and og:title match.")
	}
	return info("Title and og:title differ. This may be intentional for social sharing.").
		with(fmt.Sprintf("Title: %q\nog:title: %q", p.Meta.Title, p.OG.Title))
}
