package audit

import (
	"fmt"

	"github.com/seo-optimizer/seoaudit/page"
)

const (
	descriptionMinLength = 70
	descriptionMaxLength = 160
)

var descriptionRules = []Rule{
	{
		ID:          "desc-exists",
		Category:    CategoryDescription,
		Name:        "Meta Description Exists",
		Description: "Page should have a meta description.",
		Check:       checkDescriptionExists,
	},
	{
		ID:          "desc-length",
		Category:    CategoryDescription,
		Name:        "Description Length",
		Description: "Meta description should be between 70 and 160 characters.",
		Check:       checkDescriptionLength,
	},
	{
		ID:          "desc-og-match",
		Category:    CategoryDescription,
		Name:        "Description / OG Description Match",
		Description: "Description and og:description should ideally match.",
		Check:       checkDescriptionOGMatch,
	},
}

func checkDescriptionExists(p page.Extraction) Verdict {
	if p.Meta.Description == "" {
		return critical("No meta description found. This is important for search result snippets.")
	}
	return pass("Meta description found.")
}

func checkDescriptionLength(p page.Extraction) Verdict {
	if p.Meta.Description == "" {
		return critical("No description to evaluate.")
	}
	n := p.Meta.DescriptionLength
	switch {
	case n < descriptionMinLength:
		return warning(fmt.Sprintf("Description length is %d characters. Recommended: 70-160 characters.", n)).
			with("Your description is too short. Add more compelling detail.")
	case n > descriptionMaxLength:
		return warning(fmt.Sprintf("Description length is %d characters. Recommended: 70-160 characters.", n)).
			with("Your description may be truncated in search results.")
	}
	return pass(fmt.Sprintf("Description length is %d characters (optimal range).", n))
}

func checkDescriptionOGMatch(p page.Extraction) Verdict {
	if p.OG.Description == "" {
		return info("No og:description set to compare.")
	}
	if p.Meta.Description == p.OG.Description {
		return pass("Description and og:description match.")
	}
	return info("Description and og:description differ.")
}
