package audit

import (
	"fmt"

	"github.com/seo-optimizer/seoaudit/page"
)

const (
	ogImageMinWidth  = 1200
	ogImageMinHeight = 630
)

var socialRules = []Rule{
	{
		ID:          "og-exists",
		Category:    CategorySocial,
		Name:        "Open Graph Tags",
		Description: "Page should have Open Graph meta tags.",
		Check:       checkOGExists,
	},
	{
		ID:          "og-image",
		Category:    CategorySocial,
		Name:        "OG Image",
		Description: "Page should have an og:image for social sharing.",
		Check:       checkOGImage,
	},
	{
		ID:          "og-image-size",
		Category:    CategorySocial,
		Name:        "OG Image Size",
		Description: "og:image should be at least 1200x630 pixels.",
		Check:       checkOGImageSize,
	},
	{
		ID:          "twitter-card",
		Category:    CategorySocial,
		Name:        "Twitter Card",
		Description: "Page should have Twitter card meta tags.",
		Check:       checkTwitterCard,
	},
	{
		ID:          "twitter-image",
		Category:    CategorySocial,
		Name:        "Twitter Image",
		Description: "Twitter card should include an image.",
		Check:       checkTwitterImage,
	},
}

// Any one of og:title, og:description or og:image counts as having Open Graph.
func checkOGExists(p page.Extraction) Verdict {
	if p.OG.Title == "" && p.OG.Description == "" && p.OG.Image == "" {
		return warning("No Open Graph tags found. Content may not display well when shared on social media.")
	}
	return pass("Open Graph tags found.")
}

func checkOGImage(p page.Extraction) Verdict {
	if p.OG.Image == "" {
		return warning("No og:image found. Social shares will lack a preview image.")
	}
	return pass("og:image is set.")
}

func checkOGImageSize(p page.Extraction) Verdict {
	if p.OG.Image == "" {
		return info("No og:image to evaluate.")
	}
	w, okW := page.ParseInt(p.OG.ImageWidth)
	h, okH := page.ParseInt(p.OG.ImageHeight)
	if !okW || !okH {
		return info("og:image dimensions not specified. Recommended: 1200x630 pixels.")
	}
	if w >= ogImageMinWidth && h >= ogImageMinHeight {
		return pass(fmt.Sprintf("og:image dimensions are %dx%d (adequate).", w, h))
	}
	return info(fmt.Sprintf("og:image is %dx%d. Recommended minimum: 1200x630 pixels.", w, h))
}

func checkTwitterCard(p page.Extraction) Verdict {
	if p.Twitter.Card == "" && p.Twitter.Title == "" {
		return warning("No Twitter card tags found.")
	}
	card := p.Twitter.Card
	if card == "" {
		card = "set"
	}
	return pass("Twitter card type: " + card)
}

// Twitter falls back to og:image, so only the absence of both is flagged.
func checkTwitterImage(p page.Extraction) Verdict {
	if p.Twitter.Image == "" && p.OG.Image == "" {
		return warning("No twitter:image or og:image found.")
	}
	return pass("Twitter image is set (or will fall back to og:image).")
}
