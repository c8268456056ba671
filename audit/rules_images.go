package audit

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

// missingAltCriticalAbove is the count of images without alt text beyond
// which the finding escalates from warning to critical.
const missingAltCriticalAbove = 5

var legacyImageFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
}

var imageRules = []Rule{
	{
		ID:          "images-alt",
		Category:    CategoryImages,
		Name:        "Image Alt Text",
		Description: "Images should have alt text for accessibility and SEO.",
		Check:       checkImageAlt,
	},
	{
		ID:          "images-dimensions",
		Category:    CategoryImages,
		Name:        "Image Dimensions",
		Description: "Images should have explicit width/height to prevent layout shift.",
		Check:       checkImageDimensions,
	},
	{
		ID:          "images-lazy",
		Category:    CategoryImages,
		Name:        "Lazy Loading",
		Description: "Below-fold images should use lazy loading.",
		Check:       checkImageLazyLoading,
	},
	{
		ID:          "images-format",
		Category:    CategoryImages,
		Name:        "Modern Image Formats",
		Description: "Consider using WebP/AVIF for better compression.",
		Check:       checkImageFormat,
	},
}

func filterImages(p page.Extraction, keep func(page.Image) bool) []page.Image {
	var out []page.Image
	for _, img := range p.Images {
		if keep(img) {
			out = append(out, img)
		}
	}
	return out
}

func checkImageAlt(p page.Extraction) Verdict {
	if len(p.Images) == 0 {
		return pass("No images found on page.")
	}
	missing := filterImages(p, func(img page.Image) bool { return img.Alt == "" })
	if len(missing) == 0 {
		return pass("All images have alt text.")
	}

	listed := missing
	if len(listed) > 10 {
		listed = listed[:10]
	}
	lines := make([]string, len(listed))
	for i, img := range listed {
		lines[i] = "- " + img.Src
	}

	v := warning(fmt.Sprintf("%d image(s) missing alt text.", len(missing)))
	if len(missing) > missingAltCriticalAbove {
		v = critical(v.Message)
	}
	return v.with(strings.Join(lines, "\n"))
}

func checkImageDimensions(p page.Extraction) Verdict {
	if len(p.Images) == 0 {
		return pass("No images found.")
	}
	noDims := filterImages(p, func(img page.Image) bool { return img.Width == nil && img.Height == nil })
	if len(noDims) == 0 {
		return pass("All images have explicit dimensions.")
	}
	return warning(fmt.Sprintf("%d image(s) lack width/height attributes (CLS risk).", len(noDims)))
}

func checkImageLazyLoading(p page.Extraction) Verdict {
	if len(p.Images) == 0 {
		return pass("No images found.")
	}
	eager := filterImages(p, func(img page.Image) bool { return !img.HasLazyLoading })
	if len(eager) == 0 {
		return pass("All images use lazy loading.")
	}
	return info(fmt.Sprintf("%d image(s) without lazy loading. Consider adding loading=\"lazy\" for below-fold images.", len(eager)))
}

func checkImageFormat(p page.Extraction) Verdict {
	if len(p.Images) == 0 {
		return pass("No images found.")
	}
	legacy := filterImages(p, func(img page.Image) bool { return legacyImageFormats[img.FileExtension] })
	if len(legacy) == 0 {
		return pass("All images use modern formats.")
	}
	return info(fmt.Sprintf("%d image(s) using legacy formats. Consider WebP or AVIF for better compression.", len(legacy)))
}
