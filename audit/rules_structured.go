package audit

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

var structuredDataRules = []Rule{
	{
		ID:          "jsonld-exists",
		Category:    CategoryStructuredData,
		Name:        "JSON-LD Exists",
		Description: "Page should have JSON-LD structured data.",
		Check:       checkJSONLDExists,
	},
	{
		ID:          "jsonld-valid",
		Category:    CategoryStructuredData,
		Name:        "JSON-LD Valid",
		Description: "JSON-LD blocks should be valid JSON.",
		Check:       checkJSONLDValid,
	},
	{
		ID:          "jsonld-type",
		Category:    CategoryStructuredData,
		Name:        "Schema Type",
		Description: "JSON-LD should include appropriate schema types.",
		Check:       checkSchemaType,
	},
	{
		ID:          "breadcrumb-schema",
		Category:    CategoryStructuredData,
		Name:        "Breadcrumb Schema",
		Description: "BreadcrumbList schema helps search engines understand site structure.",
		Check:       checkBreadcrumbSchema,
	},
}

func checkJSONLDExists(p page.Extraction) Verdict {
	if len(p.JSONLD) == 0 {
		return warning("No JSON-LD structured data found. Adding schema markup can enhance search results.")
	}
	return pass(fmt.Sprintf("%d JSON-LD block(s) found.", len(p.JSONLD)))
}

func checkJSONLDValid(p page.Extraction) Verdict {
	if len(p.JSONLD) == 0 {
		return pass("No JSON-LD to validate.")
	}
	var errs []string
	for _, block := range p.JSONLD {
		if !block.IsValid {
			errs = append(errs, strings.Join(block.Errors, ", "))
		}
	}
	if len(errs) == 0 {
		return pass("All JSON-LD blocks are valid.")
	}
	return critical(fmt.Sprintf("%d invalid JSON-LD block(s).", len(errs))).
		with(strings.Join(errs, "\n"))
}

func checkSchemaType(p page.Extraction) Verdict {
	if len(p.JSONLD) == 0 {
		return info("No structured data. Consider adding Article, Product, LocalBusiness, or other relevant schema.")
	}
	var types []string
	for _, block := range p.JSONLD {
		if block.Type != "" {
			types = append(types, block.Type)
		}
	}
	found := strings.Join(types, ", ")
	if found == "" {
		found = "Unknown"
	}
	return pass("Schema types found: " + found)
}

func checkBreadcrumbSchema(p page.Extraction) Verdict {
	for _, block := range p.JSONLD {
		if strings.Contains(block.Type, "BreadcrumbList") {
			return pass("BreadcrumbList schema found.")
		}
	}
	return info("No BreadcrumbList schema. Consider adding breadcrumb structured data.")
}
