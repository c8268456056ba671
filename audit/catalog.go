package audit

import (
	"fmt"
)

// Catalog is the ordered, fixed set of rules. Order is by category and is
// preserved in every Report.
var Catalog = buildCatalog(
	titleRules,
	descriptionRules,
	headingRules,
	imageRules,
	linkRules,
	technicalRules,
	structuredDataRules,
	socialRules,
	contentRules,
	performanceRules,
)

func buildCatalog(groups ...[]Rule) []Rule {
	var rules []Rule
	for _, g := range groups {
		rules = append(rules, g...)
	}
	if err := validateCatalog(rules); err != nil {
		panic("audit: invalid rule catalog: " + err.Error())
	}
	return rules
}

// validateCatalog enforces the catalog contract: unique IDs, known
// categories, a check for every rule, and the placeholder rules that vitals
// overrides replace.
func validateCatalog(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("rule %q has no id", r.Name)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if !r.Category.Valid() {
			return fmt.Errorf("rule %q has unknown category %q", r.ID, r.Category)
		}
		if r.Check == nil {
			return fmt.Errorf("rule %q has no check", r.ID)
		}
	}
	for _, id := range vitalsRuleIDs {
		if !seen[id] {
			return fmt.Errorf("performance placeholder %q is missing", id)
		}
	}
	return nil
}

// Lookup returns the catalog rule with the given ID.
func Lookup(id string) (Rule, bool) {
	for _, r := range Catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// RulesFor returns the catalog rules of one category, in catalog order.
func RulesFor(c Category) []Rule {
	var out []Rule
	for _, r := range Catalog {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}
