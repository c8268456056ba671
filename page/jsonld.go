package page

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSONLD decodes one structured-data block. A parse failure is recorded
// on the block rather than returned: malformed markup is a finding.
func ParseJSONLD(raw string) JSONLD {
	block := JSONLD{Raw: strings.TrimSpace(raw), Errors: []string{}}

	var parsed any
	if err := json.Unmarshal([]byte(block.Raw), &parsed); err != nil {
		block.Errors = append(block.Errors, err.Error())
		return block
	}
	block.Parsed = parsed
	block.IsValid = true
	block.Type = SchemaType(parsed)
	return block
}

// SchemaType reads @type from a decoded block, joining arrays with ", ". When
// @type is absent it collects @type from every @graph entry instead.
func SchemaType(parsed any) string {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return ""
	}
	if t := typeValue(obj["@type"], ", "); t != "" {
		return t
	}
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return ""
	}
	var types []string
	for _, item := range graph {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if t := typeValue(entry["@type"], ","); t != "" {
			types = append(types, t)
		}
	}
	return strings.Join(types, ", ")
}

func typeValue(v any, sep string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, typeValue(p, ","))
		}
		return strings.Join(parts, sep)
	case bool:
		if !t {
			return ""
		}
	}
	return fmt.Sprint(v)
}
