package analyzers

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
	"store-auditor/document"
)

// structuredData decodes every ld+json block on the page.
// Blocks that are not valid JSON are retried with the lenient json5 decoder; blocks that still fail are logged and skipped.
func (a *BaseAnalyzer) structuredData(page *document.Page) []interface{} {
	var blocks []interface{}
	page.Find("script[type='application/ld+json']").Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		value, err := decodeStructuredData(raw)
		if err != nil {
			a.warnf("Skipping ld+json block %d on %s: %v", i, page.URL, err)
			return
		}
		blocks = append(blocks, value)
	})
	return blocks
}

func decodeStructuredData(raw string) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value, nil
	}
	if err := json5.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// hasSchemaType reports whether any object in value declares one of the schema.org types
func hasSchemaType(value interface{}, names ...string) bool {
	found := false
	walkSchema(value, func(object map[string]interface{}) bool {
		for _, declared := range schemaTypes(object) {
			for _, name := range names {
				if strings.EqualFold(declared, name) {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}

// hasSchemaKey reports whether any object in value carries one of the keys
func hasSchemaKey(value interface{}, keys ...string) bool {
	found := false
	walkSchema(value, func(object map[string]interface{}) bool {
		for _, key := range keys {
			if _, ok := object[key]; ok {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func schemaTypes(object map[string]interface{}) []string {
	switch t := object["@type"].(type) {
	case string:
		return []string{t}
	case []interface{}:
		var names []string
		for _, item := range t {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}

// walkSchema visits every object in value depth first until visit returns false
func walkSchema(value interface{}, visit func(map[string]interface{}) bool) bool {
	switch v := value.(type) {
	case map[string]interface{}:
		if !visit(v) {
			return false
		}
		for _, child := range v {
			if !walkSchema(child, visit) {
				return false
			}
		}
	case []interface{}:
		for _, child := range v {
			if !walkSchema(child, visit) {
				return false
			}
		}
	}
	return true
}
