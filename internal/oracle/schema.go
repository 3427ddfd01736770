package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	baseSchema = mustCompile("candidate.json", responseSchema(false))
	fitSchema  = mustCompile("candidate_fit.json", responseSchema(true))
)

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func responseSchema(withFit bool) map[string]any {
	props := map[string]any{
		"name":            nullableString(),
		"email":           nullableString(),
		"mobile":          nullableString(),
		"github_link":     nullableString(),
		"linkedin_link":   nullableString(),
		"current_company": nullableString(),
		"collegename":     nullableString(),
		"skillsets": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
		"experience": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"company":    nullableString(),
					"start_date": nullableString(),
					"end_date":   nullableString(),
				},
			},
		},
	}
	schema := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
	if withFit {
		enum := make([]any, len(fitStatuses))
		for i, s := range fitStatuses {
			enum[i] = s
		}
		props["summary"] = nullableString()
		props["fit_status"] = map[string]any{"type": "string", "enum": enum}
		schema["required"] = []any{"fit_status"}
	}
	return schema
}

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validateResponse checks decoded oracle output against the response schema.
func validateResponse(doc any, withFit bool) error {
	schema := baseSchema
	if withFit {
		schema = fitSchema
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
