package fallback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// flatObjectSchema accepts a JSON object whose values are all scalars or null.
const flatObjectSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {"type": ["string", "number", "integer", "boolean", "null"]}
}`

var responseSchema = mustCompileSchema("flat_fields.json", flatObjectSchema)

func mustCompileSchema(url, doc string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(doc)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	return compiler.MustCompile(url)
}

// decodeFlat parses a backend answer into a flat field map. Markdown fences and
// chatter around the JSON object are tolerated.
func decodeFlat(raw string) (map[string]any, error) {
	body := stripFences(raw)

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if err := json.Unmarshal([]byte(body[start:end+1]), &v); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	if err := responseSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("response is not a flat object: %w", err)
	}
	return v.(map[string]any), nil
}

func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}
