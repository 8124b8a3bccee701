package source

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// candidateSchema is the contract the signal source must meet. Validation
// fails closed: a batch that does not conform is rejected whole, never
// partially interpreted or executed.
const candidateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "pair":             {"type": "string", "minLength": 1},
      "trend_direction":  {"type": "string"},
      "direction":        {"type": "string"},
      "confidence_level": {"type": "number", "minimum": 0, "maximum": 100},
      "confidence":       {"type": "number", "minimum": 0, "maximum": 100},
      "reason":           {"type": "string"},
      "entry_price":      {"type": "number", "exclusiveMinimum": 0},
      "take_profit":      {"type": "number"},
      "stop_loss":        {"type": "number"}
    },
    "required": ["pair", "entry_price"]
  }
}`

var compiledSchema = jsonschema.MustCompileString("candidates.json", candidateSchema)

func validateBatch(doc any) error {
	return compiledSchema.Validate(doc)
}

// directionField prefers the long-form key the original generator emits.
func directionField(trend, direction string) string {
	if strings.TrimSpace(trend) != "" {
		return trend
	}
	return direction
}
