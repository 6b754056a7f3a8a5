package server

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/tripwizard/types"
	"github.com/xeipuuv/gojsonschema"
)

// intentValidator checks pre-filled intents against the reflected Intent
// schema.
type intentValidator struct {
	raw    string
	schema *gojsonschema.Schema
}

func newIntentValidator() (*intentValidator, error) {
	raw, err := types.IntentSchema()
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode intent schema: %w", err)
	}
	// the reflected document points at its definition through $ref; the
	// validator gets the definition itself
	if ref, ok := doc["$ref"].(string); ok {
		if defs, ok := doc["$defs"].(map[string]any); ok {
			name := strings.TrimPrefix(ref, "#/$defs/")
			if def, ok := defs[name].(map[string]any); ok {
				rest := make(map[string]any, len(defs))
				for k, v := range defs {
					if k != name {
						rest[k] = v
					}
				}
				if len(rest) > 0 {
					def["$defs"] = rest
				}
				doc = def
			}
		}
	}
	delete(doc, "$schema")
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent schema: %w", err)
	}
	return &intentValidator{raw: raw, schema: schema}, nil
}

// Validate returns one message per schema violation.
func (v *intentValidator) Validate(data []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errs, nil
}
