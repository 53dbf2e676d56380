package agent

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache holds compiled JSON Schemas keyed by the raw schema bytes so
// repeated tool calls against the same tool don't recompile its schema.
var schemaCache sync.Map

func compileToolSchema(name string, schema json.RawMessage) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	key := string(schema)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString(name+".schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}

// validateToolParams checks params against the tool's declared JSON Schema
// before dispatch, so a malformed-but-parseable call fails with a precise
// schema error instead of reaching the handler.
func validateToolParams(tool Tool, params json.RawMessage) error {
	schema, err := compileToolSchema(tool.Name(), tool.Schema())
	if err != nil {
		// An uncompilable schema is a registration bug, not a caller error;
		// don't block dispatch on it.
		return nil
	}
	if schema == nil {
		return nil
	}

	var decoded any
	if len(params) == 0 {
		decoded = map[string]any{}
	} else if err := json.Unmarshal(params, &decoded); err != nil {
		return fmt.Errorf("decode tool parameters: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("tool parameters invalid for %s: %w", tool.Name(), err)
	}
	return nil
}
