package messages

import (
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON Schemas for command payloads arriving over HTTP. The surface id is
// injected from the cookie session after validation, so the schemas cover
// only the client-supplied fields.

const toolRunCommandSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "tool_id": {
      "type": "string",
      "pattern": "^[a-zA-Z0-9_-]+$"
    },
    "correlation_id": { "type": "string" }
  },
  "required": ["tool_id"]
}`

const surfaceViewCommandSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "view": { "enum": ["hello", "tools"] }
  },
  "required": ["view"]
}`

const surfacePatchCommandSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "patch": { "type": ["object", "array"] },
    "type": { "enum": ["merge", "jsonpatch"] }
  },
  "required": ["patch"]
}`

const consoleCommandMessageSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "line": { "type": "string", "minLength": 1 }
  },
  "required": ["line"]
}`

var (
	schemaOnce      sync.Once
	compiledSchemas map[string]*jsonschema.Schema
)

func commandSchemas() map[string]*jsonschema.Schema {
	schemaOnce.Do(func() {
		compiledSchemas = map[string]*jsonschema.Schema{
			"ToolRunCommand":        jsonschema.MustCompileString("toolrun.schema.json", toolRunCommandSchema),
			"SurfaceViewCommand":    jsonschema.MustCompileString("surfaceview.schema.json", surfaceViewCommandSchema),
			"SurfacePatchCommand":   jsonschema.MustCompileString("surfacepatch.schema.json", surfacePatchCommandSchema),
			"ConsoleCommandMessage": jsonschema.MustCompileString("consolecommand.schema.json", consoleCommandMessageSchema),
		}
	})
	return compiledSchemas
}

// ValidateJSON checks an inbound JSON payload against the schema for the
// given command type. Unknown types fail closed: validation happens at the
// invocation boundary, before any typed command is built.
func ValidateJSON(messageType string, data []byte) error {
	schema, ok := commandSchemas()[messageType]
	if !ok {
		return fmt.Errorf("unknown command type: %s", messageType)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload schema validation failed: %w", err)
	}
	return nil
}
