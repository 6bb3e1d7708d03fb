package messages

import (
	"reflect"
	"sort"
	"strings"
)

// FieldType is the input widget a field renders as.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeSelect   FieldType = "select"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeArray    FieldType = "array"
	FieldTypeKeyValue FieldType = "keyvalue"
	FieldTypeJSON     FieldType = "json"
)

// FieldSchema describes one settable field of a command type: its wire name,
// widget, and the constraints carried in struct tags.
type FieldSchema struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	JSONName    string    `json:"json_name"`
}

// commandPrototypes maps public command type names to zero values for
// reflection. A type absent here cannot be built from the generic command
// endpoint or introspected.
var commandPrototypes = map[string]any{
	"ToolRunCommand":        &ToolRunCommand{},
	"SurfaceViewCommand":    &SurfaceViewCommand{},
	"SurfacePatchCommand":   &SurfacePatchCommand{},
	"ConsoleCommandMessage": &ConsoleCommandMessage{},
}

// GetCommandTypes lists the command type names, sorted.
func GetCommandTypes() []string {
	types := make([]string, 0, len(commandPrototypes))
	for name := range commandPrototypes {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// GetFieldSchemas reflects the field schemas of a command type, or nil when
// the type is unknown.
func GetFieldSchemas(messageType string) []FieldSchema {
	proto, ok := commandPrototypes[messageType]
	if !ok {
		return nil
	}
	return extractFieldSchemas(proto)
}

func extractFieldSchemas(v any) []FieldSchema {
	var schemas []FieldSchema
	t := reflect.TypeOf(v).Elem()
	for i := 0; i < t.NumField(); i++ {
		if fs, ok := fieldSchemaFor(t.Field(i)); ok {
			schemas = append(schemas, fs)
		}
	}
	return schemas
}

// fieldSchemaFor builds the schema for one struct field. Fields with no wire
// presence (subject-derived, json:"-") and the correlation id, which the
// server threads through on its own, report ok=false.
func fieldSchemaFor(f reflect.StructField) (FieldSchema, bool) {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" || tag == "correlation_id,omitempty" {
		return FieldSchema{}, false
	}

	fs := FieldSchema{
		Name:        f.Name,
		JSONName:    strings.Split(tag, ",")[0],
		Required:    f.Tag.Get("required") == "true",
		Placeholder: f.Tag.Get("placeholder"),
		Type:        widgetFor(f),
	}
	if fs.Type == FieldTypeSelect {
		if options := f.Tag.Get("options"); options != "" {
			fs.Options = strings.Split(options, ",")
		}
	}
	return fs, true
}

// widgetFor picks the widget: an explicit field_type tag wins, otherwise the
// Go kind decides.
func widgetFor(f reflect.StructField) FieldType {
	switch f.Tag.Get("field_type") {
	case "select":
		return FieldTypeSelect
	case "boolean":
		return FieldTypeBoolean
	case "json":
		return FieldTypeJSON
	}
	switch f.Type.Kind() {
	case reflect.Bool:
		return FieldTypeBoolean
	case reflect.Slice:
		return FieldTypeArray
	case reflect.Map:
		return FieldTypeKeyValue
	default:
		return FieldTypeString
	}
}
