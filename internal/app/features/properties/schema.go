// internal/app/features/properties/schema.go
package properties

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

const draftSchemaURL = "schema/draft.json"

// compileDraftSchema compiles the embedded draft schema.
func compileDraftSchema() (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(draftSchemaURL)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(draftSchemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", draftSchemaURL, err)
	}
	return compiler.Compile(draftSchemaURL)
}

// decodeDraft checks body against the schema, then decodes it over the
// catalog defaults (active, public).
func decodeDraft(schema *jsonschema.Schema, body []byte) (models.Draft, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.Draft{}, &catalog.ValidationError{Fields: []models.FieldError{
			{Field: "body", Reason: "must be valid JSON"},
		}}
	}
	if err := schema.Validate(doc); err != nil {
		return models.Draft{}, schemaError(err)
	}

	d := models.NewDraft()
	if err := json.Unmarshal(body, &d); err != nil {
		return models.Draft{}, &catalog.ValidationError{Fields: []models.FieldError{
			{Field: "body", Reason: err.Error()},
		}}
	}
	return d, nil
}

// schemaError flattens a schema failure into field errors keyed like
// models.Validate ("images[2]").
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &catalog.ValidationError{Fields: []models.FieldError{{Field: "body", Reason: err.Error()}}}
	}

	seen := map[string]bool{}
	var fields []models.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			f := fieldName(e.InstanceLocation)
			key := f + "|" + e.Message
			if !seen[key] {
				seen[key] = true
				fields = append(fields, models.FieldError{Field: f, Reason: e.Message})
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &catalog.ValidationError{Fields: fields}
}

// fieldName turns a JSON pointer such as "/images/2" into "images[2]".
func fieldName(pointer string) string {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "body"
	}
	name := parts[0]
	for _, p := range parts[1:] {
		name += "[" + p + "]"
	}
	return name
}
