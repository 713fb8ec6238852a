package authfile

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed canonical.schema.json
var canonicalSchemaJSON []byte

var (
	schemaOnce      sync.Once
	canonicalSchema *jsonschema.Schema
	schemaErr       error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		canonicalSchema, schemaErr = compiler.Compile(canonicalSchemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return canonicalSchema, schemaErr
}

// ValidateCanonical checks that data has the canonical auth file shape.
func ValidateCanonical(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
