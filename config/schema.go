package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Hamza-spc/CountryCompare/errors"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Schema returns the JSON Schema configuration files are checked against.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// validateSchema checks a JSON document against the embedded schema and
// reports every violation in one error.
func validateSchema(document []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return errors.WrapInvalid(err, "Config", "validateSchema", "run schema validation")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "validateSchema", strings.Join(msgs, "; "))
}
