package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema describes the interaction snapshot document: an array of
// records. Per-record vector dimensionality is deliberately not enforced
// here; wrong-dimension vectors are a data-quality condition handled by
// the preprocessor, while a malformed document is a fatal input error.
const snapshotSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"vector": {
				"type": "array",
				"items": {"type": "number"}
			},
			"weight": {"type": "number"},
			"interactionType": {"type": "string"}
		},
		"additionalProperties": true
	}
}`

var compiledSnapshotSchema = gojsonschema.NewStringLoader(snapshotSchema)

// ValidateSnapshot checks a raw snapshot document against the schema.
// A non-nil error is the fatal InputReadError class: the caller must not
// write any output.
func ValidateSnapshot(document []byte) error {
	result, err := gojsonschema.Validate(compiledSnapshotSchema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("unreadable snapshot document: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("invalid snapshot document: %s", strings.Join(details, "; "))
	}
	return nil
}
