package pipeline

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema checks the shape of a batch document. Values are left to
// the Akeyless API; only types and the presence of "operation" are enforced.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "record": {
      "type": "object",
      "required": ["operation"],
      "properties": {
        "operation": {"type": "string", "minLength": 1},
        "secretName": {"type": "string"},
        "accessibility": {"type": "string"},
        "ignoreCache": {"type": "boolean"},
        "timeout": {"type": "integer", "minimum": 0},
        "secretValue": {"type": "string"},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "format": {"type": "string"},
        "secretType": {"type": "string"},
        "secureAccessWebBrowsing": {"type": "boolean"},
        "secureAccessWebProxy": {"type": "boolean"},
        "path": {"type": "string"},
        "folderName": {"type": "string"},
        "folderAccessibility": {"type": "string"},
        "additionalFields": {
          "type": "object",
          "properties": {
            "timeout": {"type": "integer", "minimum": 0}
          }
        }
      }
    },
    "records": {
      "type": "array",
      "items": {"$ref": "#/definitions/record"}
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/records"},
    {
      "type": "object",
      "required": ["records"],
      "properties": {
        "records": {"$ref": "#/definitions/records"}
      }
    }
  ]
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// ValidateDocument checks a JSON batch document against the record schema.
func ValidateDocument(jsonData []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("batch document validation failed:\n  - %s", strings.Join(errorMessages, "\n  - "))
	}

	return nil
}
