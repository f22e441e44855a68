package submission

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON Schema of Payload.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["form_title", "store_name", "submitted_at", "state", "total_price", "total_duration"],
  "properties": {
    "form_title": {"type": "string", "minLength": 1},
    "store_name": {"type": "string"},
    "submitted_at": {"type": "string", "format": "date-time"},
    "total_price": {"type": "integer", "minimum": 0},
    "total_duration": {"type": "integer", "minimum": 0},
    "state": {
      "type": "object",
      "required": ["name", "phone", "menu_id", "menu_name", "options", "date", "time", "alternates", "message"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "phone": {"type": "string", "minLength": 1},
        "gender": {"type": "string"},
        "visit_count": {"type": "string"},
        "coupon": {"type": "string"},
        "menu_id": {"type": "string", "minLength": 1},
        "menu_name": {"type": "string"},
        "submenu_id": {"type": "string"},
        "submenu_name": {"type": "string"},
        "options": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "name", "price"],
            "properties": {
              "id": {"type": "string"},
              "name": {"type": "string"},
              "price": {"type": "integer"}
            }
          }
        },
        "date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
        "time": {"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}$"},
        "alternates": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["date", "time"],
            "properties": {
              "date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
              "time": {"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}$"}
            }
          }
        },
        "message": {"type": "string"},
        "line_user_id": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// SchemaError lists the schema violations of a document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("payload does not match schema: %s", strings.Join(e.Problems, "; "))
}

// Validate checks a Payload value.
func Validate(p Payload) error {
	return validate(gojsonschema.NewGoLoader(p))
}

// ValidateJSON checks a raw request body.
func ValidateJSON(body []byte) error {
	return validate(gojsonschema.NewBytesLoader(body))
}

func validate(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &SchemaError{Problems: problems}
}
