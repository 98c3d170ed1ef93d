package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const inboundSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "action": {"type": "string"},
    "payload": {"type": "object"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "action"}}},
      "then": {"required": ["action"]}
    },
    {
      "if": {"properties": {"type": {"enum": ["menu_create", "menu_update", "menu_destroy"]}}},
      "then": {"required": ["payload"], "properties": {"payload": {"$ref": "#/$defs/menu"}}}
    },
    {
      "if": {"properties": {"type": {"enum": ["button_create", "button_update", "button_destroy"]}}},
      "then": {"required": ["payload"], "properties": {"payload": {"$ref": "#/$defs/button"}}}
    }
  ],
  "$defs": {
    "id": {"type": ["string", "number"]},
    "text": {
      "anyOf": [
        {"type": ["string", "number", "boolean", "null"]},
        {"type": "array", "items": {"type": ["string", "number", "boolean", "null"]}}
      ]
    },
    "menu": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "open": {"type": ["boolean", "null"]},
        "buttons": {"type": ["array", "null"], "items": {"$ref": "#/$defs/id"}},
        "index": {"type": ["integer", "null"]},
        "top": {"type": ["integer", "null"]},
        "windowLength": {"type": ["integer", "null"]}
      }
    },
    "button": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "text": {"$ref": "#/$defs/text"},
        "desc": {"$ref": "#/$defs/text"},
        "textTemplate": {"type": ["string", "null"]},
        "descTemplate": {"type": ["string", "null"]},
        "check": {"type": ["boolean", "null"]},
        "list": {
          "anyOf": [
            {"type": "null"},
            {"type": "array", "items": {"type": ["string", "number", "boolean"]}}
          ]
        },
        "listIndex": {"type": ["integer", "null"]}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("inbound.json", inboundSchema)

func validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return schema.Validate(doc)
}
