package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schemas for the two structured reply shapes agents must produce. Replies
// are validated before decoding so malformed model output is rejected with a
// precise reason instead of silently dropping fields.

var ordersSchema = jsonschema.MustCompileString("orders.json", `{
	"type": "object",
	"required": ["orders"],
	"properties": {
		"orders": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	}
}`)

var messageSchema = jsonschema.MustCompileString("message.json", `{
	"type": "object",
	"required": ["message_type", "content"],
	"properties": {
		"message_type": {"enum": ["private", "global"]},
		"recipient": {"type": "string"},
		"content": {"type": "string", "minLength": 1}
	},
	"if": {"properties": {"message_type": {"const": "private"}}},
	"then": {"required": ["message_type", "content", "recipient"]}
}`)

// ValidateOrders checks a raw JSON orders reply against the schema.
func ValidateOrders(raw string) error {
	return validate(ordersSchema, raw)
}

// ValidateMessage checks a raw JSON message reply against the schema.
func ValidateMessage(raw string) error {
	return validate(messageSchema, raw)
}

func validate(schema *jsonschema.Schema, raw string) error {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return schema.Validate(doc)
}
