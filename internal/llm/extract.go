package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in a reply.
var ErrNoJSON = errors.New("llm: no JSON object in reply")

// ExtractJSON locates the JSON object inside a free-text model reply.
// Fenced ```json blocks win; otherwise the first balanced top-level object
// is taken. The returned text is repaired but not validated.
func ExtractJSON(text string) (string, error) {
	if block, ok := fencedBlock(text); ok {
		if obj, ok := balancedObject(block); ok {
			return repairJSON(obj), nil
		}
	}
	if obj, ok := balancedObject(text); ok {
		return repairJSON(obj), nil
	}
	return "", ErrNoJSON
}

// fencedBlock returns the contents of the first ```json or ``` fence.
func fencedBlock(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		rest := text[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return rest[:end], true
	}
	return "", false
}

// balancedObject scans for the first top-level {...} with balanced braces,
// ignoring braces inside string literals.
func balancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON fixes the recoverable defects models produce: smart quotes and
// trailing commas before a closing brace or bracket.
func repairJSON(raw string) string {
	r := strings.NewReplacer(
		"“", `"`, "”", `"`, // curly double quotes
		"‘", "'", "’", "'", // curly single quotes
	)
	raw = r.Replace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == ',' {
			// Drop the comma if the next non-space byte closes a container.
			j := i + 1
			for j < len(raw) && (raw[j] == ' ' || raw[j] == '\n' || raw[j] == '\t' || raw[j] == '\r') {
				j++
			}
			if j < len(raw) && (raw[j] == '}' || raw[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// OrdersReply is the structured order payload agents must produce.
type OrdersReply struct {
	Orders []string `json:"orders"`
}

// ParseOrders recovers and validates an orders reply from free text.
func ParseOrders(text string) (*OrdersReply, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := ValidateOrders(raw); err != nil {
		return nil, fmt.Errorf("orders reply schema: %w", err)
	}
	var reply OrdersReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decode orders reply: %w", err)
	}
	return &reply, nil
}

// MessageReply is the structured negotiation-message payload.
type MessageReply struct {
	MessageType string `json:"message_type"` // "private" or "global"
	Recipient   string `json:"recipient,omitempty"`
	Content     string `json:"content"`
}

// ParseMessage recovers and validates a negotiation message from free text.
func ParseMessage(text string) (*MessageReply, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := ValidateMessage(raw); err != nil {
		return nil, fmt.Errorf("message reply schema: %w", err)
	}
	var reply MessageReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decode message reply: %w", err)
	}
	return &reply, nil
}
