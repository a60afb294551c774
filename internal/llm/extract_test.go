package llm

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	text := "Here are my orders.\n```json\n{\"orders\": [\"A PAR - BUR\"]}\n```\nGood luck!"
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if !strings.Contains(got, `"A PAR - BUR"`) {
		t.Errorf("extracted = %q", got)
	}
}

func TestExtractJSONBareObject(t *testing.T) {
	text := `I will submit {"orders": ["F BRE - MAO", "A MAR H"]} this turn.`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if got != `{"orders": ["F BRE - MAO", "A MAR H"]}` {
		t.Errorf("extracted = %q", got)
	}
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	text := `{"content": "I propose {joint action} against Turkey"}`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if got != text {
		t.Errorf("extracted = %q, want whole object", got)
	}
}

func TestExtractJSONRepairsTrailingCommas(t *testing.T) {
	text := "```json\n{\"orders\": [\"A PAR H\",],}\n```"
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if strings.Contains(got, ",]") || strings.Contains(got, ",}") {
		t.Errorf("trailing commas not repaired: %q", got)
	}
}

func TestExtractJSONRepairsSmartQuotes(t *testing.T) {
	text := `{“orders”: [“A PAR H”]}`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if strings.ContainsAny(got, "“”") {
		t.Errorf("smart quotes not repaired: %q", got)
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	if _, err := ExtractJSON("I refuse to answer in JSON."); err == nil {
		t.Error("expected ErrNoJSON")
	}
}

func TestParseOrders(t *testing.T) {
	text := "My plan:\n```json\n{\"orders\": [\"A PAR - BUR\", \"F BRE - MAO\",]}\n```"
	reply, err := ParseOrders(text)
	if err != nil {
		t.Fatalf("ParseOrders: %v", err)
	}
	want := []string{"A PAR - BUR", "F BRE - MAO"}
	if !reflect.DeepEqual(reply.Orders, want) {
		t.Errorf("orders = %v, want %v", reply.Orders, want)
	}
}

func TestParseOrdersRejectsWrongShape(t *testing.T) {
	if _, err := ParseOrders(`{"moves": ["A PAR H"]}`); err == nil {
		t.Error("expected schema rejection for missing orders field")
	}
	if _, err := ParseOrders(`{"orders": [1, 2]}`); err == nil {
		t.Error("expected schema rejection for non-string orders")
	}
}

func TestParseMessage(t *testing.T) {
	text := `{"message_type": "private", "recipient": "GERMANY", "content": "Shall we split Belgium?"}`
	reply, err := ParseMessage(text)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if reply.Recipient != "GERMANY" || reply.MessageType != "private" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestParseMessagePrivateRequiresRecipient(t *testing.T) {
	if _, err := ParseMessage(`{"message_type": "private", "content": "hello"}`); err == nil {
		t.Error("expected schema rejection for private message without recipient")
	}
}

func TestParseMessageGlobal(t *testing.T) {
	reply, err := ParseMessage(`{"message_type": "global", "content": "Peace in the west."}`)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if reply.Recipient != "" {
		t.Errorf("recipient = %q, want empty for global", reply.Recipient)
	}
}
