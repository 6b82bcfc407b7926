package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClientMessageToolCall(t *testing.T) {
	raw := []byte(`{"type":"tool_call","call_id":"c1","name":"adjust_dose","arguments":{"new_dose":120}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	call, ok := msg.(ToolCall)
	if !ok {
		t.Fatalf("message type = %T, want ToolCall", msg)
	}
	if call.CallID != "c1" || call.Name != "adjust_dose" {
		t.Fatalf("unexpected tool call: %+v", call)
	}
	if string(call.Arguments) != `{"new_dose":120}` {
		t.Fatalf("Arguments = %s", call.Arguments)
	}
}

func TestParseClientMessageToolCallWithoutArguments(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"tool_call","call_id":"c2","name":"session_status"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if call := msg.(ToolCall); len(call.Arguments) != 0 {
		t.Fatalf("Arguments = %s, want empty", call.Arguments)
	}
}

func TestParseClientMessageRejectsInvalidToolCall(t *testing.T) {
	for _, raw := range []string{
		`{"type":"tool_call","call_id":"c1"}`,
		`{"type":"tool_call","name":"adjust_dose","arguments":[1,2]}`,
		`{"type":"tool_call","name":"adjust_dose","arguments":"x"}`,
	} {
		if _, err := ParseClientMessage([]byte(raw)); err == nil {
			t.Fatalf("ParseClientMessage(%s) error = nil, want error", raw)
		}
	}
}

func TestParseClientMessagePing(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"ping","call_id":"p1"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if ping, ok := msg.(Ping); !ok || ping.CallID != "p1" {
		t.Fatalf("message = %#v, want Ping p1", msg)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsGarbage(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Fatal("ParseClientMessage() error = nil, want error")
	}
}

func TestServerMessagesCarryType(t *testing.T) {
	raw, err := json.Marshal(NewToolResult("c1", "session_status", map[string]any{"dose": 100}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if env.Type != TypeToolResult {
		t.Fatalf("Type = %q, want %q", env.Type, TypeToolResult)
	}

	if ev := NewErrorEvent("c1", "unknown_tool", "nope", false); ev.Type != TypeErrorEvent {
		t.Fatalf("Type = %q, want %q", ev.Type, TypeErrorEvent)
	}
}
