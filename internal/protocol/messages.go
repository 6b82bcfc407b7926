package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeToolCall    MessageType = "tool_call"
	TypePing        MessageType = "ping"
	TypeToolResult  MessageType = "tool_result"
	TypePong        MessageType = "pong"
	TypeSystemEvent MessageType = "system_event"
	TypeErrorEvent  MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type ToolCall struct {
	Type      MessageType     `json:"type"`
	CallID    string          `json:"call_id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type Ping struct {
	Type   MessageType `json:"type"`
	CallID string      `json:"call_id,omitempty"`
}

type ToolResult struct {
	Type   MessageType `json:"type"`
	CallID string      `json:"call_id"`
	Name   string      `json:"name"`
	Result any         `json:"result"`
}

type Pong struct {
	Type   MessageType `json:"type"`
	CallID string      `json:"call_id,omitempty"`
}

type SystemEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	CallID    string      `json:"call_id,omitempty"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func NewToolResult(callID, name string, result any) ToolResult {
	return ToolResult{Type: TypeToolResult, CallID: callID, Name: name, Result: result}
}

func NewErrorEvent(callID, code, detail string, retryable bool) ErrorEvent {
	return ErrorEvent{Type: TypeErrorEvent, CallID: callID, Code: code, Retryable: retryable, Detail: detail}
}

// ParseClientMessage decodes one client frame into ToolCall or Ping.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeToolCall:
		var msg ToolCall
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Name == "" {
			return nil, errors.New("invalid tool_call: name is required")
		}
		if args := bytes.TrimSpace(msg.Arguments); len(args) > 0 && args[0] != '{' && !bytes.Equal(args, []byte("null")) {
			return nil, errors.New("invalid tool_call: arguments must be an object")
		}
		return msg, nil
	case TypePing:
		var msg Ping
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, env.Type)
	}
}
