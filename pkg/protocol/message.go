// Package protocol defines the JSON messages exchanged with the arm service.
// The same types are used by the REST API, the WebSocket hub and armctl.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → Client messages
	TypeState  MessageType = "state"  // Arm positions and angles
	TypeResult MessageType = "result" // Outcome of a moveto
	TypeError  MessageType = "error"  // Command failed

	// Client → Server messages
	TypeControl MessageType = "control" // Move one joint by a delta
	TypeMoveTo  MessageType = "moveto"  // Solve for an end effector target

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// StateData is a snapshot of the arm. Angles are in degrees.
type StateData struct {
	ID        string       `json:"id,omitempty"`
	Positions [][2]float64 `json:"positions"`
	Angles    []float64    `json:"angles"`
}

// ResultData reports a finished solve and the arm state it left behind.
type ResultData struct {
	Algorithm  string       `json:"algorithm"`
	Outcome    string       `json:"outcome"`
	Converged  bool         `json:"converged"`
	Iterations int          `json:"iterations"`
	Distance   float64      `json:"distance"`
	ElapsedMs  float64      `json:"elapsed_ms"`
	Positions  [][2]float64 `json:"positions"`
	Angles     []float64    `json:"angles"`
}

// ErrorData describes a failed command.
type ErrorData struct {
	Error   string      `json:"error"`
	Request MessageType `json:"request,omitempty"`
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// ControlCommand moves one joint by Delta degrees.
type ControlCommand struct {
	Joint int     `json:"joint" validate:"gte=0"`
	Delta float64 `json:"delta"`
}

// MoveToCommand asks the arm to reach Target. Empty or zero fields use the
// service defaults.
type MoveToCommand struct {
	Target        []float64 `json:"target" validate:"required,len=2"`
	Algorithm     string    `json:"algorithm,omitempty"`
	MaxIterations int       `json:"max_iterations,omitempty" validate:"gte=0,lte=100000"`
	Tolerance     float64   `json:"tolerance,omitempty" validate:"gte=0"`
}

// InitRequest creates an arm. Angles and constraints are in degrees; a null
// constraint bound is unbounded.
type InitRequest struct {
	Links            []float64     `json:"links" validate:"required,min=1,dive,gte=0"`
	Angles           []float64     `json:"angles" validate:"required,min=1"`
	AngleConstraints [][2]*float64 `json:"angle_constraints" validate:"required,min=1"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
