package protocol

import (
	"time"

	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewStateData converts an arm snapshot.
func NewStateData(id string, s kinematics.State) StateData {
	return StateData{ID: id, Positions: s.Positions, Angles: s.Angles}
}

// NewResultData combines a solve result with the resulting arm state.
func NewResultData(r kinematics.Result, s kinematics.State) ResultData {
	return ResultData{
		Algorithm:  string(r.Algorithm),
		Outcome:    r.Outcome.String(),
		Converged:  r.Converged(),
		Iterations: r.Iterations,
		Distance:   r.Distance,
		ElapsedMs:  float64(r.Elapsed) / float64(time.Millisecond),
		Positions:  s.Positions,
		Angles:     s.Angles,
	}
}

// NewStateMessage creates a state message
func NewStateMessage(id string, s kinematics.State) (*Message, error) {
	return NewMessage(TypeState, NewStateData(id, s))
}

// NewResultMessage creates a result message
func NewResultMessage(r kinematics.Result, s kinematics.State) (*Message, error) {
	return NewMessage(TypeResult, NewResultData(r, s))
}

// NewErrorMessage creates an error message in reply to request
func NewErrorMessage(request MessageType, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Error: err.Error(), Request: request})
}

// NewControlMessage creates a joint control message
func NewControlMessage(joint int, delta float64) (*Message, error) {
	return NewMessage(TypeControl, ControlCommand{Joint: joint, Delta: delta})
}

// NewMoveToMessage creates a moveto message
func NewMoveToMessage(x, y float64, algorithm string) (*Message, error) {
	return NewMessage(TypeMoveTo, MoveToCommand{
		Target:    []float64{x, y},
		Algorithm: algorithm,
	})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResultData extracts a solve result from a message
func (m *Message) GetResultData() (*ResultData, error) {
	var data ResultData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetControlCommand extracts a joint control command from a message
func (m *Message) GetControlCommand() (*ControlCommand, error) {
	var data ControlCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMoveToCommand extracts a moveto command from a message
func (m *Message) GetMoveToCommand() (*MoveToCommand, error) {
	var data MoveToCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
