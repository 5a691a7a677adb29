package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

func TestCommandWithoutArm(t *testing.T) {
	s := newTestServer(t)

	msg, err := protocol.NewControlMessage(1, 10)
	require.NoError(t, err)
	reply := s.handleCommand(msg)
	require.Equal(t, protocol.TypeError, reply.Type)

	data, err := reply.GetErrorData()
	require.NoError(t, err)
	assert.Equal(t, "Arm has not been initialized", data.Error)
	assert.Equal(t, protocol.TypeControl, data.Request)
}

func TestCommandControlAndMoveTo(t *testing.T) {
	s := newTestServer(t)
	_, err := s.arms.InitDefault()
	require.NoError(t, err)

	msg, err := protocol.NewControlMessage(1, 10)
	require.NoError(t, err)
	reply := s.handleCommand(msg)
	require.Equal(t, protocol.TypeState, reply.Type)
	state, err := reply.GetStateData()
	require.NoError(t, err)
	assert.InDelta(t, -80, state.Angles[1], 1e-9)

	msg, err = protocol.NewControlMessage(4, 10)
	require.NoError(t, err)
	reply = s.handleCommand(msg)
	require.Equal(t, protocol.TypeError, reply.Type)
	errData, err := reply.GetErrorData()
	require.NoError(t, err)
	assert.Equal(t, "Violated joint constraints", errData.Error)

	msg, err = protocol.NewMoveToMessage(1, 8, "sgd")
	require.NoError(t, err)
	reply = s.handleCommand(msg)
	require.Equal(t, protocol.TypeResult, reply.Type)
	res, err := reply.GetResultData()
	require.NoError(t, err)
	assert.Equal(t, "gradient_descent", res.Algorithm)
	assert.Len(t, res.Positions, 6)
}

func TestCommandPingAndUnknown(t *testing.T) {
	s := newTestServer(t)

	ping, err := protocol.NewPingMessage("abc")
	require.NoError(t, err)
	reply := s.handleCommand(ping)
	require.Equal(t, protocol.TypePong, reply.Type)

	reply = s.handleCommand(&protocol.Message{Type: protocol.TypeState})
	assert.Equal(t, protocol.TypeError, reply.Type)

	reply = s.handleCommand(&protocol.Message{Type: protocol.TypeMoveTo, Data: []byte(`{}`)})
	require.Equal(t, protocol.TypeError, reply.Type)
	data, err := reply.GetErrorData()
	require.NoError(t, err)
	assert.Equal(t, "No target provided", data.Error)
}
