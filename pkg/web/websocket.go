package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-planar-arm/pkg/hub"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

// errUnsupported is returned for message types the hub does not accept.
var errUnsupported = errors.New("unsupported message type")

// handleStateWS streams arm state and accepts control and moveto commands
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)
	if client == nil {
		return
	}

	if ctrl, id, err := s.arms.Controller(); err == nil {
		if msg, err := protocol.NewStateMessage(id, ctrl.State()); err == nil {
			client.SendMessage(msg)
		}
	}

	client.Run()
}

// handleCommand serves messages received on /ws/state.
func (s *Server) handleCommand(msg *protocol.Message) *protocol.Message {
	reply, err := s.command(msg)
	if err != nil {
		_, text := errorBody(err)
		out, _ := protocol.NewErrorMessage(msg.Type, errors.New(text))
		return out
	}
	return reply
}

func (s *Server) command(msg *protocol.Message) (*protocol.Message, error) {
	switch msg.Type {
	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return nil, err
		}
		return protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())

	case protocol.TypeControl:
		cmd, err := msg.GetControlCommand()
		if err != nil {
			return nil, err
		}
		if err := s.validate.Struct(cmd); err != nil {
			return nil, err
		}
		ctrl, id, err := s.arms.Controller()
		if err != nil {
			return nil, err
		}
		if err := ctrl.ChangeJoint(cmd.Joint, cmd.Delta); err != nil {
			return nil, err
		}
		return protocol.NewStateMessage(id, ctrl.State())

	case protocol.TypeMoveTo:
		cmd, err := msg.GetMoveToCommand()
		if err != nil {
			return nil, err
		}
		if len(cmd.Target) == 0 {
			return nil, errors.New(msgNoTarget)
		}
		if err := s.validate.Struct(cmd); err != nil {
			return nil, err
		}
		ctrl, _, err := s.arms.Controller()
		if err != nil {
			return nil, err
		}
		res, state, err := moveTo(ctrl, cmd)
		if err != nil {
			return nil, err
		}
		return protocol.NewResultMessage(res, state)

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupported, msg.Type)
	}
}
