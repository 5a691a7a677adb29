package web

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

// AlgorithmInfo describes a solver and its defaults.
type AlgorithmInfo struct {
	Name          kinematics.Algorithm `json:"name"`
	MaxIterations int                  `json:"max_iterations"`
	Tolerance     float64              `json:"tolerance"`
	Default       bool                 `json:"default"`
}

func (s *Server) handleHome(c *fiber.Ctx) error {
	return c.SendString("Connection Successful")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	_, id, err := s.arms.Controller()
	return c.JSON(fiber.Map{
		"status":      "ok",
		"initialized": err == nil,
		"arm_id":      id,
		"clients":     s.stateHub.ClientCount(),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
	})
}

// handleAlgorithms lists the solvers and their default budgets
func (s *Server) handleAlgorithms(c *fiber.Ctx) error {
	def := kinematics.DefaultAlgorithm
	if ctrl, _, err := s.arms.Controller(); err == nil {
		def = ctrl.Algorithm()
	}

	out := make([]AlgorithmInfo, 0, len(kinematics.Algorithms()))
	for _, alg := range kinematics.Algorithms() {
		solver, err := kinematics.NewSolver(alg)
		if err != nil {
			return err
		}
		d := solver.Defaults()
		out = append(out, AlgorithmInfo{
			Name:          alg,
			MaxIterations: d.MaxIterations,
			Tolerance:     d.Tolerance,
			Default:       alg == def,
		})
	}
	return c.JSON(out)
}

// handleInitDefault creates the configured default arm
func (s *Server) handleInitDefault(c *fiber.Ctx) error {
	ctrl, err := s.arms.InitDefault()
	if err != nil {
		return err
	}
	return s.sendState(c, ctrl)
}

// handleInit creates an arm from a JSON body
func (s *Server) handleInit(c *fiber.Ctx) error {
	var req protocol.InitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	limits := make([]kinematics.Limit, len(req.AngleConstraints))
	for i, bounds := range req.AngleConstraints {
		limits[i] = kinematics.Unconstrained()
		if bounds[0] != nil {
			limits[i].Min = *bounds[0]
		}
		if bounds[1] != nil {
			limits[i].Max = *bounds[1]
		}
	}

	ctrl, err := s.arms.Init(arm.Spec{Links: req.Links, Angles: req.Angles, Limits: limits})
	if err != nil {
		return err
	}
	return s.sendState(c, ctrl)
}

// handleReset discards the current arm
func (s *Server) handleReset(c *fiber.Ctx) error {
	if err := s.arms.Reset(); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handlePosition returns joint positions and angles
func (s *Server) handlePosition(c *fiber.Ctx) error {
	ctrl, _, err := s.arms.Controller()
	if err != nil {
		return err
	}
	return s.sendState(c, ctrl)
}

// handleControl moves one joint by a delta in degrees
func (s *Server) handleControl(c *fiber.Ctx) error {
	ctrl, _, err := s.arms.Controller()
	if err != nil {
		return err
	}

	joint, err := c.ParamsInt("joint")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid joint: "+c.Params("joint"))
	}
	delta, err := strconv.ParseFloat(c.Params("delta"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid delta: "+c.Params("delta"))
	}

	if err := ctrl.ChangeJoint(joint, delta); err != nil {
		return err
	}
	return s.sendState(c, ctrl)
}

// handleMoveTo solves for a target given as a JSON body, or as ?target=x,y
func (s *Server) handleMoveTo(c *fiber.Ctx) error {
	var cmd protocol.MoveToCommand
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&cmd); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
	}
	if len(cmd.Target) == 0 {
		target, ok := parseTarget(c.Query("target"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, msgNoTarget)
		}
		cmd.Target = target
		cmd.Algorithm = c.Query("algorithm", cmd.Algorithm)
	}
	if err := s.validate.Struct(cmd); err != nil {
		return err
	}

	ctrl, _, err := s.arms.Controller()
	if err != nil {
		return err
	}
	res, state, err := moveTo(ctrl, &cmd)
	if err != nil {
		return err
	}
	return c.JSON(protocol.NewResultData(res, state))
}

func (s *Server) sendState(c *fiber.Ctx, ctrl *arm.Controller) error {
	_, id, _ := s.arms.Controller()
	return c.JSON(protocol.NewStateData(id, ctrl.State()))
}

// moveTo runs a validated command against ctrl.
func moveTo(ctrl *arm.Controller, cmd *protocol.MoveToCommand) (kinematics.Result, kinematics.State, error) {
	var alg kinematics.Algorithm
	if cmd.Algorithm != "" {
		var err error
		if alg, err = kinematics.ParseAlgorithm(cmd.Algorithm); err != nil {
			return kinematics.Result{}, kinematics.State{}, err
		}
	}
	target := r2.Vec{X: cmd.Target[0], Y: cmd.Target[1]}
	res, err := ctrl.MoveToWith(target, alg, kinematics.Params{
		MaxIterations: cmd.MaxIterations,
		Tolerance:     cmd.Tolerance,
	})
	if err != nil {
		return kinematics.Result{}, kinematics.State{}, err
	}
	return res, ctrl.State(), nil
}

// parseTarget reads "x,y". NaN and infinite coordinates are rejected.
func parseTarget(s string) ([]float64, bool) {
	parts := strings.Split(strings.Trim(s, "[]() "), ",")
	if len(parts) != 2 {
		return nil, false
	}
	out := make([]float64, 2)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
