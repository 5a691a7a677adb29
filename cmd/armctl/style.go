package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// outcomeText colours an outcome by severity.
func outcomeText(o string) string {
	switch o {
	case kinematics.Converged.String():
		return okStyle.Render(o)
	case kinematics.MaxIterationsReached.String():
		return warnStyle.Render(o)
	default:
		return failStyle.Render(o)
	}
}

func formatPoint(p [2]float64) string {
	return fmt.Sprintf("(%.3f, %.3f)", p[0], p[1])
}

func formatAngles(angles []float64) string {
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = strconv.FormatFloat(a, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// parseTarget reads "x,y".
func parseTarget(s string) ([2]float64, error) {
	var out [2]float64
	parts := strings.Split(strings.Trim(s, "[]() "), ",")
	if len(parts) != 2 {
		return out, fmt.Errorf("target %q must be x,y", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("target %q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("target %q must be finite", s)
		}
		out[i] = v
	}
	return out, nil
}
