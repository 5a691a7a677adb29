// Package metrics exposes Prometheus collectors for the arm service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planar_arm"

var (
	// solvesTotal counts completed solves.
	// Labels: algorithm, outcome (converged, max_iterations_reached, diverged)
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ik",
		Name:      "solves_total",
		Help:      "Inverse kinematics solves by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ik",
		Name:      "solve_duration_seconds",
		Help:      "Wall time of a single solve",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
	}, []string{"algorithm"})

	solveIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ik",
		Name:      "solve_iterations",
		Help:      "Iterations spent per solve",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 1500},
	}, []string{"algorithm"})

	// residualDistance is the end effector error left after a solve.
	residualDistance = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ik",
		Name:      "residual_distance",
		Help:      "Distance from end effector to target after a solve",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"algorithm"})

	// jointCommands counts manual joint commands.
	// Labels: result (applied, rejected, invalid)
	jointCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "control",
		Name:      "joint_commands_total",
		Help:      "Manual joint commands by result",
	}, []string{"result"})

	armInitialized = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "control",
		Name:      "arm_initialized",
		Help:      "1 when an arm is loaded, 0 otherwise",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "clients",
		Help:      "Connected WebSocket clients",
	})

	wsBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "broadcasts_total",
		Help:      "State broadcasts sent to WebSocket clients",
	})
)

// Joint command results.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
)

// RecordSolve records one finished solve.
func RecordSolve(algorithm, outcome string, iterations int, distance float64, elapsed time.Duration) {
	solvesTotal.WithLabelValues(algorithm, outcome).Inc()
	solveDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	solveIterations.WithLabelValues(algorithm).Observe(float64(iterations))
	residualDistance.WithLabelValues(algorithm).Observe(distance)
}

// RecordJointCommand counts a manual joint command by result.
func RecordJointCommand(result string) {
	jointCommands.WithLabelValues(result).Inc()
}

// SetArmInitialized flips the arm_initialized gauge.
func SetArmInitialized(ok bool) {
	if ok {
		armInitialized.Set(1)
		return
	}
	armInitialized.Set(0)
}

// ClientConnected and ClientDisconnected track the WebSocket client gauge.
func ClientConnected()    { wsClients.Inc() }
func ClientDisconnected() { wsClients.Dec() }

// RecordBroadcast counts one state broadcast.
func RecordBroadcast() { wsBroadcasts.Inc() }
