package arm

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
	"github.com/teslashibe/go-planar-arm/pkg/metrics"
)

// Spec describes an arm to build. Angles and limits are in degrees.
type Spec struct {
	Links  []float64
	Angles []float64
	Limits []kinematics.Limit
}

// Build constructs the arm described by s.
func (s Spec) Build() (*kinematics.Arm, error) {
	return kinematics.New(s.Links, s.Angles, s.Limits)
}

// DefaultSpec is the reference arm: a rotation point followed by links of
// 4, 3, 2 and 1 with a fixed last joint.
func DefaultSpec() Spec {
	return Spec{
		Links:  []float64{0, 4, 3, 2, 1},
		Angles: []float64{45, -90, 45, 20, 0},
		Limits: []kinematics.Limit{
			{Min: 0, Max: 180},
			{Min: -120, Max: 120},
			{Min: -120, Max: 120},
			{Min: -120, Max: 120},
			kinematics.Fixed(0),
		},
	}
}

// Manager owns the lifecycle of the service's current arm.
// At most one arm exists at a time; it is created with Init and discarded
// with Reset. Observers registered on the Manager follow every arm it creates.
type Manager struct {
	mu   sync.RWMutex
	ctrl *Controller
	id   string

	defaults Spec
	opts     Options

	obsMu     sync.RWMutex
	observers []func(id string, state kinematics.State)

	log *slog.Logger
}

// NewManager creates a manager with no arm loaded.
// defaults is used by InitDefault; opts is applied to every controller.
func NewManager(defaults Spec, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.For("controller")
	}
	return &Manager{
		defaults: defaults,
		opts:     opts,
		log:      log.For("manager"),
	}
}

// Init builds an arm from spec. It fails with ErrAlreadyInitialized when an
// arm is loaded, or with a *kinematics.ConstructionError for a bad spec.
func (m *Manager) Init(spec Spec) (*Controller, error) {
	m.mu.Lock()
	if m.ctrl != nil {
		m.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}

	a, err := spec.Build()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	ctrl, err := NewController(a, m.opts)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	id := uuid.NewString()
	ctrl.OnChange(func(s kinematics.State) { m.notify(id, s) })
	m.ctrl = ctrl
	m.id = id
	m.mu.Unlock()

	metrics.SetArmInitialized(true)
	m.log.Info("arm initialized", "id", id, "joints", a.Joints(), "reach", a.Reach())
	ctrl.publish()
	return ctrl, nil
}

// InitDefault builds the default arm.
func (m *Manager) InitDefault() (*Controller, error) {
	return m.Init(m.defaults)
}

// Reset discards the current arm.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctrl == nil {
		return ErrNotInitialized
	}
	m.log.Info("arm discarded", "id", m.id)
	m.ctrl = nil
	m.id = ""
	metrics.SetArmInitialized(false)
	return nil
}

// Controller returns the current controller and its arm ID.
func (m *Manager) Controller() (*Controller, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ctrl == nil {
		return nil, "", ErrNotInitialized
	}
	return m.ctrl, m.id, nil
}

// Defaults returns the spec used by InitDefault.
func (m *Manager) Defaults() Spec {
	return m.defaults
}

// OnChange registers fn for state changes of any arm this manager creates.
func (m *Manager) OnChange(fn func(id string, state kinematics.State)) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

func (m *Manager) notify(id string, state kinematics.State) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, fn := range m.observers {
		fn(id, state)
	}
}
