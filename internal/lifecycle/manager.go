package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moolen/troubleshooter/internal/logging"
)

// Manager starts registered components after their dependencies and stops
// them in reverse start order. A failed start rolls back what already started.
type Manager struct {
	mu              sync.Mutex
	components      []Component
	deps            map[Component][]Component
	started         []Component
	shutdownTimeout time.Duration
	logger          *logging.Logger
}

// NewManager creates a manager with a 30 second per-component shutdown timeout
func NewManager() *Manager {
	return &Manager{
		deps:            map[Component][]Component{},
		shutdownTimeout: 30 * time.Second,
		logger:          logging.GetLogger("lifecycle.manager"),
	}
}

// Register adds a component. Dependencies must already be registered, which
// also rules out cycles.
func (m *Manager) Register(component Component, dependsOn ...Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if component == nil {
		return errors.New("cannot register nil component")
	}
	if component.Name() == "" {
		return errors.New("component must have a non-empty name")
	}
	if m.registered(component) {
		return fmt.Errorf("component %s is already registered", component.Name())
	}
	for _, dep := range dependsOn {
		if dep == nil || !m.registered(dep) {
			return fmt.Errorf("dependency of %s is not registered", component.Name())
		}
	}

	m.components = append(m.components, component)
	m.deps[component] = dependsOn
	m.logger.Debug("Registered component %s with %d dependencies", component.Name(), len(dependsOn))
	return nil
}

func (m *Manager) registered(c Component) bool {
	_, ok := m.deps[c]
	return ok
}

// order returns components with every dependency ahead of its dependents
func (m *Manager) order() []Component {
	done := map[Component]bool{}
	var out []Component
	var visit func(Component)
	visit = func(c Component) {
		if done[c] {
			return
		}
		done[c] = true
		for _, dep := range m.deps[c] {
			visit(dep)
		}
		out = append(out, c)
	}
	for _, c := range m.components {
		visit(c)
	}
	return out
}

// Start starts every component. On failure the components already started
// are stopped in reverse order and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = nil
	for _, c := range m.order() {
		begin := time.Now()
		if err := c.Start(ctx); err != nil {
			m.logger.Error("Failed to start %s: %v", c.Name(), err)
			m.stopStarted(context.Background(), 5*time.Second)
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
		m.started = append(m.started, c)
		m.logger.Debug("%s started (took %dms)", c.Name(), time.Since(begin).Milliseconds())
	}
	m.logger.Info("Started %d components", len(m.started))
	return nil
}

// Stop stops started components in reverse order. Each gets its own timeout;
// errors are logged and joined.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopStarted(ctx, m.shutdownTimeout)
}

func (m *Manager) stopStarted(ctx context.Context, timeout time.Duration) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		c := m.started[i]
		stopCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Stop(stopCtx)
		cancel()

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			m.logger.Warn("%s exceeded its %s shutdown timeout", c.Name(), timeout)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		case err != nil:
			m.logger.Error("Error stopping %s: %v", c.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		default:
			m.logger.Debug("%s stopped", c.Name())
		}
	}
	m.started = nil
	return errors.Join(errs...)
}

// Running reports whether every registered component has started
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.components) > 0 && len(m.started) == len(m.components)
}

// SetShutdownTimeout sets the per-component grace period
func (m *Manager) SetShutdownTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = timeout
}
