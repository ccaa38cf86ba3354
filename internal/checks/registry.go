package checks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/moolen/troubleshooter/internal/warehouse"
)

// DefaultBindings maps the trigger labels of the knowledge graph to checks
func DefaultBindings() map[string]string {
	return map[string]string{
		"FNFM Uplink telemetry check":                StatusCheck,
		"FNFM LIN device check":                      StatusCheck,
		"FNFM CAN device check":                      StatusCheck,
		"FNFM Motor Error Status":                    MTErrStaFMCheck,
		"FNFM Solenoid PHM HALL Voltage":             LimitCheck,
		"FNFM Solenoid PHM Digital Voltage":          LimitCheck,
		"FNFM Solenoid PHM LIN Voltage ADC":          LimitCheck,
		"FNFM Master Controller Reference Voltage":   LimitCheck,
		"FNFM Master Controller Digital Voltage":     LimitCheck,
		"FNFM Master Controller Input Voltage":       LimitCheck,
		"FNFM Master Controller Core Voltage":        LimitCheck,
		"FNFM Master Controller EIP Core Voltage":    LimitCheck,
		"FNFM Master Controller EIP Digital Voltage": LimitCheck,
		"FNFM LVPS Digital Voltage":                  LimitCheck,
		"FNFM LVPS Positive Analog Voltage":          LimitCheck,
		"FNFM LVPS Negative Analog Voltage":          LimitCheck,
		"FNFM Small pump calibration check":          SmallPump,
		"FNFM Large pump calibration check":          LargePump,
	}
}

// Registry holds named checks and the trigger label bindings that select them
type Registry struct {
	mu       sync.RWMutex
	checks   map[string]Check
	bindings map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		checks:   map[string]Check{},
		bindings: map[string]string{},
	}
}

// NewStandardRegistry builds every built-in check for the dialect and binds
// the default trigger labels plus extra bindings. Extra bindings override
// defaults for the same label.
func NewStandardRegistry(dialect warehouse.Dialect, tables warehouse.Tables, extra map[string]string) (*Registry, error) {
	r := NewRegistry()
	for _, def := range Definitions() {
		check, err := Build(def, dialect, tables)
		if err != nil {
			return nil, err
		}
		r.Register(def.Name, check)
	}
	for trigger, name := range DefaultBindings() {
		if err := r.Bind(trigger, name); err != nil {
			return nil, err
		}
	}
	for trigger, name := range extra {
		if err := r.Bind(trigger, name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a named check
func (r *Registry) Register(name string, check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// Bind routes a trigger label to a registered check
func (r *Registry) Bind(trigger, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checks[name]; !ok {
		return fmt.Errorf("%w: %s (bound to %q)", ErrUnknownCheck, name, trigger)
	}
	r.bindings[trigger] = name
	return nil
}

// Lookup returns the check bound to a trigger label. ok is false for
// unmapped triggers.
func (r *Registry) Lookup(trigger string) (check Check, name string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok = r.bindings[trigger]
	if !ok {
		return nil, "", false
	}
	return r.checks[name], name, true
}

// Get returns a check by name
func (r *Registry) Get(name string) (Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	check, ok := r.checks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, name)
	}
	return check, nil
}

// Names returns the registered check names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings returns a copy of the trigger bindings
func (r *Registry) Bindings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.bindings))
	for k, v := range r.bindings {
		out[k] = v
	}
	return out
}
