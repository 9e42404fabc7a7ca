package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CheckFunc probes one dependency. Returning a non-nil error marks it unhealthy.
type CheckFunc func(ctx context.Context) error

// Recorder receives every status produced by a check run.
type Recorder func(component, status string)

type check struct {
	fn       CheckFunc
	critical bool
}

// Monitor runs registered dependency checks and keeps their latest statuses.
// Failures of non-critical checks are reported as degraded.
type Monitor struct {
	name     string
	timeout  time.Duration
	recorder Recorder

	mu       sync.RWMutex
	checks   map[string]check
	statuses map[string]Status
}

// NewMonitor creates a monitor for the named system. Each check is bounded by timeout.
func NewMonitor(name string, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Monitor{
		name:     name,
		timeout:  timeout,
		checks:   make(map[string]check),
		statuses: make(map[string]Status),
	}
}

// SetRecorder installs a callback invoked with each check result.
func (m *Monitor) SetRecorder(r Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = r
}

// Register adds or replaces a check. Critical failures make the system unhealthy.
func (m *Monitor) Register(component string, critical bool, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[component] = check{fn: fn, critical: critical}
}

// Update records a status for a component without running a check
func (m *Monitor) Update(component string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = component
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[component] = status
}

// Get retrieves the latest status for a component
func (m *Monitor) Get(component string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[component]
	return status, exists
}

// Check runs every registered check concurrently and returns the aggregate.
func (m *Monitor) Check(ctx context.Context) Status {
	m.mu.RLock()
	checks := make(map[string]check, len(m.checks))
	for name, c := range m.checks {
		checks[name] = c
	}
	recorder := m.recorder
	m.mu.RUnlock()

	var wg sync.WaitGroup
	results := make(chan Status, len(checks))
	for name, c := range checks {
		wg.Add(1)
		go func(name string, c check) {
			defer wg.Done()
			results <- m.run(ctx, name, c)
		}(name, c)
	}
	wg.Wait()
	close(results)

	for status := range results {
		m.Update(status.Component, status)
		if recorder != nil {
			recorder(status.Component, status.Status)
		}
	}

	return m.Aggregate()
}

func (m *Monitor) run(ctx context.Context, name string, c check) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := c.fn(ctx)

	status := FromError(name, err)
	if err != nil && !c.critical {
		status = NewDegraded(name, status.Message)
	}
	status.Latency = time.Since(start)
	return status
}

// Aggregate combines the latest statuses without running checks
func (m *Monitor) Aggregate() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.statuses))
	for name := range m.statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make([]Status, 0, len(names))
	for _, name := range names {
		subs = append(subs, m.statuses[name])
	}
	return Aggregate(m.name, subs)
}
