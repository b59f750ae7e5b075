package helpers

import "context"

// Call records one invocation passed through the mock, so tests can
// assert how many processes a reconciliation would have spawned
type Call struct {
	Name string
	Args []string
}

// MockCommandRunner is a mock implementation of CommandRunner for testing
type MockCommandRunner struct {
	LookPathFunc func(name string) (string, error)
	RunFunc      func(ctx context.Context, name string, args ...string) (Result, error)

	// Calls accumulates every Run invocation in order
	Calls []Call
}

// LookPath implements CommandRunner.LookPath
func (m *MockCommandRunner) LookPath(name string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(name)
	}
	return name, nil
}

// Run implements CommandRunner.Run
func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	m.Calls = append(m.Calls, Call{Name: name, Args: args})
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return Result{}, nil
}

// CallsFor returns the recorded calls whose executable matches name
func (m *MockCommandRunner) CallsFor(name string) []Call {
	var out []Call
	for _, c := range m.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
