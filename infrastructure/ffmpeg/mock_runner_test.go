package ffmpeg

import (
	"context"
	"strings"
)

type runCall struct {
	name string
	args []string
}

// mockRunner records calls and serves canned output keyed by the joined arguments
type mockRunner struct {
	runs    []runCall
	outputs []runCall
	runFn   func(name string, args []string) error
	output  map[string]string
	outErr  map[string]error
}

func newMockRunner() *mockRunner {
	return &mockRunner{
		output: make(map[string]string),
		outErr: make(map[string]error),
	}
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.runs = append(m.runs, runCall{name: name, args: args})
	if m.runFn != nil {
		return m.runFn(name, args)
	}
	return nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.outputs = append(m.outputs, runCall{name: name, args: args})
	key := strings.Join(args, " ")
	if err, ok := m.outErr[key]; ok {
		return nil, err
	}
	return []byte(m.output[key]), nil
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
