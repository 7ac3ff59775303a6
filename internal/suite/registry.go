// Package suite loads, orders, and runs the registered and legacy text-file
// cases that make up one run of the harness, aggregating their individual
// verdicts into a single suite-level result.
package suite

import (
	"fmt"
	"sort"
	"sync"

	"miniobench/internal/instruction"
)

// Factory builds a fresh TestCase. Build invokes a case's factory once per
// call, so each call returns TestCases whose instructions are not shared.
type Factory func() *instruction.TestCase

// Initiator runs once before any case in the suite, e.g. to compile a
// fixture or seed shared state. A non-nil error aborts the run before any
// case executes.
type Initiator func() error

var (
	mu         sync.Mutex
	registry   = map[string]Factory{}
	initiators []Initiator
)

// Register associates name with factory. Case files call this from an
// init() function, one file per case, so adding a case never requires
// editing a central list. A duplicate name panics: it can only be a
// programming mistake caught at process startup, never a runtime condition
// a caller could recover from.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("suite: case %q already registered", name))
	}
	registry[name] = factory
}

// RegisterInitiator appends a suite-level initiator, run once before any
// case, in registration order.
func RegisterInitiator(init Initiator) {
	mu.Lock()
	defer mu.Unlock()
	initiators = append(initiators, init)
}

// Names returns every registered case name, deduplicated and sorted
// lexicographically.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves a set of case names into TestCases, deduplicated and in the
// order the names were passed in (Names already returns them sorted). An
// unknown name is an error: a typo'd -cases flag should fail loudly, not
// silently skip.
func Build(names []string) ([]*instruction.TestCase, error) {
	mu.Lock()
	defer mu.Unlock()
	unique := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		if _, seen := unique[name]; seen {
			continue
		}
		unique[name] = struct{}{}
		ordered = append(ordered, name)
	}

	cases := make([]*instruction.TestCase, 0, len(ordered))
	for _, name := range ordered {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("suite: no such registered case %q", name)
		}
		cases = append(cases, factory())
	}
	return cases, nil
}

// runInitiators runs every registered initiator in registration order,
// stopping at the first error.
func runInitiators() error {
	mu.Lock()
	toRun := append([]Initiator(nil), initiators...)
	mu.Unlock()
	for _, init := range toRun {
		if err := init(); err != nil {
			return err
		}
	}
	return nil
}
