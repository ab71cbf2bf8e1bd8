// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed activities.json
var builtinActivities []byte

var (
	builtinOnce sync.Once
	builtinReg  *ActivityRegistry
	builtinErr  error
)

// LoadRegistry reads an activity registry from a JSON file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Builtin returns the registry compiled into the binary. The result is shared
// and must not be modified.
func Builtin() (*ActivityRegistry, error) {
	builtinOnce.Do(func() {
		builtinReg, builtinErr = parse(builtinActivities)
	})
	return builtinReg, builtinErr
}

// MustActivity returns the built-in activity for taskType and panics if it is
// missing. Handlers call it at construction time.
func MustActivity(taskType string) Activity {
	reg, err := Builtin()
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	a, ok := reg.Find(taskType)
	if !ok {
		panic(fmt.Sprintf("registry: no activity for task type %q", taskType))
	}
	return a
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse activity registry: %w", err)
	}
	return &reg, nil
}

// Find looks an activity up by task type.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// TaskTypes lists the registered task types in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}
