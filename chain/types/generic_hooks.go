package types

import "golang.org/x/exp/slices"

// GenericHookFunc defines a basic function that takes no arguments and returns none, to be used as a hook during
// execution.
type GenericHookFunc func()

// GenericHookFuncs wraps a list of GenericHookFunc items. It provides operations to push new hooks onto the list and
// execute them in forward or reverse order.
type GenericHookFuncs []GenericHookFunc

// Execute clones the hook list, optionally clears the original, then invokes every hook from the clone. Cloning
// allows hook handlers to push additional hooks onto the original list without affecting the current run.
//
// If the forward flag is provided, hooks are executed from index 0 to the end, otherwise they are executed in
// reverse (stack order, which is what state-restoring hooks rely on).
// If the clear flag is provided, the list referenced by the immediate pointer is reset to nil afterwards.
func (t *GenericHookFuncs) Execute(forward bool, clear bool) {
	// If the hooks aren't set yet, do nothing.
	if t == nil {
		return
	}

	// Snapshot the current hook list before any handler can mutate it.
	tCopy := slices.Clone(*t)

	if clear {
		*t = nil
	}

	if forward {
		for i := 0; i < len(tCopy); i++ {
			tCopy[i]()
		}
	} else {
		for i := len(tCopy) - 1; i >= 0; i-- {
			tCopy[i]()
		}
	}
}

// Push pushes a provided hook onto the end of the list.
func (t *GenericHookFuncs) Push(f GenericHookFunc) {
	*t = append(*t, f)
}
