package evaluator

// Env is an immutable environment mapping variable names to values.
// An environment is a chain of frames; extending an environment creates a
// new frame pointing at the old chain and never writes to an existing
// frame, so any previously captured environment remains a valid snapshot.
// The nil *Env is the empty environment.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// Extend returns a new environment with names bound to vals in a fresh
// frame on top of e. The two slices must have equal length.
func (e *Env) Extend(names []string, vals []Value) *Env {
	frame := make(map[string]Value, len(names))
	for i, name := range names {
		frame[name] = vals[i]
	}
	return &Env{bindings: frame, parent: e}
}

// Bind returns a new environment with a single additional binding.
func (e *Env) Bind(name string, val Value) *Env {
	return e.Extend([]string{name}, []Value{val})
}

// Get looks up a variable by name, traversing parent frames.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Has checks whether a variable is bound in this environment.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}
