package runtime

// Budget holds the resource limits for a program run. Nil fields are
// unlimited.
type Budget struct {
	MaxSteps    *int64
	MaxSyscalls *int64
}

// BudgetTracker tracks resource consumption during a run.
type BudgetTracker struct {
	Steps    int64
	Syscalls int64
}
