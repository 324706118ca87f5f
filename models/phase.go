package models

// Phase is the lifecycle stage of a group. Transitions are forward-only:
// Pool -> Voting -> Results.
type Phase string

const (
	PhasePool    Phase = "POOL"
	PhaseVoting  Phase = "VOTING"
	PhaseResults Phase = "RESULTS"
)

// phaseTransitions is the full transition table. A phase missing from the
// map has no forward transition.
var phaseTransitions = map[Phase]Phase{
	PhasePool:   PhaseVoting,
	PhaseVoting: PhaseResults,
}

// Next returns the phase that follows p, or false when p is terminal.
func (p Phase) Next() (Phase, bool) {
	next, ok := phaseTransitions[p]
	return next, ok
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhasePool, PhaseVoting, PhaseResults:
		return true
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}
