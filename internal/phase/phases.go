package phase

// ModulePhase tracks how far one module has progressed through the
// front-end pipeline. Phases advance strictly in order; a module that
// failed to produce an AST stays at Parsed and never reaches the
// semantic phases.
type ModulePhase int

const (
	NotStarted ModulePhase = iota
	Lexed
	Parsed
	Collected
	Resolved
	TypeChecked
)

func (p ModulePhase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Lexed:
		return "lexed"
	case Parsed:
		return "parsed"
	case Collected:
		return "collected"
	case Resolved:
		return "resolved"
	case TypeChecked:
		return "type checked"
	default:
		return "unknown"
	}
}

// Prerequisite returns the phase a module must have completed before
// entering p.
func (p ModulePhase) Prerequisite() ModulePhase {
	if p <= NotStarted {
		return NotStarted
	}
	return p - 1
}

// CanTransitionTo reports whether a module at phase p may advance
// directly to next.
func (p ModulePhase) CanTransitionTo(next ModulePhase) bool {
	return next.Prerequisite() == p
}
