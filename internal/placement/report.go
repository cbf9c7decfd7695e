package placement

// Action is one file placement, performed or planned.
type Action struct {
	Section     string
	Stem        string
	Source      string
	Destination string
	Method      string
	DryRun      bool
}

// Report summarizes a placement pass.
type Report struct {
	SessionID string
	DryRun    bool
	// Placed counts files materialized (or planned in dry-run).
	Placed int
	// Skipped counts files whose destination was already claimed.
	Skipped int
	// Missing counts expected files not found under the source root.
	Missing int
	// Failed counts files the materializer could not place.
	Failed  int
	Events  int
	Actions []Action
}

// OK reports whether every located file was placed.
func (r *Report) OK() bool {
	return r.Failed == 0
}
