package release

// State is a step of the release state machine
type State int

// Release states, in transition order. Failed is reachable from any state before Done.
const (
	StateInit State = iota
	StateBranchesCreated
	StateVersionCommitted
	StateBuilt
	StateMasterUpdated
	StateTagged
	StateSnapshotCommitted
	StatePushed
	StatePublished
	StateAnnounced
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:              "Init",
	StateBranchesCreated:   "BranchesCreated",
	StateVersionCommitted:  "VersionCommitted",
	StateBuilt:             "Built",
	StateMasterUpdated:     "MasterUpdated",
	StateTagged:            "Tagged",
	StateSnapshotCommitted: "SnapshotCommitted",
	StatePushed:            "Pushed",
	StatePublished:         "Published",
	StateAnnounced:         "Announced",
	StateDone:              "Done",
	StateFailed:            "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ParseState returns the state named name. Unknown names parse as Init.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return StateInit, false
}
