package syncer

// Phase is the coarse progress of a reconciliation pass.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSuccess
	PhaseError
)

// State is the status value reported by every reconciliation operation.
// Terminal states are Success and Error; Loading is emitted once at the
// start of SyncAll. Updated counts entities written, not which ones; a
// partially completed pass still reports how far it got.
type State struct {
	Phase   Phase
	Updated int
	Message string
	Cause   error
}

// Loading is the initial state of a SyncAll stream.
func Loading() State { return State{Phase: PhaseLoading} }

// Success reports a completed pass with the number of updated entities.
func Success(updated int) State { return State{Phase: PhaseSuccess, Updated: updated} }

// Failure reports a recovered error. Cause may be nil for purely domain
// failures such as "not signed in".
func Failure(msg string, cause error) State {
	return State{Phase: PhaseError, Message: msg, Cause: cause}
}

func (s State) String() string {
	switch s.Phase {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	default:
		return "error: " + s.Message
	}
}
