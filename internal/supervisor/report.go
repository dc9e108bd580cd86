package supervisor

import "time"

// Outcome says how a sync session ended.
type Outcome string

// Session outcomes.
const (
	OutcomeCompleted    Outcome = "completed"    // unison exited on its own
	OutcomeDisconnected Outcome = "disconnected" // the watchdog saw the network go
	OutcomeInterrupted  Outcome = "interrupted"  // the operator stopped the run
	OutcomeFailed       Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// Report summarizes one RunOnce call. Err is set only when Outcome is
// OutcomeFailed.
type Report struct {
	ID         string
	RemotePath string
	LocalPath  string
	Start      time.Time
	End        time.Time
	Outcome    Outcome
	Err        error
}

// Duration returns how long the session ran.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
