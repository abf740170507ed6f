package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseDispatch Phase = iota // 0: deliver last tick's events
	PhaseDeliver               // 1: hand finished searches to their requesters
	PhaseReport                // 2: sample service metrics
	PhasePersist               // 3: flush metric batches
)

func (p Phase) String() string {
	switch p {
	case PhaseDispatch:
		return "dispatch"
	case PhaseDeliver:
		return "deliver"
	case PhaseReport:
		return "report"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is driven by the Runner once per tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
