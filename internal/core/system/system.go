package system

import "time"

// Phase orders systems inside one tick. Systems sharing a phase run in
// registration order.
type Phase int

const (
	PhaseInput      Phase = iota // drain packet queues, dispatch client signals
	PhasePreUpdate               // deferred tasks from last tick, queued events
	PhaseUpdate                  // game logic
	PhasePostUpdate              // visibility
	PhaseOutput                  // flush buffered records to sessions
	PhaseCleanup                 // destroy queued entities

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseOutput:
		return "output"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
