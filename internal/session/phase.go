package session

import "fmt"

// Phase is the lifecycle position of a Session.
type Phase int

const (
	Idle Phase = iota
	TrainingA
	AwaitingB
	TrainingB
	ReadyToDetect
	Detecting
	Stopped
)

var phaseNames = map[Phase]string{
	Idle:          "idle",
	TrainingA:     "training_a",
	AwaitingB:     "awaiting_b",
	TrainingB:     "training_b",
	ReadyToDetect: "ready",
	Detecting:     "detecting",
	Stopped:       "stopped",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Training reports whether p is one of the collection phases.
func (p Phase) Training() bool {
	return p == TrainingA || p == TrainingB
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	for ph, name := range phaseNames {
		if name == string(b) {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Action is a user-triggered session command.
type Action int

const (
	ActionTrainA Action = iota
	ActionTrainB
	ActionDetect
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionTrainA:
		return "train_a"
	case ActionTrainB:
		return "train_b"
	case ActionDetect:
		return "detect"
	case ActionStop:
		return "stop"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Actions holds which commands the current phase permits.
type Actions struct {
	TrainA bool `json:"train_a"`
	TrainB bool `json:"train_b"`
	Detect bool `json:"detect"`
	Stop   bool `json:"stop"`
}

// Allows reports whether a is enabled.
func (a Actions) Allows(action Action) bool {
	switch action {
	case ActionTrainA:
		return a.TrainA
	case ActionTrainB:
		return a.TrainB
	case ActionDetect:
		return a.Detect
	case ActionStop:
		return a.Stop
	}
	return false
}

// ActionsFor returns the commands enabled in phase p. Nothing is enabled
// while a training phase runs.
func ActionsFor(p Phase) Actions {
	return Actions{
		TrainA: p == Idle,
		TrainB: p == AwaitingB,
		Detect: p == ReadyToDetect,
		Stop:   p == Detecting,
	}
}
