package typewriter

import "time"

// Phase is the animator's current sub-state.
type Phase int

const (
	Idle Phase = iota
	Typing
	PausedFull
	Deleting
	PausedEmpty
	Cancelled
)

var phaseNames = [...]string{
	Idle:        "idle",
	Typing:      "typing",
	PausedFull:  "paused-full",
	Deleting:    "deleting",
	PausedEmpty: "paused-empty",
	Cancelled:   "cancelled",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name so frames read well on the wire.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Paused reports whether the cursor should blink: the text is not changing.
func (p Phase) Paused() bool {
	return p == PausedFull || p == PausedEmpty || p == Idle
}

// Frame is what the host displays after one tick.
type Frame struct {
	Text  string `json:"text"`
	Phase Phase  `json:"phase"`
	Index int    `json:"index"`
}

// Machine is the typing state machine without any notion of time. Each call
// to Next applies exactly one tick and returns the frame to display together
// with how long the frame stays on screen.
//
// Positions are counted in runes so multi-byte characters are never split.
type Machine struct {
	phrases [][]rune
	index   int
	pos     int
	phase   Phase
	started bool
}

// NewMachine copies phrases into a machine sitting in Idle.
func NewMachine(phrases []string) *Machine {
	m := &Machine{phrases: make([][]rune, len(phrases)), phase: Idle}
	for i, p := range phrases {
		m.phrases[i] = []rune(p)
	}
	return m
}

// Len is the number of phrases in the playlist.
func (m *Machine) Len() int { return len(m.phrases) }

// Frame returns the current frame without advancing.
func (m *Machine) Frame() Frame {
	if len(m.phrases) == 0 || !m.started {
		return Frame{Phase: m.phase, Index: m.index}
	}
	return Frame{
		Text:  string(m.phrases[m.index][:m.pos]),
		Phase: m.phase,
		Index: m.index,
	}
}

// Next advances one tick and returns the resulting frame plus the delay that
// follows it. With an empty playlist the machine never leaves Idle and Next
// returns an empty Idle frame with zero delay.
func (m *Machine) Next(cfg Config) (Frame, time.Duration) {
	if len(m.phrases) == 0 || m.phase == Cancelled {
		return m.Frame(), 0
	}

	if !m.started {
		m.started = true
		m.phase = Typing
		m.pos = 0
		return m.Frame(), cfg.TypeDelay
	}

	cur := m.phrases[m.index]
	switch m.phase {
	case Typing:
		if m.pos < len(cur) {
			m.pos++
			return m.Frame(), cfg.TypeDelay
		}
		m.phase = PausedFull
		return m.Frame(), cfg.PauseFull

	case PausedFull:
		if len(cur) == 0 {
			m.phase = PausedEmpty
			return m.Frame(), cfg.PauseEmpty
		}
		m.phase = Deleting
		m.pos--
		return m.Frame(), cfg.DeleteDelay

	case Deleting:
		if m.pos > 0 {
			m.pos--
			return m.Frame(), cfg.DeleteDelay
		}
		m.phase = PausedEmpty
		return m.Frame(), cfg.PauseEmpty

	case PausedEmpty:
		m.index = (m.index + 1) % len(m.phrases)
		m.phase = Typing
		m.pos = 0
		return m.Frame(), cfg.TypeDelay
	}

	return m.Frame(), 0
}

// Cancel moves the machine into its terminal state.
func (m *Machine) Cancel() {
	m.phase = Cancelled
}
