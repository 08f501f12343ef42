// Package throttle gates how aggressively an account may size positions as
// its capital grows. It owns the mutable account state, maps capital to a
// configured tier ladder, re-runs ruin analysis on a trade interval, forces
// drawdown stress tests at gated tier boundaries, and derives the single
// externally consumed signal: the maximum allowed position-size fraction.
package throttle

// Level is the graduated throttle applied on top of the active tier's base
// position-size cap.
type Level int

const (
	Unrestricted Level = iota
	Conservative
	Moderate
	Strict
	Locked
)

func (l Level) String() string {
	switch l {
	case Unrestricted:
		return "UNRESTRICTED"
	case Conservative:
		return "CONSERVATIVE"
	case Moderate:
		return "MODERATE"
	case Strict:
		return "STRICT"
	case Locked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a persisted level string back to a Level. Unknown input
// parses as Strict: a corrupted level field should fail safe, not open.
func ParseLevel(s string) Level {
	switch s {
	case "UNRESTRICTED":
		return Unrestricted
	case "CONSERVATIVE":
		return Conservative
	case "MODERATE":
		return Moderate
	case "STRICT":
		return Strict
	case "LOCKED":
		return Locked
	default:
		return Strict
	}
}

// Multiplier is the total mapping from level to size multiplier. Every
// level must appear here; sizing never falls through to a default.
func (l Level) Multiplier() float64 {
	switch l {
	case Unrestricted:
		return 1.00
	case Conservative:
		return 0.75
	case Moderate:
		return 0.50
	case Strict:
		return 0.25
	case Locked:
		return 0.00
	}
	return 0.00
}
