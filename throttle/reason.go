package throttle

// Reason is the closed enumeration of throttle causes. De-escalation logic
// depends on telling "performance recovered" apart from "must re-run the
// stress test", so reasons are never free text.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonStressTestRequired
	ReasonStressTestFailed
	ReasonHighRuinRisk
	ReasonWinRateLow
	ReasonProfitFactorLow
	ReasonDrawdownExceeded
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonStressTestRequired:
		return "STRESS_TEST_REQUIRED"
	case ReasonStressTestFailed:
		return "STRESS_TEST_FAILED"
	case ReasonHighRuinRisk:
		return "HIGH_RUIN_RISK"
	case ReasonWinRateLow:
		return "WIN_RATE_LOW"
	case ReasonProfitFactorLow:
		return "PROFIT_FACTOR_LOW"
	case ReasonDrawdownExceeded:
		return "DRAWDOWN_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// ParseReason maps a persisted reason string back to a Reason.
func ParseReason(s string) Reason {
	switch s {
	case "STRESS_TEST_REQUIRED":
		return ReasonStressTestRequired
	case "STRESS_TEST_FAILED":
		return ReasonStressTestFailed
	case "HIGH_RUIN_RISK":
		return ReasonHighRuinRisk
	case "WIN_RATE_LOW":
		return ReasonWinRateLow
	case "PROFIT_FACTOR_LOW":
		return ReasonProfitFactorLow
	case "DRAWDOWN_EXCEEDED":
		return ReasonDrawdownExceeded
	default:
		return ReasonNone
	}
}

// RequiresStressTest reports whether the reason can only clear by passing
// a stress test, never by performance recovering.
func (r Reason) RequiresStressTest() bool {
	return r == ReasonStressTestRequired || r == ReasonStressTestFailed
}

// Performance reports whether the reason clears when the account meets its
// tier requirements again.
func (r Reason) Performance() bool {
	return r == ReasonWinRateLow || r == ReasonProfitFactorLow || r == ReasonDrawdownExceeded
}
