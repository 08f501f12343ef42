// Package store persists throttle state across restarts. Backends share a
// small Store interface; the SQLite backend additionally journals recorded
// trades in the style of a trading journal.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no state has been saved yet.
// Callers seed fresh defaults instead of treating it as a failure.
var ErrNotFound = errors.New("throttle state not found")

// StateRecord is the persisted shape of the throttle's mutable state.
// Load followed by Save must reproduce semantically identical state; the
// serialization itself need not be byte-identical.
type StateRecord struct {
	CurrentCapital     float64 `json:"current_capital"`
	PeakCapital        float64 `json:"peak_capital"`
	CurrentDrawdownPct float64 `json:"current_drawdown_pct"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalProfit   float64 `json:"total_profit"`
	TotalLoss     float64 `json:"total_loss"`

	WinRate         float64 `json:"current_win_rate"`
	ProfitFactor    float64 `json:"current_profit_factor"`
	RuinProbability float64 `json:"current_ruin_probability"`

	IsThrottled    bool   `json:"is_throttled"`
	ThrottleReason string `json:"throttle_reason"`
	ThrottleLevel  string `json:"throttle_level"`

	StressTestPassed  bool          `json:"stress_test_passed"`
	StressTestLastRun *time.Time    `json:"stress_test_last_run"`
	StressTest        *StressRecord `json:"stress_test_results"`

	LastUpdated time.Time `json:"last_updated"`
}

// StressRecord is the nested record of the most recent stress-test run.
type StressRecord struct {
	RunID               string    `json:"run_id"`
	RunAt               time.Time `json:"run_at"`
	Eligible            bool      `json:"eligible"`
	Passed              bool      `json:"passed"`
	RecoveryProbability float64   `json:"recovery_probability"`
	DurationTrades      int       `json:"duration_trades"`
	TargetCapital       float64   `json:"target_capital"`
}

// TradeRecord is one completed trade as seen by the throttle.
type TradeRecord struct {
	TradeID       string
	Time          time.Time
	Winner        bool
	ProfitLoss    float64
	CapitalAfter  float64
	ThrottleLevel string
}

// Store is durable load/save of throttle state.
type Store interface {
	// Load returns the saved state, or ErrNotFound when none exists.
	Load(ctx context.Context) (StateRecord, error)

	// Save durably replaces the state. Implementations must be atomic:
	// a crash mid-write never leaves a corrupt or truncated record.
	Save(ctx context.Context, rec StateRecord) error

	Close() error
}

// TradeJournal is implemented by stores that also keep per-trade history.
type TradeJournal interface {
	RecordTrade(ctx context.Context, rec TradeRecord) error
	CountTrades(ctx context.Context) (int, error)
}
