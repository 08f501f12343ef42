package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps one throttle-state row per account plus a per-trade journal.
// Single-row upserts run inside implicit transactions, which gives the
// atomic-write guarantee the Store contract requires.
type SQLite struct {
	db      *sql.DB
	account string
}

// NewSQLite opens (or creates) the database at path and scopes all reads
// and writes to the given account key.
func NewSQLite(path, account string) (*SQLite, error) {
	if account == "" {
		return nil, fmt.Errorf("sqlite store: account must not be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, account: account}, nil
}

func (s *SQLite) Load(ctx context.Context) (StateRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT current_capital, peak_capital, current_drawdown_pct,
		       total_trades, winning_trades, losing_trades,
		       total_profit, total_loss,
		       win_rate, profit_factor, ruin_probability,
		       is_throttled, throttle_reason, throttle_level,
		       stress_test_passed, stress_test_last_run, stress_test_json,
		       last_updated
		FROM throttle_state WHERE account = ?`, s.account)

	var rec StateRecord
	var stressJSON sql.NullString
	var lastRun sql.NullTime

	err := row.Scan(
		&rec.CurrentCapital, &rec.PeakCapital, &rec.CurrentDrawdownPct,
		&rec.TotalTrades, &rec.WinningTrades, &rec.LosingTrades,
		&rec.TotalProfit, &rec.TotalLoss,
		&rec.WinRate, &rec.ProfitFactor, &rec.RuinProbability,
		&rec.IsThrottled, &rec.ThrottleReason, &rec.ThrottleLevel,
		&rec.StressTestPassed, &lastRun, &stressJSON,
		&rec.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return StateRecord{}, ErrNotFound
	}
	if err != nil {
		return StateRecord{}, fmt.Errorf("load state for %s: %w", s.account, err)
	}

	if lastRun.Valid {
		t := lastRun.Time
		rec.StressTestLastRun = &t
	}
	if stressJSON.Valid && stressJSON.String != "" {
		var sr StressRecord
		if err := json.Unmarshal([]byte(stressJSON.String), &sr); err != nil {
			return StateRecord{}, fmt.Errorf("parse stress record for %s: %w", s.account, err)
		}
		rec.StressTest = &sr
	}
	return rec, nil
}

func (s *SQLite) Save(ctx context.Context, rec StateRecord) error {
	var stressJSON sql.NullString
	if rec.StressTest != nil {
		data, err := json.Marshal(rec.StressTest)
		if err != nil {
			return fmt.Errorf("marshal stress record: %w", err)
		}
		stressJSON = sql.NullString{String: string(data), Valid: true}
	}

	var lastRun sql.NullTime
	if rec.StressTestLastRun != nil {
		lastRun = sql.NullTime{Time: *rec.StressTestLastRun, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO throttle_state
		(account, current_capital, peak_capital, current_drawdown_pct,
		 total_trades, winning_trades, losing_trades, total_profit, total_loss,
		 win_rate, profit_factor, ruin_probability,
		 is_throttled, throttle_reason, throttle_level,
		 stress_test_passed, stress_test_last_run, stress_test_json, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
		 current_capital=excluded.current_capital,
		 peak_capital=excluded.peak_capital,
		 current_drawdown_pct=excluded.current_drawdown_pct,
		 total_trades=excluded.total_trades,
		 winning_trades=excluded.winning_trades,
		 losing_trades=excluded.losing_trades,
		 total_profit=excluded.total_profit,
		 total_loss=excluded.total_loss,
		 win_rate=excluded.win_rate,
		 profit_factor=excluded.profit_factor,
		 ruin_probability=excluded.ruin_probability,
		 is_throttled=excluded.is_throttled,
		 throttle_reason=excluded.throttle_reason,
		 throttle_level=excluded.throttle_level,
		 stress_test_passed=excluded.stress_test_passed,
		 stress_test_last_run=excluded.stress_test_last_run,
		 stress_test_json=excluded.stress_test_json,
		 last_updated=excluded.last_updated`,
		s.account, rec.CurrentCapital, rec.PeakCapital, rec.CurrentDrawdownPct,
		rec.TotalTrades, rec.WinningTrades, rec.LosingTrades, rec.TotalProfit, rec.TotalLoss,
		rec.WinRate, rec.ProfitFactor, rec.RuinProbability,
		rec.IsThrottled, rec.ThrottleReason, rec.ThrottleLevel,
		rec.StressTestPassed, lastRun, stressJSON, rec.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("save state for %s: %w", s.account, err)
	}
	return nil
}

// RecordTrade appends one completed trade to the journal.
func (s *SQLite) RecordTrade(ctx context.Context, rec TradeRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
		(trade_id, account, time, winner, profit_loss, capital_after, throttle_level)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TradeID, s.account, rec.Time, rec.Winner,
		rec.ProfitLoss, rec.CapitalAfter, rec.ThrottleLevel,
	)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}
	return nil
}

// CountTrades returns the number of journaled trades for the account.
func (s *SQLite) CountTrades(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE account = ?`, s.account).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}

// ListTrades returns the most recent journaled trades, newest first.
func (s *SQLite) ListTrades(ctx context.Context, limit int) ([]TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, time, winner, profit_loss, capital_after, throttle_level
		FROM trades WHERE account = ?
		ORDER BY time DESC, trade_id DESC LIMIT ?`, s.account, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var recs []TradeRecord
	for rows.Next() {
		var r TradeRecord
		if err := rows.Scan(&r.TradeID, &r.Time, &r.Winner, &r.ProfitLoss,
			&r.CapitalAfter, &r.ThrottleLevel); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
