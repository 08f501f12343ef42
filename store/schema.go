package store

const schema = `
CREATE TABLE IF NOT EXISTS throttle_state (
	account TEXT PRIMARY KEY,
	current_capital REAL NOT NULL,
	peak_capital REAL NOT NULL,
	current_drawdown_pct REAL NOT NULL,
	total_trades INTEGER NOT NULL,
	winning_trades INTEGER NOT NULL,
	losing_trades INTEGER NOT NULL,
	total_profit REAL NOT NULL,
	total_loss REAL NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	ruin_probability REAL NOT NULL,
	is_throttled INTEGER NOT NULL,
	throttle_reason TEXT NOT NULL,
	throttle_level TEXT NOT NULL,
	stress_test_passed INTEGER NOT NULL,
	stress_test_last_run DATETIME,
	stress_test_json TEXT,
	last_updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	time DATETIME NOT NULL,
	winner INTEGER NOT NULL,
	profit_loss REAL NOT NULL,
	capital_after REAL NOT NULL,
	throttle_level TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_account_time ON trades(account, time);
`
