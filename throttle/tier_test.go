package throttle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTiersActiveIndex(t *testing.T) {
	t.Parallel()

	tiers := DefaultConfig().Tiers

	tests := []struct {
		name    string
		capital float64
		want    string
	}{
		{"below first bound", 5000, "starter"},
		{"just under first bound", 9999.99, "starter"},
		{"exactly first bound", 10000, "growth"},
		{"mid ladder", 60000, "scale"},
		{"upper band", 200000, "professional"},
		{"above all bounds", 1000000, "institutional"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tiers.Active(tt.capital).Name)
		})
	}
}

func TestTiersValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Tiers.Validate())

	t.Run("empty ladder", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, Tiers{}.Validate())
	})

	t.Run("thresholds must ascend", func(t *testing.T) {
		t.Parallel()
		bad := Tiers{
			{Name: "a", ThresholdAmount: 50000, MaxPositionSizePct: 0.02, MaxDrawdownPct: 0.2},
			{Name: "b", ThresholdAmount: 10000, MaxPositionSizePct: 0.02, MaxDrawdownPct: 0.2},
			{Name: "c", MaxPositionSizePct: 0.01, MaxDrawdownPct: 0.2},
		}
		assert.Error(t, bad.Validate())
	})

	t.Run("only last tier may be unbounded", func(t *testing.T) {
		t.Parallel()
		bad := Tiers{
			{Name: "a", MaxPositionSizePct: 0.02, MaxDrawdownPct: 0.2},
			{Name: "b", ThresholdAmount: 10000, MaxPositionSizePct: 0.02, MaxDrawdownPct: 0.2},
		}
		assert.Error(t, bad.Validate())
	})

	t.Run("gated tier needs stress parameters", func(t *testing.T) {
		t.Parallel()
		bad := Tiers{
			{Name: "a", MaxPositionSizePct: 0.02, MaxDrawdownPct: 0.2, SimulationRequired: true},
		}
		assert.Error(t, bad.Validate())
	})
}

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	// Base caps tighten as the ladder climbs.
	for i := 1; i < len(cfg.Tiers); i++ {
		assert.Less(t, cfg.Tiers[i].MaxPositionSizePct, cfg.Tiers[i-1].MaxPositionSizePct)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero initial capital", func(c *Config) { c.InitialCapital = 0 }},
		{"ruin threshold of one", func(c *Config) { c.RuinThresholdPct = 1 }},
		{"zero acceptable ruin", func(c *Config) { c.MaxAcceptableRuinProb = 0 }},
		{"lock below ceiling", func(c *Config) { c.LockRuinProb = c.MaxAcceptableRuinProb }},
		{"zero update interval", func(c *Config) { c.RiskUpdateIntervalTrades = 0 }},
		{"zero min history", func(c *Config) { c.MinTradeHistory = 0 }},
		{"no tiers", func(c *Config) { c.Tiers = nil }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
