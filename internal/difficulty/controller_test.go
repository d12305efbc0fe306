package difficulty

import (
	"math"
	"math/rand"
	"testing"

	"go.uber.org/zap"
)

type fixedCurve float64

func (f fixedCurve) BudgetCurve(int) float64 { return float64(f) }

func TestTenFastSurvivedWavesRaiseOneStep(t *testing.T) {
	c := NewController(DefaultSettings(), nil, zap.NewNop())
	for i := 0; i < 9; i++ {
		c.RecordOutcome(15, true)
		if c.Multiplier() != 1.0 {
			t.Fatalf("adapted after %d samples: %v", i+1, c.Multiplier())
		}
	}
	c.RecordOutcome(15, true)
	if math.Abs(c.Multiplier()-1.1) > 1e-9 {
		t.Fatalf("multiplier = %v, want 1.1", c.Multiplier())
	}
	if c.AverageTime() != 15 || c.SurvivalRate() != 1 {
		t.Fatalf("stats = %v/%v", c.AverageTime(), c.SurvivalRate())
	}
}

func TestDeathsLowerMultiplier(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Window = 4
	c := NewController(cfg, nil, zap.NewNop())
	for i := 0; i < 4; i++ {
		c.RecordOutcome(10, i == 0)
	}
	if math.Abs(c.Multiplier()-0.9) > 1e-9 {
		t.Fatalf("multiplier = %v, want 0.9", c.Multiplier())
	}
}

func TestOnTargetHoldsSteady(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Window = 2
	c := NewController(cfg, nil, zap.NewNop())
	c.RecordOutcome(25, true)
	c.RecordOutcome(25, true)
	if c.Multiplier() != 1 {
		t.Fatalf("multiplier = %v, want unchanged", c.Multiplier())
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Window = 3
	c := NewController(cfg, nil, zap.NewNop())
	for _, v := range []float64{100, 10, 20, 30} {
		c.RecordOutcome(v, true)
	}
	if c.Samples() != 3 {
		t.Fatalf("samples = %d", c.Samples())
	}
	if c.AverageTime() != 20 {
		t.Fatalf("average = %v, want 20", c.AverageTime())
	}
}

func TestMultiplierStaysClamped(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Window = 3
	cfg.AdaptationRate = 0.35
	c := NewController(cfg, nil, zap.NewNop())
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		c.RecordOutcome(rng.Float64()*60, rng.Intn(3) > 0)
		if m := c.Multiplier(); m < cfg.MinMultiplier || m > cfg.MaxMultiplier {
			t.Fatalf("step %d: multiplier %v out of range", i, m)
		}
	}
}

func TestFinalBudgetAndReset(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Window = 1
	c := NewController(cfg, fixedCurve(2), zap.NewNop())
	if got := c.FinalBudget(1, 10); got != 20 {
		t.Fatalf("budget = %v, want 20", got)
	}
	c.RecordOutcome(1, true)
	if got := c.FinalBudget(1, 10); math.Abs(got-22) > 1e-9 {
		t.Fatalf("budget after step = %v, want 22", got)
	}
	c.Reset()
	if c.Multiplier() != 1 || c.Samples() != 0 || c.AverageTime() != 0 {
		t.Fatalf("reset left state: %v %d %v", c.Multiplier(), c.Samples(), c.AverageTime())
	}
}

func TestMinSamplesAllowsEarlyAdaptation(t *testing.T) {
	cfg := DefaultSettings()
	cfg.MinSamples = 2
	c := NewController(cfg, nil, zap.NewNop())
	c.RecordOutcome(5, true)
	if c.Multiplier() != 1 {
		t.Fatalf("adapted on first sample")
	}
	c.RecordOutcome(5, true)
	if math.Abs(c.Multiplier()-1.1) > 1e-9 {
		t.Fatalf("multiplier = %v", c.Multiplier())
	}
}
