// Package difficulty tracks recent wave outcomes and nudges a budget
// multiplier toward the target pacing.
package difficulty

import (
	"math"

	"go.uber.org/zap"
)

// Sample is one completed wave.
type Sample struct {
	WaveTimeSeconds float64
	PlayerSurvived  bool
}

// BudgetCurve is the global per-wave budget multiplier.
type BudgetCurve interface {
	BudgetCurve(wave int) float64
}

// Settings tunes the controller.
type Settings struct {
	Window                int
	MinSamples            int     // adaptation waits until this many samples are held; 0 = Window
	TargetAverageWaveTime float64 // seconds
	TargetSurvivalRate    float64 // 0..1
	AdaptationRate        float64
	MinMultiplier         float64
	MaxMultiplier         float64
}

// DefaultSettings are the values used when the config leaves them out.
func DefaultSettings() Settings {
	return Settings{
		Window:                10,
		TargetAverageWaveTime: 25,
		TargetSurvivalRate:    0.7,
		AdaptationRate:        0.1,
		MinMultiplier:         0.5,
		MaxMultiplier:         2.0,
	}
}

// Controller keeps a fixed-size ring of outcomes and the adaptive multiplier.
// Game loop only.
type Controller struct {
	cfg   Settings
	curve BudgetCurve
	log   *zap.Logger

	ring  []Sample
	next  int
	count int

	multiplier   float64
	averageTime  float64
	survivalRate float64
}

func NewController(cfg Settings, curve BudgetCurve, log *zap.Logger) *Controller {
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	if cfg.MinSamples <= 0 || cfg.MinSamples > cfg.Window {
		cfg.MinSamples = cfg.Window
	}
	if cfg.MaxMultiplier < cfg.MinMultiplier {
		cfg.MinMultiplier, cfg.MaxMultiplier = cfg.MaxMultiplier, cfg.MinMultiplier
	}
	c := &Controller{
		cfg:   cfg,
		curve: curve,
		log:   log,
		ring:  make([]Sample, cfg.Window),
	}
	c.multiplier = c.clamp(1.0)
	return c
}

// FinalBudget scales a wave's base budget by the global curve and the
// current multiplier.
func (c *Controller) FinalBudget(wave int, baseBudget float64) float64 {
	g := 1.0
	if c.curve != nil {
		g = c.curve.BudgetCurve(wave)
	}
	b := baseBudget * g * c.multiplier
	if b < 0 || math.IsNaN(b) {
		return 0
	}
	return b
}

// RecordOutcome appends a wave result, overwriting the oldest once full, and
// steps the multiplier when enough samples are held.
func (c *Controller) RecordOutcome(waveTime float64, survived bool) {
	if waveTime < 0 || math.IsNaN(waveTime) {
		waveTime = 0
	}
	c.ring[c.next] = Sample{WaveTimeSeconds: waveTime, PlayerSurvived: survived}
	c.next = (c.next + 1) % len(c.ring)
	if c.count < len(c.ring) {
		c.count++
	}

	total := 0.0
	alive := 0
	for i := 0; i < c.count; i++ {
		total += c.ring[i].WaveTimeSeconds
		if c.ring[i].PlayerSurvived {
			alive++
		}
	}
	c.averageTime = total / float64(c.count)
	c.survivalRate = float64(alive) / float64(c.count)

	if c.count < c.cfg.MinSamples {
		return
	}

	old := c.multiplier
	switch {
	case c.survivalRate >= c.cfg.TargetSurvivalRate && c.averageTime < c.cfg.TargetAverageWaveTime:
		c.multiplier += c.cfg.AdaptationRate
	case c.survivalRate < c.cfg.TargetSurvivalRate || c.averageTime > c.cfg.TargetAverageWaveTime:
		c.multiplier -= c.cfg.AdaptationRate
	}
	c.multiplier = c.clamp(c.multiplier)

	if c.multiplier != old {
		c.log.Debug("difficulty adjusted",
			zap.Float64("from", old),
			zap.Float64("to", c.multiplier),
			zap.Float64("avg_time", c.averageTime),
			zap.Float64("survival", c.survivalRate),
		)
	}
}

// Reset clears the history and restores the neutral multiplier.
func (c *Controller) Reset() {
	for i := range c.ring {
		c.ring[i] = Sample{}
	}
	c.next = 0
	c.count = 0
	c.averageTime = 0
	c.survivalRate = 0
	c.multiplier = c.clamp(1.0)
}

func (c *Controller) clamp(m float64) float64 {
	return math.Max(c.cfg.MinMultiplier, math.Min(c.cfg.MaxMultiplier, m))
}

func (c *Controller) Multiplier() float64   { return c.multiplier }
func (c *Controller) AverageTime() float64  { return c.averageTime }
func (c *Controller) SurvivalRate() float64 { return c.survivalRate }
func (c *Controller) Samples() int          { return c.count }
