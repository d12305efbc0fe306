package data

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TierWeights holds one selection weight per tier. Only usable when Sum() > 0.
type TierWeights [TierCount]float64

func (w TierWeights) Sum() float64 {
	s := 0.0
	for _, v := range w {
		if v > 0 {
			s += v
		}
	}
	return s
}

// CurvePoint is one keyframe of a per-wave multiplier curve.
type CurvePoint struct {
	Wave  int     `yaml:"wave"`
	Value float64 `yaml:"value"`
}

// Curve is a piecewise-linear function of the wave number, held flat past
// its first and last keyframes. An empty curve is the constant 1.
type Curve []CurvePoint

func (c Curve) At(wave int) float64 {
	if len(c) == 0 {
		return 1
	}
	if wave <= c[0].Wave {
		return c[0].Value
	}
	last := c[len(c)-1]
	if wave >= last.Wave {
		return last.Value
	}
	i := sort.Search(len(c), func(i int) bool { return c[i].Wave >= wave })
	lo, hi := c[i-1], c[i]
	if hi.Wave == wave {
		return hi.Value
	}
	t := float64(wave-lo.Wave) / float64(hi.Wave-lo.Wave)
	return lo.Value + (hi.Value-lo.Value)*t
}

// TierRange assigns tier weights to a range of wave numbers. MaxWave 0 means unbounded.
type TierRange struct {
	MinWave int         `yaml:"min_wave"`
	MaxWave int         `yaml:"max_wave"`
	Weights TierWeights `yaml:"-"`
	RawW    []float64   `yaml:"weights"`
}

func (r TierRange) contains(wave int) bool {
	return wave >= r.MinWave && (r.MaxWave == 0 || wave <= r.MaxWave)
}

// WaveCurve maps a wave number to enemy count, spawn timing, base difficulty
// budget and tier weights.
type WaveCurve struct {
	BaseEnemyCount       int         `yaml:"base_enemy_count"`
	EnemyCountGrowth     float64     `yaml:"enemy_count_growth"`
	BaseSpawnInterval    float64     `yaml:"base_spawn_interval"` // seconds
	MinSpawnInterval     float64     `yaml:"min_spawn_interval"`
	SpawnIntervalDecay   float64     `yaml:"spawn_interval_decay"`
	MinWaveDuration      float64     `yaml:"min_wave_duration"`
	BaseDifficultyPoints float64     `yaml:"base_difficulty_points"`
	DifficultyGrowth     float64     `yaml:"difficulty_growth"`
	Counts               Curve       `yaml:"count_curve"`
	Budgets              Curve       `yaml:"budget_curve"`
	TierRanges           []TierRange `yaml:"tier_weights"`

	fallback bool
}

// LoadWaveCurve loads the wave curve table from a YAML file.
func LoadWaveCurve(path string) (*WaveCurve, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wave_curve: %w", err)
	}
	var w WaveCurve
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse wave_curve: %w", err)
	}
	if err := w.prepare(); err != nil {
		return nil, fmt.Errorf("wave_curve %s: %w", path, err)
	}
	return &w, nil
}

func (w *WaveCurve) prepare() error {
	if w.BaseEnemyCount <= 0 {
		return fmt.Errorf("base_enemy_count must be positive")
	}
	if w.BaseSpawnInterval <= 0 {
		return fmt.Errorf("base_spawn_interval must be positive")
	}
	if w.SpawnIntervalDecay <= 0 {
		w.SpawnIntervalDecay = 1
	}
	if w.DifficultyGrowth <= 0 {
		w.DifficultyGrowth = 1
	}
	if w.BaseDifficultyPoints <= 0 {
		return fmt.Errorf("base_difficulty_points must be positive")
	}
	if len(w.TierRanges) == 0 {
		return fmt.Errorf("no tier_weights ranges")
	}
	for i := range w.TierRanges {
		r := &w.TierRanges[i]
		if len(r.RawW) > TierCount {
			return fmt.Errorf("tier_weights[%d]: %d weights, at most %d", i, len(r.RawW), TierCount)
		}
		for t, v := range r.RawW {
			if v < 0 {
				return fmt.Errorf("tier_weights[%d]: negative weight for tier %d", i, t+1)
			}
			r.Weights[t] = v
		}
		if r.Weights.Sum() <= 0 {
			return fmt.Errorf("tier_weights[%d]: weights sum to zero", i)
		}
		if r.MaxWave != 0 && r.MaxWave < r.MinWave {
			return fmt.Errorf("tier_weights[%d]: max_wave < min_wave", i)
		}
	}
	sort.SliceStable(w.Counts, func(i, j int) bool { return w.Counts[i].Wave < w.Counts[j].Wave })
	sort.SliceStable(w.Budgets, func(i, j int) bool { return w.Budgets[i].Wave < w.Budgets[j].Wave })
	return nil
}

// FallbackCurve is the single-tier curve used when no wave data could be loaded.
func FallbackCurve() *WaveCurve {
	w := &WaveCurve{
		BaseEnemyCount:       5,
		EnemyCountGrowth:     0.15,
		BaseSpawnInterval:    1.0,
		MinSpawnInterval:     0.25,
		SpawnIntervalDecay:   0.97,
		MinWaveDuration:      5,
		BaseDifficultyPoints: 10,
		DifficultyGrowth:     1.1,
		TierRanges: []TierRange{{
			MinWave: 1,
			RawW:    []float64{1},
		}},
		fallback: true,
	}
	_ = w.prepare()
	return w
}

// IsFallback reports whether this is the synthetic fallback curve.
func (w *WaveCurve) IsFallback() bool { return w.fallback }

// CountCurve is the table-driven count multiplier for a wave.
func (w *WaveCurve) CountCurve(wave int) float64 { return w.Counts.At(wave) }

// BudgetCurve is the table-driven global budget multiplier for a wave.
func (w *WaveCurve) BudgetCurve(wave int) float64 { return w.Budgets.At(wave) }

// EnemyCount is round(base × (1 + growth × (wave−1)) × curve), never negative.
func (w *WaveCurve) EnemyCount(wave int, curve float64) int {
	n := float64(w.BaseEnemyCount) * (1 + w.EnemyCountGrowth*float64(wave-1)) * curve
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	return int(math.Round(n))
}

// SpawnInterval shrinks geometrically per wave down to MinSpawnInterval.
func (w *WaveCurve) SpawnInterval(wave int) float64 {
	iv := w.BaseSpawnInterval * math.Pow(w.SpawnIntervalDecay, float64(wave-1))
	if iv < w.MinSpawnInterval {
		iv = w.MinSpawnInterval
	}
	return iv
}

// WaveDuration is the time the plan is spread over.
func (w *WaveCurve) WaveDuration(count int, interval float64) float64 {
	d := float64(count) * interval
	if d < w.MinWaveDuration {
		d = w.MinWaveDuration
	}
	if d <= 0 {
		d = interval
	}
	return d
}

// BaseBudget is baseDifficultyPoints × growth^(wave−1), before curve and adaptation.
func (w *WaveCurve) BaseBudget(wave int) float64 {
	return w.BaseDifficultyPoints * math.Pow(w.DifficultyGrowth, float64(wave-1))
}

// WeightsFor returns the weights of the first range containing wave. Waves
// past every range use the last one. ok is false when the chosen set sums to zero.
func (w *WaveCurve) WeightsFor(wave int) (weights TierWeights, ok bool) {
	if len(w.TierRanges) == 0 {
		return weights, false
	}
	chosen := w.TierRanges[len(w.TierRanges)-1]
	for _, r := range w.TierRanges {
		if r.contains(wave) {
			chosen = r
			break
		}
	}
	return chosen.Weights, chosen.Weights.Sum() > 0
}
