package wave

import (
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/data"
)

// OverrunPolicy decides which archetype fills a slot when nothing in the
// tier fits the remaining budget.
type OverrunPolicy string

const (
	OverrunRandom   OverrunPolicy = "random"   // unweighted pick among the whole tier
	OverrunCheapest OverrunPolicy = "cheapest" // cheapest archetype of the tier
)

const (
	offsetJitter = 0.1
	costEpsilon  = 1e-9
)

// maxOffset is the largest offset below 1.
var maxOffset = math.Nextafter(1, 0)

// CountCurve supplies the per-wave enemy count multiplier.
type CountCurve interface {
	CountCurve(wave int) float64
}

// Budgeter turns a base budget into the final one (global curve and
// adaptive multiplier).
type Budgeter interface {
	FinalBudget(wave int, baseBudget float64) float64
}

// Deps configures a Composer. Nil Catalog or Curve selects the fallbacks.
type Deps struct {
	Catalog *data.EnemyCatalog
	Curve   *data.WaveCurve
	Counts  CountCurve // nil = Curve's own keyframes
	Budget  Budgeter   // nil = base budget unscaled
	Policy  OverrunPolicy
	Rand    *rand.Rand
	Log     *zap.Logger
}

// Composer generates wave plans. Game loop only.
type Composer struct {
	catalog *data.EnemyCatalog
	curve   *data.WaveCurve
	counts  CountCurve
	budget  Budgeter
	policy  OverrunPolicy
	rng     *rand.Rand
	log     *zap.Logger
}

func NewComposer(d Deps) *Composer {
	c := &Composer{
		counts: d.Counts,
		budget: d.Budget,
		policy: d.Policy,
		rng:    d.Rand,
		log:    d.Log,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(1))
	}
	if c.policy != OverrunCheapest {
		c.policy = OverrunRandom
	}
	c.SetCatalog(d.Catalog)
	c.SetCurve(d.Curve)
	return c
}

// SetCatalog swaps the enemy catalog used by the next Generate call.
func (c *Composer) SetCatalog(cat *data.EnemyCatalog) {
	if cat == nil || cat.Count() == 0 {
		c.log.Warn("no enemy catalog, using fallback archetype")
		cat = data.FallbackCatalog()
	}
	c.catalog = cat
}

// SetCurve swaps the wave curve used by the next Generate call.
func (c *Composer) SetCurve(w *data.WaveCurve) {
	if w == nil {
		c.log.Warn("no wave curve, using fallback curve")
		w = data.FallbackCurve()
	}
	c.curve = w
}

func (c *Composer) Catalog() *data.EnemyCatalog { return c.catalog }
func (c *Composer) Curve() *data.WaveCurve      { return c.curve }

// Generate composes the plan for wave n (n < 1 is treated as 1).
func (c *Composer) Generate(n int) *Plan {
	if n < 1 {
		n = 1
	}
	curve := c.curve

	countMul := curve.CountCurve(n)
	if c.counts != nil {
		countMul = c.counts.CountCurve(n)
	}
	count := curve.EnemyCount(n, countMul)
	interval := curve.SpawnInterval(n)
	budget := curve.BaseBudget(n)
	if c.budget != nil {
		budget = c.budget.FinalBudget(n, budget)
	}

	plan := &Plan{
		WaveNumber:          n,
		TotalEnemyCount:     count,
		DifficultyBudget:    budget,
		SpawnInterval:       interval,
		WaveDurationSeconds: curve.WaveDuration(count, interval),
		Entries:             make([]Entry, 0, count),
	}

	weights, ok := curve.WeightsFor(n)
	if !ok {
		c.log.Warn("tier weights sum to zero, using tier 1 only", zap.Int("wave", n))
		weights = data.TierWeights{1}
	}
	plan.TierCounts = c.distribute(weights, count)

	remaining := budget
	for t, k := range plan.TierCounts {
		for i := 0; i < k; i++ {
			arch, over := c.pick(t+1, remaining)
			if arch == nil {
				continue
			}
			remaining -= arch.DifficultyCost
			plan.SpentBudget += arch.DifficultyCost
			plan.Entries = append(plan.Entries, Entry{
				ArchetypeID: arch.ID,
				Tier:        arch.Tier,
				Cost:        arch.DifficultyCost,
				OverBudget:  over,
			})
		}
	}

	c.assignOffsets(plan.Entries)

	c.log.Debug("wave composed",
		zap.Int("wave", n),
		zap.Int("enemies", count),
		zap.Float64("budget", budget),
		zap.Float64("spent", plan.SpentBudget),
		zap.Int("over_budget", plan.OverBudgetCount()),
	)
	return plan
}

// distribute splits count across tiers proportionally to weights. Rounding
// leftovers go one at a time to random positive-weight tiers, so the result
// always sums to count.
func (c *Composer) distribute(weights data.TierWeights, count int) [data.TierCount]int {
	var out [data.TierCount]int
	sum := weights.Sum()
	positive := make([]int, 0, data.TierCount)
	remaining := count
	for t, w := range weights {
		if w <= 0 {
			continue
		}
		positive = append(positive, t)
		k := int(math.Round(w / sum * float64(count)))
		if k > remaining {
			k = remaining
		}
		out[t] = k
		remaining -= k
	}
	for remaining > 0 && len(positive) > 0 {
		out[positive[c.rng.Intn(len(positive))]]++
		remaining--
	}
	return out
}

// pick selects an archetype for one slot of tier. over reports a budget overrun.
func (c *Composer) pick(tier int, remaining float64) (arch *data.EnemyArchetype, over bool) {
	cands := c.candidates(tier)
	if len(cands) == 0 {
		return nil, false
	}

	var affordable []*data.EnemyArchetype
	total := 0.0
	for _, a := range cands {
		if a.DifficultyCost <= remaining+costEpsilon {
			affordable = append(affordable, a)
			total += 1 / (a.DifficultyCost + 1)
		}
	}
	if len(affordable) == 0 {
		if c.policy == OverrunCheapest {
			return cands[0], true
		}
		return cands[c.rng.Intn(len(cands))], true
	}

	r := c.rng.Float64() * total
	for _, a := range affordable {
		r -= 1 / (a.DifficultyCost + 1)
		if r < 0 {
			return a, false
		}
	}
	return affordable[len(affordable)-1], false
}

// candidates returns the archetypes of tier, or of the nearest populated
// tier (lower tiers first) when it is empty.
func (c *Composer) candidates(tier int) []*data.EnemyArchetype {
	if list := c.catalog.Tier(tier); len(list) > 0 {
		return list
	}
	for d := 1; d < data.TierCount; d++ {
		if list := c.catalog.Tier(tier - d); len(list) > 0 {
			return list
		}
		if list := c.catalog.Tier(tier + d); len(list) > 0 {
			return list
		}
	}
	return nil
}

func (c *Composer) assignOffsets(entries []Entry) {
	n := float64(len(entries))
	for i := range entries {
		off := float64(i)/n + (c.rng.Float64()*2-1)*offsetJitter
		entries[i].Offset = math.Max(0, math.Min(maxOffset, off))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Offset < entries[j].Offset
	})
}
