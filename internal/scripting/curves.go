package scripting

import "github.com/l1jgo/horde/internal/data"

// Curves resolves the per-wave count and budget multipliers. A Lua
// count_curve(n) / budget_curve(n) takes precedence; when it is absent or
// fails, the YAML keyframes of the current wave table answer instead.
type Curves struct {
	engine *Engine
	table  *data.WaveCurve
}

// NewCurves builds a resolver. engine may be nil (table only).
func NewCurves(engine *Engine, table *data.WaveCurve) *Curves {
	return &Curves{engine: engine, table: table}
}

// SetCurve swaps the YAML fallback after a reload.
func (c *Curves) SetCurve(t *data.WaveCurve) {
	c.table = t
}

func (c *Curves) CountCurve(wave int) float64 {
	if v, ok := c.call("count_curve", wave); ok {
		if v < 0 {
			return 0
		}
		return v
	}
	return c.table.CountCurve(wave)
}

func (c *Curves) BudgetCurve(wave int) float64 {
	if v, ok := c.call("budget_curve", wave); ok {
		if v < 0 {
			return 0
		}
		return v
	}
	return c.table.BudgetCurve(wave)
}

func (c *Curves) call(name string, wave int) (float64, bool) {
	if c.engine == nil || !c.engine.Has(name) {
		return 0, false
	}
	return c.engine.CallNumber(name, float64(wave))
}
