package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/data"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCurvesPreferLua(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "curves.lua", `
function count_curve(n)
  return 1 + n / 10
end

function budget_curve(n)
  if n > 3 then error("boom") end
  return "not a number"
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer e.Close()

	table := data.FallbackCurve()
	table.Budgets = data.Curve{{Wave: 1, Value: 3}}
	c := NewCurves(e, table)

	if got := c.CountCurve(5); got != 1.5 {
		t.Errorf("count_curve(5) = %v, want 1.5", got)
	}
	// Non-number and error both fall back to the table.
	if got := c.BudgetCurve(2); got != 3 {
		t.Errorf("budget_curve(2) = %v, want table value 3", got)
	}
	if got := c.BudgetCurve(9); got != 3 {
		t.Errorf("budget_curve(9) = %v, want table value 3", got)
	}
}

func TestCurvesWithoutScripts(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "missing"), zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer e.Close()
	if e.Has("count_curve") {
		t.Fatal("unexpected function")
	}
	c := NewCurves(e, data.FallbackCurve())
	if got := c.CountCurve(4); got != 1 {
		t.Errorf("count_curve = %v, want 1", got)
	}
	if got := NewCurves(nil, data.FallbackCurve()).BudgetCurve(4); got != 1 {
		t.Errorf("nil engine budget_curve = %v", got)
	}
}

func TestReloadKeepsOldVMOnError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", `function count_curve(n) return 2 end`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer e.Close()

	writeScript(t, dir, "a.lua", `function count_curve(n) return 2 end end`)
	if err := e.Reload(); err == nil {
		t.Fatal("expected syntax error")
	}
	if v, ok := e.CallNumber("count_curve", 1); !ok || v != 2 {
		t.Fatalf("old VM lost: %v %v", v, ok)
	}

	writeScript(t, dir, "a.lua", `function count_curve(n) return 3 end`)
	if err := e.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v, _ := e.CallNumber("count_curve", 1); v != 3 {
		t.Fatalf("reloaded value = %v", v)
	}
}

func TestNewEngineSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", `function (`)
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
