package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// TierCount is the number of enemy power tiers (1 = weakest .. 5 = strongest).
const TierCount = 5

// Stats are the base values an archetype hands to each spawned instance.
type Stats struct {
	MaxHP  float64 `yaml:"max_hp"`
	Speed  float64 `yaml:"speed"`
	Damage float64 `yaml:"damage"`
	Radius float64 `yaml:"radius"`
	XP     float64 `yaml:"xp"`
}

// EnemyArchetype holds static data for one enemy type loaded from YAML.
// Never mutated after load; per-instance state lives on component.Enemy.
type EnemyArchetype struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Tier           int     `yaml:"tier"`
	DifficultyCost float64 `yaml:"difficulty_cost"`
	Stats          Stats   `yaml:"stats"`
}

type enemyListFile struct {
	Enemies []EnemyArchetype `yaml:"enemies"`
}

// EnemyCatalog indexes archetypes by ID and by tier.
type EnemyCatalog struct {
	byID     map[string]*EnemyArchetype
	byTier   [TierCount][]*EnemyArchetype
	all      []*EnemyArchetype
	fallback bool
}

// LoadEnemyCatalog loads enemy archetypes from a YAML file.
func LoadEnemyCatalog(path string) (*EnemyCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	c, err := NewEnemyCatalog(f.Enemies)
	if err != nil {
		return nil, fmt.Errorf("enemy_list %s: %w", path, err)
	}
	return c, nil
}

// NewEnemyCatalog validates and indexes a list of archetypes.
func NewEnemyCatalog(list []EnemyArchetype) (*EnemyCatalog, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("no enemies defined")
	}
	c := &EnemyCatalog{
		byID: make(map[string]*EnemyArchetype, len(list)),
		all:  make([]*EnemyArchetype, 0, len(list)),
	}
	title := cases.Title(language.English)
	for i := range list {
		a := list[i]
		switch {
		case a.ID == "":
			return nil, fmt.Errorf("enemy #%d has no id", i)
		case a.Tier < 1 || a.Tier > TierCount:
			return nil, fmt.Errorf("enemy %q: tier %d outside 1..%d", a.ID, a.Tier, TierCount)
		case a.DifficultyCost <= 0:
			return nil, fmt.Errorf("enemy %q: difficulty_cost must be positive", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("enemy %q defined twice", a.ID)
		}
		if a.Name == "" {
			a.Name = title.String(strings.ReplaceAll(a.ID, "_", " "))
		}
		if a.Stats.MaxHP <= 0 {
			a.Stats.MaxHP = 1
		}
		arch := &a
		c.byID[a.ID] = arch
		c.byTier[a.Tier-1] = append(c.byTier[a.Tier-1], arch)
		c.all = append(c.all, arch)
	}
	// Stable iteration order regardless of file order within a tier.
	for t := range c.byTier {
		sort.SliceStable(c.byTier[t], func(i, j int) bool {
			return c.byTier[t][i].DifficultyCost < c.byTier[t][j].DifficultyCost
		})
	}
	return c, nil
}

// FallbackCatalog is the single-tier, single-archetype catalog used when no
// enemy data could be loaded.
func FallbackCatalog() *EnemyCatalog {
	c, _ := NewEnemyCatalog([]EnemyArchetype{{
		ID:             "grunt",
		Tier:           1,
		DifficultyCost: 1,
		Stats:          Stats{MaxHP: 10, Speed: 60, Damage: 5, Radius: 8, XP: 1},
	}})
	c.fallback = true
	return c
}

// Get returns an archetype by ID, or nil if not found.
func (c *EnemyCatalog) Get(id string) *EnemyArchetype {
	return c.byID[id]
}

// Tier returns the archetypes of tier t (1-based), cheapest first.
func (c *EnemyCatalog) Tier(t int) []*EnemyArchetype {
	if t < 1 || t > TierCount {
		return nil
	}
	return c.byTier[t-1]
}

// All returns every archetype in file order.
func (c *EnemyCatalog) All() []*EnemyArchetype {
	return c.all
}

// Default returns the cheapest archetype of the lowest populated tier.
func (c *EnemyCatalog) Default() *EnemyArchetype {
	for t := range c.byTier {
		if len(c.byTier[t]) > 0 {
			return c.byTier[t][0]
		}
	}
	return nil
}

// Count returns the number of loaded archetypes.
func (c *EnemyCatalog) Count() int {
	return len(c.all)
}

// IsFallback reports whether this is the synthetic fallback catalog.
func (c *EnemyCatalog) IsFallback() bool {
	return c.fallback
}
