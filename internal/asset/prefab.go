// Package asset instantiates entities from prefab files without blocking the
// game loop.
package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/task"
)

// Service instantiates an entity for a prefab key. The future resolves to
// the zero EntityID when the prefab cannot be produced.
type Service interface {
	InstantiateAsync(key string, pos component.Vec2) *task.Future[ecs.EntityID]
}

// Prefab is the on-disk description of an entity's visual footprint.
type Prefab struct {
	Sprite string  `yaml:"sprite"`
	Radius float64 `yaml:"radius"`
}

// PrefabLoader reads <dir>/<key>.yaml on a worker goroutine and creates the
// entity on the loop goroutine. Parsed prefabs and misses are cached until
// Invalidate.
type PrefabLoader struct {
	dir     string
	world   *ecs.World
	stores  *component.Stores
	tasks   *task.Scheduler
	cache   map[string]*Prefab
	missing map[string]bool
	log     *zap.Logger
}

func NewPrefabLoader(dir string, world *ecs.World, stores *component.Stores, tasks *task.Scheduler, log *zap.Logger) *PrefabLoader {
	return &PrefabLoader{
		dir:     dir,
		world:   world,
		stores:  stores,
		tasks:   tasks,
		cache:   make(map[string]*Prefab),
		missing: make(map[string]bool),
		log:     log,
	}
}

func (l *PrefabLoader) InstantiateAsync(key string, pos component.Vec2) *task.Future[ecs.EntityID] {
	if p, ok := l.cache[key]; ok {
		return task.Resolved(l.materialize(p, pos))
	}
	if l.missing[key] {
		return task.Resolved(ecs.EntityID(0))
	}

	path, err := l.path(key)
	if err != nil {
		l.log.Warn("bad prefab key", zap.String("key", key), zap.Error(err))
		return task.Resolved(ecs.EntityID(0))
	}

	load := task.Go(func() *Prefab {
		p, err := ReadPrefab(path)
		if err != nil {
			l.log.Debug("prefab unavailable", zap.String("key", key), zap.Error(err))
			return nil
		}
		return p
	})
	return task.Map(l.tasks, load, func(p *Prefab) ecs.EntityID {
		if p == nil {
			l.missing[key] = true
			return 0
		}
		l.cache[key] = p
		return l.materialize(p, pos)
	})
}

// Invalidate drops cached prefabs and misses so the next request rereads disk.
func (l *PrefabLoader) Invalidate() {
	clear(l.cache)
	clear(l.missing)
}

func (l *PrefabLoader) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(l.dir, filepath.FromSlash(key)+".yaml"), nil
}

func (l *PrefabLoader) materialize(p *Prefab, pos component.Vec2) ecs.EntityID {
	id := l.world.CreateEntity()
	l.stores.Transforms.Set(id, &component.Transform{Pos: pos})
	l.stores.Bodies.Set(id, &component.Body{Radius: p.Radius, Sprite: p.Sprite})
	return id
}

// ReadPrefab parses one prefab file.
func ReadPrefab(path string) (*Prefab, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab: %w", err)
	}
	var p Prefab
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse prefab %s: %w", path, err)
	}
	return &p, nil
}
