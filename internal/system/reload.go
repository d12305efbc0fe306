package system

import (
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/data"
)

// ChangeSource reports edited data files.
type ChangeSource interface {
	Drain() []string
	DrainErrors() []error
}

type CatalogUser interface {
	SetCatalog(c *data.EnemyCatalog)
}

type CurveUser interface {
	SetCurve(w *data.WaveCurve)
}

// ReloadTargets lists what a ReloadSystem refreshes. Nil fields are skipped.
type ReloadTargets struct {
	EnemiesPath string
	WavesPath   string
	PrefabDir   string

	Catalogs []CatalogUser
	Curves   []CurveUser
	Scripts  interface{ Reload() error }
	Prefabs  interface{ Invalidate() }
}

// ReloadSystem applies data file edits on the game loop. Plans are only
// composed at wave start, so a new catalog or curve affects the next wave.
// A table that fails to parse leaves the running one in place.
// Phase 0 (Input).
type ReloadSystem struct {
	source  ChangeSource
	targets ReloadTargets
	log     *zap.Logger

	enemiesPath string
	wavesPath   string
	prefabDir   string
}

func NewReloadSystem(source ChangeSource, targets ReloadTargets, log *zap.Logger) *ReloadSystem {
	s := &ReloadSystem{source: source, targets: targets, log: log}
	if targets.EnemiesPath != "" {
		s.enemiesPath = filepath.Clean(targets.EnemiesPath)
	}
	if targets.WavesPath != "" {
		s.wavesPath = filepath.Clean(targets.WavesPath)
	}
	if targets.PrefabDir != "" {
		s.prefabDir = filepath.Clean(targets.PrefabDir) + string(filepath.Separator)
	}
	return s
}

func (s *ReloadSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ReloadSystem) Update(_ time.Duration) {
	for _, err := range s.source.DrainErrors() {
		s.log.Warn("data watcher error", zap.Error(err))
	}
	for _, name := range s.source.Drain() {
		s.apply(filepath.Clean(name))
	}
}

func (s *ReloadSystem) apply(path string) {
	switch {
	case path == s.enemiesPath:
		cat, err := data.LoadEnemyCatalog(path)
		if err != nil {
			s.log.Warn("enemy catalog reload failed, keeping current", zap.String("path", path), zap.Error(err))
			return
		}
		for _, c := range s.targets.Catalogs {
			c.SetCatalog(cat)
		}
		s.log.Info("enemy catalog reloaded", zap.Int("archetypes", cat.Count()))

	case path == s.wavesPath:
		curve, err := data.LoadWaveCurve(path)
		if err != nil {
			s.log.Warn("wave curve reload failed, keeping current", zap.String("path", path), zap.Error(err))
			return
		}
		for _, c := range s.targets.Curves {
			c.SetCurve(curve)
		}
		s.log.Info("wave curve reloaded")

	case data.IsScriptFile(path):
		if s.targets.Scripts == nil {
			return
		}
		if err := s.targets.Scripts.Reload(); err != nil {
			s.log.Warn("script reload failed, keeping current", zap.String("path", path), zap.Error(err))
			return
		}
		s.log.Info("scripts reloaded", zap.String("path", path))

	case s.prefabDir != "" && strings.HasPrefix(path, s.prefabDir):
		if s.targets.Prefabs != nil {
			s.targets.Prefabs.Invalidate()
			s.log.Debug("prefab cache invalidated", zap.String("path", path))
		}
	}
}
