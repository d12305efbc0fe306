package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
	"github.com/l1jgo/horde/internal/spawn"
)

// Spawner is the control surface the feed exposes.
type Spawner interface {
	StartSpawning()
	StopSpawning()
	Cleanup()
	Status() spawn.Status
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Spawner Spawner
	// AdminPasswordHash is a bcrypt hash. Empty disables control commands.
	AdminPasswordHash string
	Log               *zap.Logger
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	anyState := []packet.SessionState{packet.StateConnected, packet.StateAuthenticated}
	adminOnly := []packet.SessionState{packet.StateAuthenticated}

	reg.Register(packet.C_OPCODE_AUTH,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleAuth(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_STATUS, anyState,
		func(sess any, r *packet.Reader) {
			HandleStatus(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_START, adminOnly,
		func(sess any, r *packet.Reader) {
			HandleStart(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_STOP, adminOnly,
		func(sess any, r *packet.Reader) {
			HandleStop(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CLEANUP, adminOnly,
		func(sess any, r *packet.Reader) {
			HandleCleanup(sess.(*net.Session), r, deps)
		},
	)
}
