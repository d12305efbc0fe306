package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
)

// HandleStatus processes C_STATUS: replies with S_STATUS.
func HandleStatus(sess *net.Session, _ *packet.Reader, deps *Deps) {
	sess.Send(BuildStatus(deps.Spawner.Status()))
}

// HandleStart processes C_START.
func HandleStart(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("feed: start spawning", zap.Uint64("session", sess.ID))
	deps.Spawner.StartSpawning()
	sess.Send(BuildStatus(deps.Spawner.Status()))
}

// HandleStop processes C_STOP.
func HandleStop(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("feed: stop spawning", zap.Uint64("session", sess.ID))
	deps.Spawner.StopSpawning()
	sess.Send(BuildStatus(deps.Spawner.Status()))
}

// HandleCleanup processes C_CLEANUP.
func HandleCleanup(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("feed: cleanup", zap.Uint64("session", sess.ID))
	deps.Spawner.Cleanup()
	sess.Send(BuildStatus(deps.Spawner.Status()))
}

// SendDenied tells the client an opcode was refused in its current state.
func SendDenied(sess *net.Session, opcode byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DENIED)
	w.WriteC(opcode)
	sess.Send(w.Bytes())
}
