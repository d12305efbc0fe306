package handler

import (
	"github.com/l1jgo/horde/internal/core/event"
	"github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
	"github.com/l1jgo/horde/internal/spawn"
)

// BuildStatus encodes S_STATUS:
// [C state][C enabled][D wave][F timer][F duration][F progress][D pending][D active][D in-flight][F multiplier]
func BuildStatus(st spawn.Status) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_STATUS)
	w.WriteC(byte(st.State))
	w.WriteBool(st.Enabled)
	w.WriteD(int32(st.Wave))
	w.WriteF(st.Timer)
	w.WriteF(st.Duration)
	w.WriteF(st.Progress)
	w.WriteD(int32(st.Pending))
	w.WriteD(int32(st.Active))
	w.WriteD(int32(st.InFlight))
	w.WriteF(st.Multiplier)
	return w.Bytes()
}

// BuildWaveStarted encodes S_WAVE_STARTED:
// [D wave][D enemies][F budget][F duration][F multiplier][D over-budget][5×D tier counts]
func BuildWaveStarted(e event.WaveStarted) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WAVE_STARTED)
	w.WriteD(int32(e.Wave))
	w.WriteD(int32(e.EnemyCount))
	w.WriteF(e.Budget)
	w.WriteF(e.Duration)
	w.WriteF(e.Multiplier)
	w.WriteD(int32(e.OverBudget))
	for _, n := range e.TierCounts {
		w.WriteD(int32(n))
	}
	return w.Bytes()
}

// BuildEnemySpawned encodes S_ENEMY_SPAWNED: [D wave][Q entity][S archetype][F x][F y]
func BuildEnemySpawned(e event.EnemySpawned) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENEMY_SPAWNED)
	w.WriteD(int32(e.Wave))
	w.WriteQ(uint64(e.EntityID))
	w.WriteS(e.ArchetypeID)
	w.WriteF(e.X)
	w.WriteF(e.Y)
	return w.Bytes()
}

// BuildWaveCompleted encodes S_WAVE_COMPLETED:
// [D wave][F seconds][C survived][D spawned][D leftover][F budget][F spent][F old mult][F new mult]
func BuildWaveCompleted(e event.WaveCompleted) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WAVE_COMPLETED)
	w.WriteD(int32(e.Wave))
	w.WriteF(e.DurationSec)
	w.WriteBool(e.PlayerSurvived)
	w.WriteD(int32(e.Spawned))
	w.WriteD(int32(e.Leftover))
	w.WriteF(e.Budget)
	w.WriteF(e.SpentBudget)
	w.WriteF(e.MultiplierOld)
	w.WriteF(e.MultiplierNew)
	return w.Bytes()
}

// SubscribeFeed broadcasts wave lifecycle events to every connected session.
// Per-enemy spawn packets are only sent when spawns is true.
func SubscribeFeed(bus *event.Bus, store *net.SessionStore, spawns bool) {
	event.Subscribe(bus, func(e event.WaveStarted) {
		store.Broadcast(BuildWaveStarted(e))
	})
	event.Subscribe(bus, func(e event.WaveCompleted) {
		store.Broadcast(BuildWaveCompleted(e))
	})
	if spawns {
		event.Subscribe(bus, func(e event.EnemySpawned) {
			store.Broadcast(BuildEnemySpawned(e))
		})
	}
}
