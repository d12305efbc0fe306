package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/handler"
	"github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
)

// SessionSource is the accept side of the feed server.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem drains packet queues from all feed sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(source SessionSource, registry *packet.Registry, store *net.SessionStore, maxPerTick int, log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.log.Info("feed client disconnected", zap.Uint64("session", id))
			s.source.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		s.drain(sess)
	}

	// Replies go out now; OutputSystem flushes whatever later phases queue.
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// drain dispatches at most maxPerTick queued packets from one session.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			s.dispatch(sess, data)
		default:
			return
		}
	}
}

func (s *InputSystem) dispatch(sess *net.Session, data []byte) {
	err := s.registry.Dispatch(sess, sess.State(), data)
	if err == nil {
		return
	}
	if errors.Is(err, packet.ErrNotAllowed) {
		handler.SendDenied(sess, data[0])
		return
	}
	s.log.Debug("packet dispatch error",
		zap.Uint64("session", sess.ID),
		zap.Error(err),
	)
}
