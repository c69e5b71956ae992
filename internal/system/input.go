package system

import (
	"time"

	"github.com/npcsync/server/internal/core/event"
	coresys "github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
	"go.uber.org/zap"
)

// SessionSource delivers connected and disconnected sessions to the game loop.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer  SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	world      *world.World
	bus        *event.Bus
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(
	netServer SessionSource,
	registry *packet.Registry,
	store *net.SessionStore,
	w *world.World,
	bus *event.Bus,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		store:      store,
		world:      w,
		bus:        bus,
		maxPerTick: maxPerTick,
		log:        log.With(zap.String("component", "input")),
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	s.store.ForEach(func(sess *net.Session) {
		s.drain(sess)
		if sess.IsClosed() {
			sess.FlushOutput()
			s.handleDisconnect(sess)
			s.netServer.NotifyDead(sess.ID)
			s.store.Remove(sess.ID)
		}
	})
}

// drain dispatches up to maxPerTick queued packets of one session.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// handleDisconnect removes the player from the world. Entities it observed
// run their lose hooks; the records go nowhere since the session is closed.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	p := s.world.RemovePlayer(sess.ID)
	if p == nil {
		return
	}
	event.Emit(s.bus, world.ClientLeft{ClientID: p.ID(), Name: p.Name})
	s.log.Info("player left", zap.Uint64("session", sess.ID), zap.String("name", p.Name))
}
