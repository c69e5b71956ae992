package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is the protocol phase a session is in. Handlers are only
// reachable from the states they were registered for.
type SessionState uint8

const (
	StateHandshake     SessionState = iota // connected, awaiting C_JOIN
	StateInWorld                           // joined an instance
	StateDisconnecting                     // closing, no handlers run
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

func (s SessionState) bit() uint32 { return 1 << s }

var (
	ErrEmptyPacket     = errors.New("empty packet")
	ErrStateNotAllowed = errors.New("opcode not allowed in session state")
)

// HandlerFunc handles one client packet. The session is passed as an opaque
// value so this package does not import the transport.
type HandlerFunc func(sess any, r *Reader)

type route struct {
	fn     HandlerFunc
	states uint32
}

// Registry routes client opcodes to handlers, gated by session state.
type Registry struct {
	routes [256]*route
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{log: log.With(zap.String("component", "packets"))}
}

// Register binds opcode to fn for the listed states. Binding an opcode twice
// is a programming error and panics.
func (reg *Registry) Register(opcode byte, states []SessionState, fn HandlerFunc) {
	if reg.routes[opcode] != nil {
		panic(fmt.Sprintf("packet: opcode %d registered twice", opcode))
	}
	rt := &route{fn: fn}
	for _, s := range states {
		rt.states |= s.bit()
	}
	reg.routes[opcode] = rt
}

// Dispatch runs the handler for data[0]. Unknown opcodes are dropped without
// error; a handler panic is recovered and returned as an error.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPacket
	}
	opcode := data[0]
	rt := reg.routes[opcode]
	if rt == nil {
		reg.log.Debug("unknown opcode", zap.Uint8("opcode", opcode), zap.Stringer("state", state))
		return nil
	}
	if rt.states&state.bit() == 0 {
		reg.log.Warn("opcode rejected",
			zap.Uint8("opcode", opcode),
			zap.Stringer("state", state))
		return fmt.Errorf("opcode %d in %s: %w", opcode, state, ErrStateNotAllowed)
	}
	return reg.call(rt.fn, sess, NewReader(data), opcode)
}

func (reg *Registry) call(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec))
			err = fmt.Errorf("opcode %d handler panic: %v", opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
