package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/npcsync/server/internal/net/packet"
)

const writeTimeout = 10 * time.Second

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; inbound packets are dispatched by the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP   string
	Name string

	outMu  sync.Mutex
	outBuf [][]byte // buffered records, flushed by OutputSystem

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		conn:      conn,
		InQueue:   make(chan []byte, inSize),
		OutQueue:  make(chan []byte, outSize),
		IP:        conn.RemoteAddr().String(),
		closeCh:   make(chan struct{}),
		pktPerSec: pktPerSec,
		log:       log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers an encoded record. Nothing reaches the socket until
// FlushOutput runs in the output phase, so everything sent during one tick
// leaves in send order before anything sent in the next tick.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outMu.Lock()
	s.outBuf = append(s.outBuf, data)
	s.outMu.Unlock()
}

// Pending returns the number of buffered records.
func (s *Session) Pending() int {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return len(s.outBuf)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	s.outMu.Lock()
	buf := s.outBuf
	s.outBuf = nil
	s.outMu.Unlock()

	for _, data := range buf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow connection")
			s.Close()
			return
		}
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop reads frames from the connection and pushes them onto InQueue
// for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, disconnecting", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Blocks only this client's reader; packets are never dropped so
		// world-confirm always follows the spawn it acknowledges.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop writes queued records as frames to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOne(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(data []byte) bool {
	if len(data) > 0 {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
			zap.Int("len", len(data)),
		)
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := WriteFrame(s.conn, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
