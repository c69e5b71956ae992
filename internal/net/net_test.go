package net

import (
	"bytes"
	gonet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/net/packet"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{0x42, 1, 2, 3}))
	assert.Equal(t, []byte{6, 0, 0x42, 1, 2, 3}, buf.Bytes())

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 1, 2, 3}, got)
}

func TestFrame_Errors(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.Error(t, err, "empty payload")

	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 1}))
	assert.Error(t, err, "short payload")

	err = WriteFrame(&bytes.Buffer{}, make([]byte, maxFramePayload+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func newPipeSession(t *testing.T) (*Session, gonet.Conn) {
	t.Helper()
	server, client := gonet.Pipe()
	s := NewSession(server, 1, 8, 8, 0, zap.NewNop())
	s.Start()
	t.Cleanup(func() {
		s.Close()
		client.Close()
	})
	return s, client
}

func TestSession_SendIsBufferedUntilFlush(t *testing.T) {
	s, client := newPipeSession(t)

	rec := packet.NewRetract()
	s.Send(rec.Encode())
	assert.Equal(t, 1, s.Pending())
	assert.Empty(t, s.OutQueue)

	s.FlushOutput()
	assert.Zero(t, s.Pending())

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	got, err := ReadFrame(client)
	require.NoError(t, err)
	assert.Equal(t, rec.Encode(), got)
}

func TestSession_ReadLoopQueuesFrames(t *testing.T) {
	s, client := newPipeSession(t)

	go WriteFrame(client, []byte{packet.C_OPCODE_TELEPORT_CONFIRM, 1, 0, 0, 0})

	select {
	case data := <-s.InQueue:
		assert.Equal(t, byte(packet.C_OPCODE_TELEPORT_CONFIRM), data[0])
	case <-time.After(2 * time.Second):
		t.Fatal("frame not queued")
	}
}

func TestSession_CloseStopsSends(t *testing.T) {
	s, _ := newPipeSession(t)
	s.Close()
	s.Close()

	assert.True(t, s.IsClosed())
	assert.Equal(t, packet.StateDisconnecting, s.State())
	s.Send([]byte{1})
	assert.Zero(t, s.Pending())
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore()
	a, _ := newPipeSession(t)
	st.Add(a)
	assert.Equal(t, 1, st.Count())
	assert.Same(t, a, st.Get(1))

	seen := 0
	st.ForEach(func(s *Session) {
		seen++
		st.Remove(s.ID)
	})
	assert.Equal(t, 1, seen)
	assert.Nil(t, st.Get(1))
}
