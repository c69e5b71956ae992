package npc

import (
	"sync"

	"github.com/google/uuid"

	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
)

// fakeClient records every record it is sent.
type fakeClient struct {
	id   uint64
	inst *world.Instance
	tags world.Tags

	mu   sync.Mutex
	sent []packet.Record
}

func newFakeClient(id uint64, inst *world.Instance) *fakeClient {
	return &fakeClient{id: id, inst: inst}
}

func (c *fakeClient) ID() uint64                { return c.id }
func (c *fakeClient) Tags() *world.Tags         { return &c.tags }
func (c *fakeClient) Instance() *world.Instance { return c.inst }

func (c *fakeClient) Send(rec packet.Record) {
	c.mu.Lock()
	c.sent = append(c.sent, packet.Unwrap(rec))
	c.mu.Unlock()
}

func (c *fakeClient) records() []packet.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]packet.Record(nil), c.sent...)
}

func (c *fakeClient) reset() {
	c.mu.Lock()
	c.sent = nil
	c.mu.Unlock()
}

func (c *fakeClient) opcodes() []byte {
	var out []byte
	for _, r := range c.records() {
		out = append(out, r.Opcode())
	}
	return out
}

func (c *fakeClient) count(op byte) int {
	n := 0
	for _, r := range c.records() {
		if r.Opcode() == op {
			n++
		}
	}
	return n
}

// retracts returns the UUID lists of every Retract received, in order.
func (c *fakeClient) retracts() [][]uuid.UUID {
	var out [][]uuid.UUID
	for _, r := range c.records() {
		if rt, ok := r.(packet.Retract); ok {
			out = append(out, rt.UUIDs)
		}
	}
	return out
}

func kindPtr(k world.Kind) *world.Kind { return &k }
func strPtr(s string) *string          { return &s }
