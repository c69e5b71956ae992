package packet

import (
	"sync"

	"github.com/google/uuid"
)

// Record is one application-level server message.
type Record interface {
	Opcode() byte
	Encode() []byte
}

// GameMode values carried by an Announce entry.
type GameMode byte

const (
	GameModeSurvival GameMode = iota
	GameModeCreative
	GameModeAdventure
	GameModeSpectator
)

// Property is a signed profile property, e.g. "textures".
type Property struct {
	Name      string
	Value     string
	Signature string
}

// Announce adds an identity to the client's player list.
type Announce struct {
	UUID        uuid.UUID
	Label       string
	Properties  []Property
	Listed      bool
	Latency     int32
	GameMode    GameMode
	DisplayName string
}

func (Announce) Opcode() byte { return S_OPCODE_PLAYER_INFO_ADD }

func (a Announce) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_PLAYER_INFO_ADD)
	w.WriteUUID(a.UUID)
	w.WriteS(a.Label)
	w.WriteC(byte(len(a.Properties)))
	for _, p := range a.Properties {
		w.WriteS(p.Name)
		w.WriteS(p.Value)
		w.WriteBool(p.Signature != "")
		if p.Signature != "" {
			w.WriteS(p.Signature)
		}
	}
	w.WriteBool(a.Listed)
	w.WriteD(a.Latency)
	w.WriteC(byte(a.GameMode))
	w.WriteS(a.DisplayName)
	return w.Bytes()
}

// Retract removes one or more identities from the client's player list.
// Removing an identity the client does not know is a no-op on the client.
type Retract struct {
	UUIDs []uuid.UUID
}

func NewRetract(ids ...uuid.UUID) Retract {
	return Retract{UUIDs: ids}
}

func (Retract) Opcode() byte { return S_OPCODE_PLAYER_INFO_REMOVE }

func (r Retract) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_PLAYER_INFO_REMOVE)
	w.WriteH(uint16(len(r.UUIDs)))
	for _, id := range r.UUIDs {
		w.WriteUUID(id)
	}
	return w.Bytes()
}

// VisualDestroy removes rendered entities by handle.
type VisualDestroy struct {
	Handles []uint64
}

func (VisualDestroy) Opcode() byte { return S_OPCODE_DESTROY_ENTITIES }

func (d VisualDestroy) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_DESTROY_ENTITIES)
	w.WriteH(uint16(len(d.Handles)))
	for _, h := range d.Handles {
		w.WriteQ(h)
	}
	return w.Bytes()
}

// Spawn renders an entity for the client.
type Spawn struct {
	Handle uint64
	UUID   uuid.UUID
	Kind   byte
	X, Y   int32
}

func (Spawn) Opcode() byte { return S_OPCODE_SPAWN_ENTITY }

func (s Spawn) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_SPAWN_ENTITY)
	w.WriteQ(s.Handle)
	w.WriteUUID(s.UUID)
	w.WriteC(s.Kind)
	w.WriteD(s.X)
	w.WriteD(s.Y)
	return w.Bytes()
}

// Metadata carries the render metadata of one entity.
type Metadata struct {
	Handle            uint64
	CustomName        string
	CustomNameVisible bool
	SkinParts         byte
}

func (Metadata) Opcode() byte { return S_OPCODE_ENTITY_METADATA }

func (m Metadata) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_ENTITY_METADATA)
	w.WriteQ(m.Handle)
	w.WriteS(m.CustomName)
	w.WriteBool(m.CustomNameVisible)
	w.WriteC(m.SkinParts)
	return w.Bytes()
}

// Position places the client in an instance. The client answers with
// C_TELEPORT_CONFIRM carrying TeleportID once it has arrived.
type Position struct {
	TeleportID int32
	Instance   string
	X, Y       int32
}

func (Position) Opcode() byte { return S_OPCODE_POSITION }

func (p Position) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_POSITION)
	w.WriteD(p.TeleportID)
	w.WriteS(p.Instance)
	w.WriteD(p.X)
	w.WriteD(p.Y)
	return w.Bytes()
}

// LoginOK acknowledges C_JOIN.
type LoginOK struct {
	SessionID uint64
	Name      string
}

func (LoginOK) Opcode() byte { return S_OPCODE_LOGIN_OK }

func (l LoginOK) Encode() []byte {
	w := NewWriterWithOpcode(S_OPCODE_LOGIN_OK)
	w.WriteQ(l.SessionID)
	w.WriteS(l.Name)
	return w.Bytes()
}

// Cached wraps a record that is sent repeatedly; it is encoded at most once.
type Cached struct {
	rec  Record
	once sync.Once
	data []byte
}

func NewCached(rec Record) *Cached {
	return &Cached{rec: rec}
}

func (c *Cached) Opcode() byte { return c.rec.Opcode() }

func (c *Cached) Encode() []byte {
	c.once.Do(func() { c.data = c.rec.Encode() })
	return c.data
}

// Record returns the wrapped record.
func (c *Cached) Record() Record { return c.rec }

// Unwrap returns the record behind a Cached, or rec itself.
func Unwrap(rec Record) Record {
	if c, ok := rec.(*Cached); ok {
		return c.rec
	}
	return rec
}
