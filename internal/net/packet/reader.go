package packet

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Reader reads packet fields from a frame payload.
// Byte 0 is always the opcode. Reads past the end return zero values so a
// truncated packet degrades to defaults instead of panicking.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip opcode byte
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadBool reads 1 byte as a bool.
func (r *Reader) ReadBool() bool {
	return r.ReadC() != 0
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	if r.off+8 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadUUID reads 16 raw bytes.
func (r *Reader) ReadUUID() uuid.UUID {
	var id uuid.UUID
	if r.off+16 > len(r.data) {
		return id
	}
	copy(id[:], r.data[r.off:r.off+16])
	r.off += 16
	return id
}

// ReadS reads a null-terminated string.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			s := string(r.data[start:r.off])
			r.off++ // skip null terminator
			return s
		}
		r.off++
	}
	return string(r.data[start:r.off])
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
