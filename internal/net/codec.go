package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Wire format of one frame: [2 bytes LE: total length including header][payload].
// The first payload byte is the opcode.

const (
	frameHeaderLen  = 2
	maxFramePayload = 0xFFFF - frameHeaderLen
)

var ErrFrameTooLarge = errors.New("frame too large")

// ReadFrame reads one frame from r and returns its payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	payloadLen := totalLen - frameHeaderLen
	if payloadLen <= 0 {
		return nil, fmt.Errorf("invalid frame length: %d", totalLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes data as one frame to w.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > maxFramePayload {
		return fmt.Errorf("write frame (%d bytes): %w", len(data), ErrFrameTooLarge)
	}
	buf := make([]byte, frameHeaderLen+len(data))
	binary.LittleEndian.PutUint16(buf, uint16(len(buf)))
	copy(buf[frameHeaderLen:], data)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
