// Package sts implements the wire protocol for STS-series serial bus servos.
//
// The servos share one half-duplex serial line. Every exchange is a framed
// packet: two marker bytes, the servo id, a length byte, an instruction,
// parameter bytes and a one-byte complement checksum.
package sts

import (
	"errors"
	"fmt"
)

// Instruction codes understood by the servo firmware.
const (
	InstPing      byte = 0x01
	InstRead      byte = 0x02
	InstWrite     byte = 0x03
	InstRegWrite  byte = 0x04 // deferred write, applied on ACTION
	InstAction    byte = 0x05
	InstReset     byte = 0x06
	InstSyncWrite byte = 0x83
)

// Special id values. Ids 0x00-0xFD address individual servos, 0xFE addresses
// every servo at once (no response follows), and 0xFF is the frame marker and
// must never be used as an id.
const (
	BroadcastID byte = 0xFE
	MaxID       byte = 0xFD
)

const headerByte byte = 0xFF

// Response validation failure classes. DecodeFrame checks these in order, so
// a frame with several defects reports the first one found.
var (
	ErrTimeout    = errors.New("short read")
	ErrHeader     = errors.New("bad frame marker")
	ErrIDMismatch = errors.New("id mismatch")
	ErrLength     = errors.New("length mismatch")
	ErrChecksum   = errors.New("checksum mismatch")
)

// Checksum computes the frame checksum: the bitwise complement of the byte
// sum over id, length, instruction and parameters.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum
}

// EncodeFrame builds an outbound frame for the given servo id, instruction
// and parameter bytes.
func EncodeFrame(id, instruction byte, params []byte) []byte {
	frame := make([]byte, 0, 6+len(params))
	frame = append(frame, headerByte, headerByte, id, byte(len(params)+2), instruction)
	frame = append(frame, params...)
	frame = append(frame, Checksum(frame[2:]))
	return frame
}

// DecodeFrame validates a response frame from servo id carrying paramCount
// parameter bytes and returns those bytes. For addressed instructions the
// first parameter is the servo's status byte.
func DecodeFrame(id byte, paramCount int, raw []byte) ([]byte, error) {
	if len(raw) != paramCount+5 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrTimeout, len(raw), paramCount+5)
	}
	if raw[0] != headerByte || raw[1] != headerByte {
		return nil, fmt.Errorf("%w: % X", ErrHeader, raw[:2])
	}
	if raw[2] != id {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrIDMismatch, raw[2], id)
	}
	if raw[3] != byte(paramCount+1) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLength, raw[3], paramCount+1)
	}
	if sum := Checksum(raw[2 : len(raw)-1]); sum != raw[len(raw)-1] {
		return nil, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrChecksum, raw[len(raw)-1], sum)
	}
	return raw[4 : 4+paramCount], nil
}
