package sts

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name   string
		id     byte
		instr  byte
		params []byte
		expect []byte
	}{
		{"ping", 0x01, InstPing, nil, []byte{0xFF, 0xFF, 0x01, 0x02, 0x01, 0xFB}},
		{"read two bytes", 0x01, InstRead, []byte{RegCurrentPosition, 2}, []byte{0xFF, 0xFF, 0x01, 0x04, 0x02, 0x38, 0x02, 0xBE}},
		{"broadcast action", BroadcastID, InstAction, nil, []byte{0xFF, 0xFF, 0xFE, 0x02, 0x05, 0xFA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeFrame(tt.id, tt.instr, tt.params)
			if !bytes.Equal(got, tt.expect) {
				t.Errorf("EncodeFrame() = % X, want % X", got, tt.expect)
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		id     byte
		instr  byte
		params []byte
	}{
		{"no params", 0x01, InstPing, nil},
		{"one param", 0x05, InstWrite, []byte{0x2A}},
		{"write block", 0x0A, InstWrite, []byte{0x2A, 0x00, 0x08, 0, 0, 0xE8, 0x03}},
		{"max id", MaxID, InstRead, []byte{0x38, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := EncodeFrame(tt.id, tt.instr, tt.params)

			// A request decodes with the instruction byte in the status slot.
			decoded, err := DecodeFrame(tt.id, len(tt.params)+1, frame)
			if err != nil {
				t.Fatalf("DecodeFrame() error: %v", err)
			}
			if decoded[0] != tt.instr {
				t.Errorf("decoded[0] = 0x%02X, want instruction 0x%02X", decoded[0], tt.instr)
			}
			if !bytes.Equal(decoded[1:], tt.params) {
				t.Errorf("decoded params = % X, want % X", decoded[1:], tt.params)
			}
		})
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	// Valid response: id 1, status 0.
	good := []byte{0xFF, 0xFF, 0x01, 0x02, 0x00, 0xFC}

	tests := []struct {
		name   string
		id     byte
		count  int
		raw    []byte
		expect error
	}{
		{"ok", 0x01, 1, good, nil},
		{"short read", 0x01, 1, good[:4], ErrTimeout},
		{"empty", 0x01, 1, nil, ErrTimeout},
		{"extra bytes", 0x01, 1, append(append([]byte{}, good...), 0x00), ErrTimeout},
		{"bad first marker", 0x01, 1, []byte{0xFE, 0xFF, 0x01, 0x02, 0x00, 0xFC}, ErrHeader},
		{"bad second marker", 0x01, 1, []byte{0xFF, 0x00, 0x01, 0x02, 0x00, 0xFC}, ErrHeader},
		{"wrong id", 0x02, 1, good, ErrIDMismatch},
		{"wrong length byte", 0x01, 1, []byte{0xFF, 0xFF, 0x01, 0x03, 0x00, 0xFB}, ErrLength},
		{"corrupt checksum", 0x01, 1, []byte{0xFF, 0xFF, 0x01, 0x02, 0x00, 0xFD}, ErrChecksum},
		{"corrupt payload", 0x01, 1, []byte{0xFF, 0xFF, 0x01, 0x02, 0x01, 0xFC}, ErrChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := DecodeFrame(tt.id, tt.count, tt.raw)
			if tt.expect == nil {
				if err != nil {
					t.Fatalf("DecodeFrame() error: %v", err)
				}
				if len(params) != tt.count {
					t.Errorf("got %d params, want %d", len(params), tt.count)
				}
				return
			}
			if !errors.Is(err, tt.expect) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tt.expect)
			}
			if params != nil {
				t.Errorf("DecodeFrame() returned params % X on error", params)
			}
		})
	}
}

// Flipping any single bit of a frame must make decoding fail, and flips past
// the fixed prefix must surface as checksum mismatches.
func TestDecodeFrameBitFlips(t *testing.T) {
	frame := EncodeFrame(0x01, InstWrite, []byte{RegTargetAcceleration, 50})
	paramCount := 3 // instruction slot + two parameter bytes

	for i := range frame {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), frame...)
			mutated[i] ^= 1 << bit

			_, err := DecodeFrame(0x01, paramCount, mutated)
			if err == nil {
				t.Fatalf("DecodeFrame accepted frame with byte %d bit %d flipped", i, bit)
			}
			if i >= 4 && !errors.Is(err, ErrChecksum) {
				t.Errorf("byte %d bit %d: error = %v, want %v", i, bit, err, ErrChecksum)
			}
		}
	}
}

func TestChecksum(t *testing.T) {
	// Hand-computed over id, length, instruction: ~(0x01+0x02+0x01) = 0xFB.
	if got := Checksum([]byte{0x01, 0x02, 0x01}); got != 0xFB {
		t.Errorf("Checksum = 0x%02X, want 0xFB", got)
	}
	// Sum overflow wraps at one byte.
	if got := Checksum([]byte{0xFF, 0xFF, 0x02}); got != ^byte(0x00) {
		t.Errorf("Checksum = 0x%02X, want 0xFF", got)
	}
}
