package sts

import (
	"math"
	"testing"
)

func TestSignMagnitudeEncode(t *testing.T) {
	tests := []struct {
		value  int
		lo, hi byte
	}{
		{300, 0x2C, 0x01},  // raw 0x012C
		{-300, 0x2C, 0x81}, // raw 0x812C: bit 15 set, magnitude 300
		{0, 0x00, 0x00},
		{1, 0x01, 0x00},
		{-1, 0x01, 0x80},
		{32767, 0xFF, 0x7F},
		{-32767, 0xFF, 0xFF},
	}

	for _, tt := range tests {
		lo, hi := encodeSignMagnitude(tt.value)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("encodeSignMagnitude(%d) = (0x%02X, 0x%02X), want (0x%02X, 0x%02X)",
				tt.value, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestSignMagnitudeRoundTrip(t *testing.T) {
	for _, v := range []int{-32767, -300, -1, 0, 1, 300, 32767} {
		lo, hi := encodeSignMagnitude(v)
		if got := decodeSignMagnitude(lo, hi); got != v {
			t.Errorf("round trip of %d gave %d", v, got)
		}
	}
}

// Sign-magnitude is not two's complement: the wire value for -300 must not
// equal the int16 bit pattern.
func TestSignMagnitudeIsNotTwosComplement(t *testing.T) {
	lo, hi := encodeSignMagnitude(-300)
	raw := decodeWord(lo, hi)
	negThreeHundred := int16(-300)
	twos := int(uint16(negThreeHundred))
	if raw == twos {
		t.Errorf("raw 0x%04X matches two's complement encoding", raw)
	}
	if raw != 0x812C {
		t.Errorf("raw = 0x%04X, want 0x812C", raw)
	}
}

func TestWordEncoding(t *testing.T) {
	tests := []struct {
		value  int
		lo, hi byte
	}{
		{0, 0x00, 0x00},
		{0x012C, 0x2C, 0x01},
		{2048, 0x00, 0x08},
		{0xFFFF, 0xFF, 0xFF},
	}

	for _, tt := range tests {
		lo, hi := encodeWord(tt.value)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("encodeWord(%d) = (0x%02X, 0x%02X), want (0x%02X, 0x%02X)",
				tt.value, lo, hi, tt.lo, tt.hi)
		}
		if got := decodeWord(lo, hi); got != tt.value {
			t.Errorf("decodeWord round trip of %d gave %d", tt.value, got)
		}
	}
}

func TestCurrentScale(t *testing.T) {
	// 1000 LSB at 6.5 mA per LSB is 6.5 A.
	if got := float64(1000) * CurrentScale; math.Abs(got-6.5) > 1e-9 {
		t.Errorf("scaled current = %f, want 6.5", got)
	}
}
