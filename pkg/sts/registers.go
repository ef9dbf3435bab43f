package sts

// Register addresses (STS3215 memory table). EEPROM registers below RegWriteLock
// persist across power cycles; the id and position correction registers can
// only be written while the write lock is cleared.
const (
	RegID                 byte = 0x05
	RegBaudRate           byte = 0x06
	RegPositionCorrection byte = 0x1F
	RegOperationMode      byte = 0x21
	RegTorqueSwitch       byte = 0x28
	RegTargetAcceleration byte = 0x29
	RegTargetPosition     byte = 0x2A
	RegRunningSpeed       byte = 0x2E
	RegWriteLock          byte = 0x37
	RegCurrentPosition    byte = 0x38
	RegCurrentSpeed       byte = 0x3A
	RegCurrentTemperature byte = 0x3F
	RegMovingStatus       byte = 0x42
	RegCurrentCurrent     byte = 0x45
)

// Operation modes for RegOperationMode.
const (
	ModePosition byte = 0
	ModeVelocity byte = 1
	ModePWM      byte = 2
	ModeStep     byte = 3
)

// CurrentScale converts the raw current register value to amperes.
const CurrentScale = 0.0065

// encodeWord splits a value into the little-endian byte pair the two-byte
// registers expect.
func encodeWord(v int) (lo, hi byte) {
	return byte(v & 0xFF), byte((v >> 8) & 0xFF)
}

func decodeWord(lo, hi byte) int {
	return int(lo) | int(hi)<<8
}

// encodeSignMagnitude encodes a signed value the way the firmware stores
// velocities: bit 15 carries the sign and the low 15 bits the magnitude.
// This is not two's complement.
func encodeSignMagnitude(v int) (lo, hi byte) {
	raw := v
	if v < 0 {
		raw = -v | 0x8000
	}
	return encodeWord(raw)
}

func decodeSignMagnitude(lo, hi byte) int {
	raw := decodeWord(lo, hi)
	v := raw &^ 0x8000
	if raw&0x8000 != 0 {
		v = -v
	}
	return v
}
