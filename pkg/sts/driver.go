package sts

import (
	"errors"
	"time"
)

// Driver is the operation set for servos on one bus.
//
// Mutating operations report success as a boolean, matching the firmware
// vendor's reference drivers; the typed failure classes (ErrTimeout,
// ErrHeader, ErrIDMismatch, ErrLength, ErrChecksum) stay below this façade
// on Bus and DecodeFrame. Sensor reads return (value, error) since zero is a
// valid reading. No operation retries; callers that need resilience retry at
// their own layer.
type Driver struct {
	bus *Bus
}

// Config holds the settings for a Driver.
type Config struct {
	Transport Transport
	Timeout   time.Duration // response wait; zero selects DefaultTimeout
}

// New creates a driver over the given transport.
func New(cfg Config) *Driver {
	return &Driver{bus: NewBus(cfg.Transport, cfg.Timeout)}
}

// Open is a convenience that opens a serial port and returns a driver on it.
func Open(port string, baudRate int) (*Driver, *SerialTransport, error) {
	t, err := OpenSerial(port, baudRate)
	if err != nil {
		return nil, nil, err
	}
	return New(Config{Transport: t}), t, nil
}

// Ping reports whether the servo answers with a clean status byte. Any
// transport, framing or checksum failure counts as no answer.
func (d *Driver) Ping(id byte) bool {
	params, err := d.bus.Transact(id, InstPing, nil, 1)
	if err != nil {
		return false
	}
	return params[0] == 0x00
}

// Scan pings every id in [start, end] and returns the ids that answered.
func (d *Driver) Scan(start, end byte) []byte {
	if end > MaxID {
		end = MaxID
	}
	var found []byte
	for id := start; id <= end; id++ {
		if d.Ping(id) {
			found = append(found, id)
		}
	}
	return found
}

// ReadRegisters reads length bytes starting at startRegister.
func (d *Driver) ReadRegisters(id, startRegister byte, length int) ([]byte, error) {
	params, err := d.bus.Transact(id, InstRead, []byte{startRegister, byte(length)}, length+1)
	if err != nil {
		return nil, err
	}
	// params[0] is the servo status byte.
	return params[1:], nil
}

func (d *Driver) readWord(id, reg byte) (int, error) {
	data, err := d.ReadRegisters(id, reg, 2)
	if err != nil {
		return 0, err
	}
	return decodeWord(data[0], data[1]), nil
}

// writeRegisters writes data starting at startRegister. With deferred set the
// servo buffers the value until an ACTION broadcast commits it; this is how
// several individually-addressed servos start moving simultaneously.
func (d *Driver) writeRegisters(id, startRegister byte, data []byte, deferred bool) error {
	instruction := InstWrite
	if deferred {
		instruction = InstRegWrite
	}
	params := make([]byte, 0, len(data)+1)
	params = append(params, startRegister)
	params = append(params, data...)
	return d.bus.Write(id, instruction, params)
}

func (d *Driver) writeByte(id, reg, value byte, deferred bool) error {
	return d.writeRegisters(id, reg, []byte{value}, deferred)
}

func (d *Driver) writeWord(id, reg byte, value int, deferred bool) error {
	lo, hi := encodeWord(value)
	return d.writeRegisters(id, reg, []byte{lo, hi}, deferred)
}

// withUnlocked clears the EEPROM write lock, runs fn, and restores the lock.
// The relock is attempted even when fn fails, so a failed write cannot leave
// the servo permanently writable.
func (d *Driver) withUnlocked(id byte, fn func() error) error {
	if err := d.writeByte(id, RegWriteLock, 0, false); err != nil {
		return err
	}
	ferr := fn()
	lerr := d.writeByte(id, RegWriteLock, 1, false)
	if ferr != nil {
		return ferr
	}
	return lerr
}

// SetID assigns a new bus id to the servo currently answering on oldID. It
// refuses ids at or above the broadcast id and refuses to create a collision
// when another servo already answers on newID. The new id is verified with a
// ping before reporting success.
func (d *Driver) SetID(oldID, newID byte) bool {
	if oldID >= BroadcastID || newID >= BroadcastID {
		return false
	}
	if d.Ping(newID) {
		return false // id already taken
	}
	if err := d.writeByte(oldID, RegWriteLock, 0, false); err != nil {
		return false
	}
	werr := d.writeByte(oldID, RegID, newID, false)
	// Relock under whichever id the servo should now answer on.
	lockID := newID
	if werr != nil {
		lockID = oldID
	}
	lerr := d.writeByte(lockID, RegWriteLock, 1, false)
	if werr != nil || lerr != nil {
		return false
	}
	return d.Ping(newID)
}

// SetPositionOffset writes the signed two-byte position correction, an
// EEPROM-protected register.
func (d *Driver) SetPositionOffset(id byte, offset int) bool {
	return d.withUnlocked(id, func() error {
		return d.writeWord(id, RegPositionCorrection, offset, false)
	}) == nil
}

// SetTargetPosition commands a move to position at the given speed. The
// target register takes a six-byte block: position, two reserved bytes, then
// speed, written in one multi-byte write.
func (d *Driver) SetTargetPosition(id byte, position, speed int, deferred bool) bool {
	lo, hi := encodeWord(position)
	slo, shi := encodeWord(speed)
	data := []byte{lo, hi, 0, 0, slo, shi}
	return d.writeRegisters(id, RegTargetPosition, data, deferred) == nil
}

// SetTargetVelocity commands a velocity, sign-magnitude encoded.
func (d *Driver) SetTargetVelocity(id byte, velocity int, deferred bool) bool {
	lo, hi := encodeSignMagnitude(velocity)
	return d.writeRegisters(id, RegRunningSpeed, []byte{lo, hi}, deferred) == nil
}

// SetTargetAcceleration sets the acceleration ramp.
func (d *Driver) SetTargetAcceleration(id, acceleration byte, deferred bool) bool {
	return d.writeByte(id, RegTargetAcceleration, acceleration, deferred) == nil
}

// SetMode selects the operation mode (ModePosition, ModeVelocity, ModePWM,
// ModeStep).
func (d *Driver) SetMode(id, mode byte) bool {
	return d.writeByte(id, RegOperationMode, mode, false) == nil
}

// SetTorque enables or disables the servo's torque output.
func (d *Driver) SetTorque(id byte, on bool) bool {
	value := byte(0)
	if on {
		value = 1
	}
	return d.writeByte(id, RegTorqueSwitch, value, false) == nil
}

// TriggerAction broadcasts ACTION, committing every pending deferred write on
// the bus at the same instant.
func (d *Driver) TriggerAction() bool {
	return d.bus.Broadcast(InstAction, nil) == nil
}

// Reset sends the RESET instruction to a servo.
func (d *Driver) Reset(id byte) bool {
	return d.bus.Write(id, InstReset, nil) == nil
}

// SetTargetPositions starts a synchronized move on several servos with one
// broadcast frame: a single SYNCWRITE carries a seven-byte block per servo
// (id, position, two reserved bytes, speed) under one checksum. No responses
// follow.
func (d *Driver) SetTargetPositions(ids []byte, positions, speeds []int) error {
	if len(ids) != len(positions) || len(ids) != len(speeds) {
		return errors.New("ids, positions and speeds must have the same length")
	}
	params := make([]byte, 0, 2+7*len(ids))
	params = append(params, RegTargetPosition, 6)
	for i, id := range ids {
		lo, hi := encodeWord(positions[i])
		slo, shi := encodeWord(speeds[i])
		params = append(params, id, lo, hi, 0, 0, slo, shi)
	}
	return d.bus.Broadcast(InstSyncWrite, params)
}

// Position reads the current position.
func (d *Driver) Position(id byte) (int, error) {
	return d.readWord(id, RegCurrentPosition)
}

// Speed reads the current speed, sign-magnitude decoded.
func (d *Driver) Speed(id byte) (int, error) {
	data, err := d.ReadRegisters(id, RegCurrentSpeed, 2)
	if err != nil {
		return 0, err
	}
	return decodeSignMagnitude(data[0], data[1]), nil
}

// Temperature reads the temperature register. It is read as a two-byte
// unsigned value with no sign handling, as the reference driver does.
func (d *Driver) Temperature(id byte) (int, error) {
	return d.readWord(id, RegCurrentTemperature)
}

// Current reads the current draw in amperes.
func (d *Driver) Current(id byte) (float64, error) {
	raw, err := d.readWord(id, RegCurrentCurrent)
	if err != nil {
		return 0, err
	}
	return float64(raw) * CurrentScale, nil
}

// Moving reports whether the servo is still travelling to its target.
func (d *Driver) Moving(id byte) (bool, error) {
	data, err := d.ReadRegisters(id, RegMovingStatus, 1)
	if err != nil {
		return false, err
	}
	return data[0] != 0, nil
}
