package sts

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Transport is the byte channel a Bus runs transactions over. Implementations
// wrap a physical port; tests substitute a simulated one.
type Transport interface {
	Write(p []byte) (int, error)

	// ReadExact reads exactly n bytes, giving up once timeout has elapsed.
	// A short read returns the bytes received so far and an error wrapping
	// ErrTimeout.
	ReadExact(n int, timeout time.Duration) ([]byte, error)

	// FlushInput discards any unread inbound bytes.
	FlushInput() error

	// SetTransmitEnable drives the direction control line of the half-duplex
	// bus: high while this side transmits, low while it listens.
	SetTransmitEnable(on bool) error
}

// pollInterval is how long the serial port blocks per read attempt inside
// the ReadExact loop.
const pollInterval = 2 * time.Millisecond

// SerialTransport drives servos over a serial port, using the RTS line as
// the transmit-enable control. Adapters with automatic direction switching
// ignore RTS, so the same transport works there too.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens the named port at the given baud rate (8N1 framing, as the
// servos require) and returns a transport for it.
func OpenSerial(name string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(pollInterval); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	total := 0
	deadline := time.Now().Add(timeout)

	for total < n {
		if !time.Now().Before(deadline) {
			break
		}
		rd, err := t.port.Read(buf[total:])
		if err != nil {
			return buf[:total], fmt.Errorf("read: %w", err)
		}
		total += rd
	}

	if total < n {
		return buf[:total], fmt.Errorf("%w: got %d of %d bytes", ErrTimeout, total, n)
	}
	return buf, nil
}

func (t *SerialTransport) FlushInput() error {
	return t.port.ResetInputBuffer()
}

func (t *SerialTransport) SetTransmitEnable(on bool) error {
	return t.port.SetRTS(on)
}

// Close closes the underlying port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
