package watch

import (
	"fmt"
	"testing"
	"time"

	"github.com/gwillem/stservo/pkg/sts"
)

// scriptedTransport feeds one queued response per read; nil means silence.
type scriptedTransport struct {
	responses [][]byte
}

func (s *scriptedTransport) Write(p []byte) (int, error) { return len(p), nil }

func (s *scriptedTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("%w: got 0 of %d bytes", sts.ErrTimeout, n)
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	if resp == nil || len(resp) < n {
		return nil, fmt.Errorf("%w: short response", sts.ErrTimeout)
	}
	return resp[:n], nil
}

func (s *scriptedTransport) FlushInput() error               { return nil }
func (s *scriptedTransport) SetTransmitEnable(on bool) error { return nil }

func respFrame(id byte, data ...byte) []byte {
	frame := []byte{0xFF, 0xFF, id, byte(len(data) + 1)}
	frame = append(frame, data...)
	return append(frame, sts.Checksum(frame[2:]))
}

// One servo answering all five telemetry reads, in poll order.
func telemetryScript(id byte) [][]byte {
	return [][]byte{
		respFrame(id, 0x00, 0x00, 0x08), // position 2048
		respFrame(id, 0x00, 0x2C, 0x81), // speed -300
		respFrame(id, 0x00, 0x29, 0x00), // temperature 41
		respFrame(id, 0x00, 0xE8, 0x03), // current 1000 raw
		respFrame(id, 0x00, 0x01),       // moving
	}
}

func TestControllerStep(t *testing.T) {
	transport := &scriptedTransport{responses: telemetryScript(1)}
	driver := sts.New(sts.Config{Transport: transport, Timeout: time.Millisecond})

	c := NewController(Config{Driver: driver, IDs: []byte{1}, Hz: 50})
	c.step()

	var state State
	select {
	case state = <-c.States():
	default:
		t.Fatal("no state published")
	}

	sample, ok := state.Samples[1]
	if !ok {
		t.Fatal("no sample for servo 1")
	}
	if sample.Position != 2048 {
		t.Errorf("Position = %d, want 2048", sample.Position)
	}
	if sample.Speed != -300 {
		t.Errorf("Speed = %d, want -300", sample.Speed)
	}
	if sample.Temperature != 41 {
		t.Errorf("Temperature = %d, want 41", sample.Temperature)
	}
	if sample.Current != 6.5 {
		t.Errorf("Current = %f, want 6.5", sample.Current)
	}
	if !sample.Moving {
		t.Error("Moving = false, want true")
	}
}

func TestControllerStepSkipsSilentServo(t *testing.T) {
	// Servo 1 answers nothing; servo 2 answers everything.
	script := [][]byte{nil}
	script = append(script, telemetryScript(2)...)
	transport := &scriptedTransport{responses: script}
	driver := sts.New(sts.Config{Transport: transport, Timeout: time.Millisecond})

	c := NewController(Config{Driver: driver, IDs: []byte{1, 2}})
	c.step()

	state := <-c.States()
	if _, ok := state.Samples[1]; ok {
		t.Error("got a sample for the silent servo")
	}
	if _, ok := state.Samples[2]; !ok {
		t.Error("missing sample for the answering servo")
	}

	select {
	case <-c.Logs():
	default:
		t.Error("expected a log message for the silent servo")
	}
}
