package sts

import (
	"fmt"
	"sync"
	"time"
)

// settleDelay gives the last stop bit time to leave the line after a write
// before the direction switches back to receive.
const settleDelay = 200 * time.Microsecond

// DefaultTimeout bounds the wait for a response frame. It is a fixed value,
// independent of the configured baud rate; at very low bus speeds a long
// response can exceed it. (Carried over from the original driver.)
const DefaultTimeout = 10 * time.Millisecond

// Bus serializes transactions on the shared half-duplex line. A transaction
// is send → settle → receive → validate; the transmit-enable line is asserted
// for exactly the send phase and released on every exit path.
type Bus struct {
	mu      sync.Mutex
	t       Transport
	timeout time.Duration
}

// NewBus wraps a transport. A zero timeout selects DefaultTimeout.
func NewBus(t Transport, timeout time.Duration) *Bus {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Bus{t: t, timeout: timeout}
}

// send writes one frame with the transmit line held high for the duration of
// the write. The deferred release also runs on error returns, so the bus is
// never left in the transmit state.
func (b *Bus) send(frame []byte) error {
	if err := b.t.SetTransmitEnable(true); err != nil {
		return fmt.Errorf("assert transmit: %w", err)
	}
	defer func() {
		time.Sleep(settleDelay)
		b.t.SetTransmitEnable(false)
	}()

	n, err := b.t.Write(frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrTimeout, n, len(frame))
	}
	return nil
}

// Write sends an addressed instruction without waiting for a reply.
func (b *Bus) Write(id, instruction byte, params []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send(EncodeFrame(id, instruction, params))
}

// Broadcast sends an instruction to every servo on the bus. Broadcasts never
// produce a response, so there is no confirmation that the servos applied it.
func (b *Bus) Broadcast(instruction byte, params []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send(EncodeFrame(BroadcastID, instruction, params))
}

// Transact runs a complete write-then-read transaction and returns the
// response parameter bytes (status byte first). Stale input is flushed before
// the exchange so earlier unread acknowledgements cannot shift the frame.
func (b *Bus) Transact(id, instruction byte, params []byte, replyParams int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.t.FlushInput(); err != nil {
		return nil, fmt.Errorf("flush input: %w", err)
	}
	if err := b.send(EncodeFrame(id, instruction, params)); err != nil {
		return nil, err
	}
	raw, err := b.t.ReadExact(replyParams+5, b.timeout)
	if err != nil {
		return nil, err
	}
	return DecodeFrame(id, replyParams, raw)
}
