// Package watch polls servo telemetry off the bus and publishes it for UIs.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/stservo/pkg/sts"
)

// Sample is one telemetry reading for one servo.
type Sample struct {
	ID          byte
	Position    int
	Speed       int
	Temperature int
	Current     float64
	Moving      bool
}

// State is the result of one poll cycle across all watched servos.
type State struct {
	Samples   map[byte]Sample
	Timestamp time.Time
	Err       error
}

// Config holds the settings for a Controller.
type Config struct {
	Driver *sts.Driver
	IDs    []byte
	Hz     int // poll frequency, defaults to 10
}

// Controller runs the polling loop. The bus is strictly one transaction at a
// time, so all reads happen sequentially on the loop goroutine; consumers get
// snapshots over a channel.
type Controller struct {
	driver *sts.Driver
	ids    []byte
	hz     int

	mu      sync.Mutex
	running bool
	stateCh chan State
	logCh   chan string
}

// NewController creates a controller for the given servos.
func NewController(cfg Config) *Controller {
	if cfg.Hz <= 0 {
		cfg.Hz = 10
	}
	return &Controller{
		driver:  cfg.Driver,
		ids:     cfg.IDs,
		hz:      cfg.Hz,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
}

// States returns a channel that receives poll results.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the poll frequency.
func (c *Controller) Hz() int {
	return c.hz
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start begins polling until the context is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	c.log("Watching %d servo(s) at %d Hz", len(c.ids), c.hz)

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			c.step()
		}
	}
}

func (c *Controller) step() {
	samples := make(map[byte]Sample, len(c.ids))

	for _, id := range c.ids {
		sample, err := c.read(id)
		if err != nil {
			c.log("servo %d: %v", id, err)
			continue
		}
		samples[id] = sample
	}

	c.sendState(State{
		Samples:   samples,
		Timestamp: time.Now(),
	})
}

func (c *Controller) read(id byte) (Sample, error) {
	pos, err := c.driver.Position(id)
	if err != nil {
		return Sample{}, fmt.Errorf("position: %w", err)
	}
	speed, err := c.driver.Speed(id)
	if err != nil {
		return Sample{}, fmt.Errorf("speed: %w", err)
	}
	temp, err := c.driver.Temperature(id)
	if err != nil {
		return Sample{}, fmt.Errorf("temperature: %w", err)
	}
	current, err := c.driver.Current(id)
	if err != nil {
		return Sample{}, fmt.Errorf("current: %w", err)
	}
	moving, err := c.driver.Moving(id)
	if err != nil {
		return Sample{}, fmt.Errorf("moving: %w", err)
	}

	return Sample{
		ID:          id,
		Position:    pos,
		Speed:       speed,
		Temperature: temp,
		Current:     current,
		Moving:      moving,
	}, nil
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}
