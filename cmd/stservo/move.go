package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gwillem/stservo/pkg/sts"
)

type MoveCommand struct {
	BusOptions
	IDs      []uint8 `long:"id" required:"true" description:"Servo id (repeat for several)"`
	Position int     `long:"position" required:"true" description:"Target position"`
	Speed    int     `long:"speed" default:"1000" description:"Move speed"`
	Accel    int     `long:"accel" default:"-1" description:"Acceleration ramp (0-255)"`
	Deferred bool    `long:"deferred" description:"Buffer the move and commit all servos with one ACTION broadcast"`
	Wait     bool    `long:"wait" description:"Block until the servos stop moving"`
}

func (c *MoveCommand) Execute(args []string) error {
	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	for _, id := range c.IDs {
		if c.Accel >= 0 {
			if !driver.SetTargetAcceleration(id, byte(c.Accel), c.Deferred) {
				return fmt.Errorf("servo %d: acceleration write failed", id)
			}
		}
		if !driver.SetTargetPosition(id, c.Position, c.Speed, c.Deferred) {
			return fmt.Errorf("servo %d: position write failed", id)
		}
	}

	if c.Deferred {
		// All buffered writes apply at the same instant.
		if !driver.TriggerAction() {
			return fmt.Errorf("action broadcast failed")
		}
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Moving %d servo(s) to %d", len(c.IDs), c.Position)))

	if c.Wait {
		for _, id := range c.IDs {
			for {
				moving, err := driver.Moving(id)
				if err != nil {
					return fmt.Errorf("servo %d: %w", id, err)
				}
				if !moving {
					break
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
		fmt.Println(dimStyle.Render("Done."))
	}

	return nil
}

type SpinCommand struct {
	BusOptions
	ID       uint8 `long:"id" required:"true" description:"Servo id"`
	Velocity int   `long:"velocity" required:"true" description:"Signed velocity; negative reverses direction"`
}

func (c *SpinCommand) Execute(args []string) error {
	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	if !driver.SetMode(c.ID, sts.ModeVelocity) {
		return fmt.Errorf("servo %d: mode write failed", c.ID)
	}
	if !driver.SetTargetVelocity(c.ID, c.Velocity, false) {
		return fmt.Errorf("servo %d: velocity write failed", c.ID)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Servo %d spinning at %d", c.ID, c.Velocity)))
	return nil
}

type SyncMoveCommand struct {
	BusOptions
	Targets []string `long:"target" required:"true" description:"id:position[:speed], repeat for several servos"`
}

func (c *SyncMoveCommand) Execute(args []string) error {
	ids := make([]byte, 0, len(c.Targets))
	positions := make([]int, 0, len(c.Targets))
	speeds := make([]int, 0, len(c.Targets))

	for _, target := range c.Targets {
		parts := strings.Split(target, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("bad target %q, want id:position[:speed]", target)
		}
		id, err := strconv.ParseUint(parts[0], 10, 8)
		if err != nil {
			return fmt.Errorf("bad id in %q: %w", target, err)
		}
		position, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad position in %q: %w", target, err)
		}
		speed := 1000
		if len(parts) == 3 {
			speed, err = strconv.Atoi(parts[2])
			if err != nil {
				return fmt.Errorf("bad speed in %q: %w", target, err)
			}
		}
		ids = append(ids, byte(id))
		positions = append(positions, position)
		speeds = append(speeds, speed)
	}

	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	if err := driver.SetTargetPositions(ids, positions, speeds); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Sync move failed: %v", err)))
		os.Exit(1)
	}

	// Broadcasts get no acknowledgement; all we know is the frame went out.
	fmt.Println(successStyle.Render(fmt.Sprintf("Sync move sent to %d servo(s)", len(ids))))
	return nil
}
