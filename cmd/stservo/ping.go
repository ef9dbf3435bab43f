package main

import (
	"fmt"
	"os"
)

type PingCommand struct {
	BusOptions
	ID uint8 `long:"id" required:"true" description:"Servo id to ping"`
}

func (c *PingCommand) Execute(args []string) error {
	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	if !driver.Ping(c.ID) {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Servo %d did not answer", c.ID)))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Servo %d answered", c.ID)))

	if pos, err := driver.Position(c.ID); err == nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  position: %d", pos)))
	}
	if temp, err := driver.Temperature(c.ID); err == nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  temperature: %d", temp)))
	}

	return nil
}
