package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

type SetIDCommand struct {
	BusOptions
	From  uint8 `long:"from" required:"true" description:"Current servo id"`
	To    uint8 `long:"to" required:"true" description:"New servo id"`
	Force bool  `long:"force" short:"f" description:"Skip the confirmation prompt"`
}

func (c *SetIDCommand) Execute(args []string) error {
	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	if !driver.Ping(c.From) {
		fmt.Println(errorStyle.Render(fmt.Sprintf("No servo answers on id %d", c.From)))
		os.Exit(1)
	}

	if !c.Force {
		// The new id is written to EEPROM and survives power cycles.
		var confirmed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Reassign servo id %d to %d?", c.From, c.To)).
					Description("This is stored permanently on the servo.").
					Affirmative("Reassign").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil || !confirmed {
			fmt.Println()
			os.Exit(0)
		}
	}

	if !driver.SetID(c.From, c.To) {
		fmt.Println(errorStyle.Render("Id change failed"))
		fmt.Println(dimStyle.Render("A servo may already answer on the new id, or the bus dropped a frame."))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Servo now answers on id %d", c.To)))
	return nil
}
