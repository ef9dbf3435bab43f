package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Scan     ScanCommand     `command:"scan" description:"Find servos on the bus"`
	Ping     PingCommand     `command:"ping" description:"Check whether a servo answers"`
	SetID    SetIDCommand    `command:"set-id" description:"Assign a new bus id to a servo"`
	Move     MoveCommand     `command:"move" description:"Move one or more servos to a position"`
	Spin     SpinCommand     `command:"spin" description:"Run a servo at a constant velocity"`
	SyncMove SyncMoveCommand `command:"sync-move" description:"Move several servos with one broadcast frame"`
	Monitor  MonitorCommand  `command:"monitor" description:"Watch live servo telemetry"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "stservo - control STS-series serial bus servos"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
