// Package stservo is a driver for STS-series serial bus servos.
//
// The servos share a single half-duplex serial line and are addressed by a
// one-byte id. This module implements the wire protocol (packet framing,
// checksums, half-duplex turnaround) and the register layer that maps
// positions, velocities and sensor readings onto the servo's byte encodings.
//
// # Installation
//
//	go install github.com/gwillem/stservo/cmd/stservo@latest
//
// # Usage
//
// Find servos on the bus:
//
//	stservo scan
//
// Move servo 1 to position 2048 at speed 1000:
//
//	stservo move --id 1 --position 2048 --speed 1000
//
// Watch live telemetry:
//
//	stservo monitor --id 1
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/stservo: CLI with scan, ping, set-id, move, sync-move and monitor commands
//   - pkg/sts: packet codec, register access and the servo driver
//   - pkg/watch: polling telemetry controller used by the monitor TUI
package stservo
