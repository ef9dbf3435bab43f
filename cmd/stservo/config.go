package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gwillem/stservo/pkg/sts"
)

const DefaultConfigFile = "stservo.json"

const defaultBaudRate = 1_000_000

// Config remembers the bus settings between invocations. Servo ids are plain
// ints so the file stays hand-editable.
type Config struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
	IDs  []int  `json:"ids,omitempty"`
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	data, err := os.ReadFile(DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(DefaultConfigFile, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}

// BusOptions are the flags shared by every command that talks to the bus.
// Flags left empty fall back to the saved config file.
type BusOptions struct {
	Port string `long:"port" short:"p" description:"Serial port (default: from stservo.json)"`
	Baud int    `long:"baud" short:"b" description:"Baud rate (default: 1000000)"`
}

// resolve fills in port and baud from the config file where flags were left
// empty.
func (o *BusOptions) resolve() (port string, baud int, err error) {
	port, baud = o.Port, o.Baud

	if port == "" || baud == 0 {
		cfg, cfgErr := LoadConfig()
		if cfgErr == nil {
			if port == "" {
				port = cfg.Port
			}
			if baud == 0 {
				baud = cfg.Baud
			}
		}
	}
	if baud == 0 {
		baud = defaultBaudRate
	}
	if port == "" {
		return "", 0, fmt.Errorf("no --port given and no %s found; run 'stservo scan --save' first", DefaultConfigFile)
	}
	return port, baud, nil
}

// open resolves the bus settings and opens the port.
func (o *BusOptions) open() (*sts.Driver, *sts.SerialTransport, error) {
	port, baud, err := o.resolve()
	if err != nil {
		return nil, nil, err
	}
	return sts.Open(port, baud)
}
