package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/stservo/pkg/sts"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ScanCommand struct {
	BusOptions
	From uint8 `long:"from" default:"0" description:"First id to probe"`
	To   uint8 `long:"to" default:"20" description:"Last id to probe"`
	Save bool  `long:"save" description:"Write findings to stservo.json"`
}

type scanResult struct {
	port string
	ids  []byte
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Scanning for servos"))
	fmt.Println()

	ports := []string{c.Port}
	if c.Port == "" {
		var err error
		ports, err = sts.ListPorts()
		if err != nil {
			return fmt.Errorf("list ports: %w", err)
		}
	}

	var results []scanResult
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		baud := c.Baud
		if baud == 0 {
			baud = defaultBaudRate
		}
		driver, transport, err := sts.Open(port, baud)
		if err != nil {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  %s: %v", port, err)))
			continue
		}

		ids := driver.Scan(c.From, c.To)
		transport.Close()

		if len(ids) > 0 {
			fmt.Printf("  Found %d servo(s) on %s\n", len(ids), port)
			results = append(results, scanResult{port: port, ids: ids})
		}
	}

	fmt.Println()
	if len(results) == 0 {
		fmt.Println("No servos found.")
		fmt.Println("Make sure the bus is connected and powered on.")
		os.Exit(1)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ids := make([]string, len(r.ids))
		for i, id := range r.ids {
			ids[i] = fmt.Sprintf("%d", id)
		}
		rows = append(rows, []string{r.port, strings.Join(ids, ", ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servo ids").
		Rows(rows...)
	fmt.Println(t.Render())

	if c.Save {
		baud := c.Baud
		if baud == 0 {
			baud = defaultBaudRate
		}
		ids := make([]int, len(results[0].ids))
		for i, id := range results[0].ids {
			ids[i] = int(id)
		}
		cfg := &Config{Port: results[0].port, Baud: baud, IDs: ids}
		if ConfigExists() {
			fmt.Println()
			fmt.Println(dimStyle.Render("Overwriting " + DefaultConfigFile))
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println()
		fmt.Println(successStyle.Render("Saved to " + DefaultConfigFile))
	}

	return nil
}
