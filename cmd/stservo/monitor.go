package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/stservo/pkg/watch"
)

type MonitorCommand struct {
	BusOptions
	IDs []uint8 `long:"id" description:"Servo id to watch (repeat for several; default: ids from stservo.json)"`
	Hz  int     `long:"hz" default:"10" description:"Poll frequency"`
}

const (
	monHeaderHeight = 2 // title + blank line
	monTableHeight  = 8 // telemetry table
	monFooterHeight = 7 // log box height
	monMaxLogs      = 5 // number of log messages to show
	monBorderSize   = 2 // chart border
)

// Distinct chart colors, assigned to servos in id order.
var servoColors = []string{"196", "208", "226", "46", "51", "201"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type monitorModel struct {
	ctrl     *watch.Controller
	ids      []byte
	chart    *streamlinechart.Model
	width    int
	height   int
	logs     []string
	last     watch.State
	quitting bool
}

func (m *monitorModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > monMaxLogs {
		m.logs = m.logs[len(m.logs)-monMaxLogs:]
	}
}

// Messages from the controller
type stateMsg watch.State
type logMsg string

func waitForState(ctrl *watch.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *watch.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 15 // default size before we know terminal size
	}
	width = m.width - monBorderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - monHeaderHeight - monTableHeight - monFooterHeight - monBorderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *monitorModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func servoColor(idx int) string {
	return servoColors[idx%len(servoColors)]
}

func initialMonitorModel(ctrl *watch.Controller, ids []byte) monitorModel {
	chart := streamlinechart.New(80, 15,
		streamlinechart.WithYRange(0, 4096),
	)

	for i, id := range ids {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(servoColor(i)))
		chart.SetDataSetStyles(dataSetName(id), runes.ThinLineStyle, style)
	}

	return monitorModel{
		ctrl:  ctrl,
		ids:   ids,
		chart: &chart,
	}
}

func dataSetName(id byte) string {
	return fmt.Sprintf("servo %d", id)
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := watch.State(msg)
		for _, id := range m.ids {
			if sample, ok := state.Samples[id]; ok {
				m.chart.PushDataSet(dataSetName(id), float64(sample.Position))
			}
		}
		m.chart.DrawAll()
		m.last = state
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("stservo monitor"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Position chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Telemetry table
	sb.WriteString(m.renderTable())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9"))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m monitorModel) renderTable() string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)

	rows := make([][]string, 0, len(m.ids))
	for i, id := range m.ids {
		idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(servoColor(i)))
		sample, ok := m.last.Samples[id]
		if !ok {
			rows = append(rows, []string{idStyle.Render(dataSetName(id)), "-", "-", "-", "-", "-"})
			continue
		}
		moving := ""
		if sample.Moving {
			moving = "moving"
		}
		rows = append(rows, []string{
			idStyle.Render(dataSetName(id)),
			fmt.Sprintf("%d", sample.Position),
			fmt.Sprintf("%d", sample.Speed),
			fmt.Sprintf("%d", sample.Temperature),
			fmt.Sprintf("%.3f A", sample.Current),
			moving,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(statusStyle).
		Headers("Servo", "Position", "Speed", "Temp", "Current", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})

	return t.Render()
}

func (c *MonitorCommand) Execute(args []string) error {
	ids := append([]byte(nil), c.IDs...)
	if len(ids) == 0 {
		cfg, err := LoadConfig()
		if err != nil || len(cfg.IDs) == 0 {
			return fmt.Errorf("no --id given and no ids in %s; run 'stservo scan --save' first", DefaultConfigFile)
		}
		for _, id := range cfg.IDs {
			ids = append(ids, byte(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	driver, transport, err := c.open()
	if err != nil {
		return err
	}
	defer transport.Close()

	ctrl := watch.NewController(watch.Config{
		Driver: driver,
		IDs:    ids,
		Hz:     c.Hz,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	p := tea.NewProgram(initialMonitorModel(ctrl, ids), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
