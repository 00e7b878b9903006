package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/revealboard/revealboard/dashboard/internal/chart"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
)

// DefaultRefresh is how often the model re-reads the store.
const DefaultRefresh = time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TickMsg triggers a store refresh.
type TickMsg time.Time

// Model is the terminal dashboard.
type Model struct {
	store   *store.Store
	title   string
	labels  config.Labels
	palette chart.Palette
	refresh time.Duration

	width  int
	height int
	state  store.State
}

// New creates a Model reading from st. A non-positive refresh uses
// DefaultRefresh.
func New(st *store.Store, cfg *config.Config, refresh time.Duration) *Model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return &Model{
		store:   st,
		title:   cfg.Dashboard.Title,
		labels:  cfg.Labels,
		palette: chart.FromConfig(cfg.Chart),
		refresh: refresh,
		width:   80,
		height:  24,
		state:   st.Snapshot(),
	}
}

// Init starts the refresh tick.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles key presses, resizes and refresh ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case TickMsg:
		m.state = m.store.Snapshot()
		return m, m.tick()
	}
	return m, nil
}

// View renders the title, the bars, the legend and the error line.
func (m *Model) View() string {
	parts := []string{titleStyle.Render(m.title)}

	if m.state.Current == nil {
		parts = append(parts, "Loading…")
	} else {
		slices := chart.Layout(chart.FromPair(*m.state.Current, m.labels.A, m.labels.B), m.palette)
		if len(slices) == 0 {
			parts = append(parts, helpStyle.Render("No votes yet"))
		} else {
			parts = append(parts, m.renderBars(slices), m.renderLegend(slices))
		}
	}

	if m.state.LastError != "" {
		parts = append(parts, errorStyle.Render(m.state.LastError))
	}

	footer := "q to quit"
	if m.state.Transport != "" {
		footer = fmt.Sprintf("transport: %s · %s", m.state.Transport, footer)
	}
	parts = append(parts, helpStyle.Render(footer))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) renderBars(slices []chart.Slice) string {
	chartWidth := max(m.width-4, 20)
	chartHeight := max(m.height-10, 6)
	barWidth := max((chartWidth-4)/len(slices)-2, 1)

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(2),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, s := range slices {
		bc.Push(barchart.BarData{
			Label: s.Name,
			Values: []barchart.BarValue{
				{Name: s.Name, Value: s.Value, Style: colorStyle(s.Fill)},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

func (m *Model) renderLegend(slices []chart.Slice) string {
	lines := make([]string, 0, len(slices))
	for _, s := range slices {
		swatch := colorStyle(s.Fill).Render("■")
		lines = append(lines, fmt.Sprintf("%s %s: %s (%s)", swatch, s.Name, chart.FormatValue(s.Value), s.Percent))
	}
	return strings.Join(lines, "\n")
}

func colorStyle(c string) lipgloss.Style {
	col := lipgloss.Color(chart.Hex6(c))
	return lipgloss.NewStyle().Foreground(col).Background(col)
}
