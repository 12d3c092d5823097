// Package tui is the interactive terminal surface: one ticker input, one
// trigger, and a scrollable report.
package tui

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/internal/tui/styles"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// ReportBuilder produces a report for a ticker.
type ReportBuilder interface {
	Build(ctx context.Context, ticker string) (*report.Report, error)
}

// reportMsg carries a finished build back into the update loop.
type reportMsg struct {
	ticker string
	report *report.Report
	err    error
}

// chrome is the number of rows used by everything except the viewport.
const chrome = 7

// Model is the main TUI application model.
type Model struct {
	builder ReportBuilder
	timeout time.Duration

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	loading   bool
	statusMsg string

	width  int
	height int
}

// NewModel creates a new TUI model with the ticker input pre-filled.
func NewModel(builder ReportBuilder, defaultTicker string, timeout time.Duration) *Model {
	input := textinput.New()
	input.Prompt = "Ticker: "
	input.Placeholder = "AAPL"
	input.CharLimit = 12
	input.Width = 12
	input.SetValue(defaultTicker)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.PrimaryColor)

	vp := viewport.New(80, 20)
	vp.SetContent(styles.LabelStyle.Render("Press Enter to fetch news and sentiment."))

	return &Model{
		builder:  builder,
		timeout:  timeout,
		input:    input,
		viewport: vp,
		spinner:  sp,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m, m.trigger()
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 3)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reportMsg:
		m.loading = false
		if msg.err != nil && msg.report == nil {
			m.statusMsg = styles.ErrorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("%s · %d articles · %s",
			cmp.Or(msg.report.Ticker, msg.ticker), msg.report.News.Count, report.FormatDuration(msg.report.Duration))
		if msg.err != nil {
			m.statusMsg += " · " + styles.ErrorStyle.Render("incomplete: "+msg.err.Error())
		}
		m.viewport.SetContent(RenderReport(msg.report, m.viewport.Width))
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// trigger starts a build for the current input unless one is running.
func (m *Model) trigger() tea.Cmd {
	if m.loading {
		return nil
	}
	ticker := strings.TrimSpace(m.input.Value())
	m.loading = true
	m.statusMsg = ""
	return tea.Batch(m.spinner.Tick, m.build(ticker))
}

func (m *Model) build(ticker string) tea.Cmd {
	builder, timeout := m.builder, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		rep, err := builder.Build(ctx, ticker)
		return reportMsg{ticker: utils.NormalizeTicker(ticker), report: rep, err: err}
	}
}

// View renders the model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.AppTitleStyle.Render("StockPulse · Stock News Sentiment"))
	b.WriteString("\n\n")
	b.WriteString(styles.InputStyle.Render(m.input.View()))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Fetching market data, news and summaries...")
	case m.statusMsg != "":
		b.WriteString(m.statusMsg)
	}
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderStatusBar() string {
	keys := []struct{ key, desc string }{
		{"enter", "analyze"},
		{"↑/↓ pgup/pgdn", "scroll"},
		{"esc", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = styles.StatusBarKeyStyle.Render(k.key) + " " + styles.StatusBarDescStyle.Render(k.desc)
	}
	return styles.StatusBarStyle.Render(strings.Join(parts, "  "))
}
