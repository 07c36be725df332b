package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type busEventMsg struct{ ev substrate.Event }

type busClosedMsg struct{}

type queryResultMsg struct {
	enabled bool
	err     error
}

type enableResultMsg struct{ err error }

type model struct {
	ctx    context.Context
	client *webchannel.Client
	events <-chan substrate.Event

	theme     theme
	spinner   spinner.Model
	viewport  viewport.Model
	frames    []frame
	width     int
	height    int
	isReady   bool
	isBusy    bool
	streamUp  bool
	lastErr   string
	lastState string
	followLog bool
}

func newModel(ctx context.Context, client *webchannel.Client, events <-chan substrate.Event) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Points
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	vp := viewport.New(80, 16)

	return &model{
		ctx:       ctx,
		client:    client,
		events:    events,
		theme:     defaultTheme(),
		spinner:   spin,
		viewport:  vp,
		width:     100,
		height:    28,
		streamUp:  true,
		lastState: "unknown",
		followLog: true,
	}
}

func (m *model) Init() tea.Cmd {
	return waitForEventCmd(m.events)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport(false)
		m.isReady = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)

	case busEventMsg:
		m.frames = append(m.frames, frameFromEvent(typed.ev, time.Now()))
		m.refreshViewport(false)
		return m, waitForEventCmd(m.events)

	case busClosedMsg:
		m.streamUp = false
		m.lastErr = "substrate closed"
		return m, nil

	case spinner.TickMsg:
		if !m.isBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd

	case queryResultMsg:
		m.isBusy = false
		if typed.err != nil {
			m.lastErr = typed.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.lastState = "disabled"
		if typed.enabled {
			m.lastState = "enabled"
		}
		return m, nil

	case enableResultMsg:
		m.isBusy = false
		if typed.err != nil {
			m.lastErr = typed.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.lastState = "enabled"
		return m, nil
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "s":
		if m.isBusy || !m.streamUp {
			return m, nil
		}
		m.isBusy = true
		m.lastErr = ""
		return m, tea.Batch(m.spinner.Tick, queryCmd(m.ctx, m.client))
	case "e":
		if m.isBusy || !m.streamUp {
			return m, nil
		}
		m.isBusy = true
		m.lastErr = ""
		return m, tea.Batch(m.spinner.Tick, enableCmd(m.ctx, m.client))
	case "pgup", "ctrl+b", "alt+up", "ctrl+up":
		m.viewport.PageUp()
		m.followLog = false
		return m, nil
	case "pgdown", "ctrl+f", "alt+down", "ctrl+down":
		m.viewport.PageDown()
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return m, nil
	case "home":
		m.viewport.GotoTop()
		m.followLog = false
		return m, nil
	case "end":
		m.viewport.GotoBottom()
		m.followLog = true
		return m, nil
	}
	return m, nil
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport(false)
	}

	header := m.theme.header.Width(m.width - 2).Render("📡 Profiler Bridge Monitor")
	meta := m.theme.headerMeta.Render(fmt.Sprintf(
		"channel:%s · frames:%d · menu button:%s",
		webchannel.ChannelID, len(m.frames), m.lastState,
	))
	line := m.theme.divider.Width(m.width - 2).Render(strings.Repeat("═", max(8, m.width-2)))

	status := m.theme.status.Render("💡 s query status  ·  e enable button  ·  PgUp/PgDn scroll  ·  q quit")
	if m.isBusy {
		status = m.theme.statusBusy.Render(fmt.Sprintf("%s ⚡ waiting for the host...", m.spinner.View()))
	}
	if m.lastErr != "" {
		status = m.theme.statusErr.Render("🚨 " + m.lastErr)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		meta,
		line,
		m.theme.viewport.Width(m.width-2).Render(m.viewport.View()),
		status,
	)
}

func (m *model) resizeComponents() {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	h := m.height - 8
	if h < 8 {
		h = 8
	}

	m.viewport.Width = w
	m.viewport.Height = h
}

func (m *model) refreshViewport(forceBottom bool) {
	previousOffset := m.viewport.YOffset
	lines := make([]string, 0, len(m.frames))
	for _, item := range m.frames {
		lines = append(lines, m.renderFrame(item))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.hint.Render("no traffic yet - press s to query the menu button state"))
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	if m.followLog || forceBottom {
		m.viewport.GotoBottom()
		m.followLog = true
		return
	}

	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if previousOffset > maxOffset {
		previousOffset = maxOffset
	}
	m.viewport.SetYOffset(previousOffset)
}

func (m *model) renderFrame(item frame) string {
	arrow := m.theme.outbound.Render("→ chrome ")
	if item.direction == directionInbound {
		arrow = m.theme.inbound.Render("← content")
	}

	tag := m.theme.foreignTag
	switch item.kind {
	case kindRequest:
		tag = m.theme.requestTag
	case kindResponse:
		tag = m.theme.responseTag
	case kindError:
		tag = m.theme.errorTag
	}

	return strings.Join([]string{
		m.theme.timestamp.Render(item.at.Format("15:04:05.000")),
		arrow,
		tag.Render(item.label),
		m.theme.body.Render(item.body),
	}, " ")
}

func waitForEventCmd(events <-chan substrate.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return busClosedMsg{}
		}
		return busEventMsg{ev: ev}
	}
}

func queryCmd(ctx context.Context, client *webchannel.Client) tea.Cmd {
	return func() tea.Msg {
		enabled, err := client.QueryMenuButtonEnabled(ctx)
		return queryResultMsg{enabled: enabled, err: err}
	}
}

func enableCmd(ctx context.Context, client *webchannel.Client) tea.Cmd {
	return func() tea.Msg {
		return enableResultMsg{err: client.EnableMenuButton(ctx)}
	}
}
