// ABOUTME: Operator terminal monitor: a read-only bubbletea dashboard over live bridge state
// ABOUTME: No client/server split — it runs in the same process as the bridge and reads snapshots directly
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loxone-bridge/audioserver-bridge/internal/alert"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
)

// Snapshot is one refresh's worth of display state, built by the caller
// from the live registries and handed to the monitor on its ticker.
type Snapshot struct {
	MacID        string
	Zones        []zone.ZoneStatus
	Groups       []group.Group
	ActiveAlerts int
	PeerCount    int
}

// Source is the subset of the bridge's live state the monitor reads on
// every tick. Production wiring supplies the real registries; tests supply
// fakes.
type Source struct {
	Zones     *zone.Registry
	Groups    *group.Tracker
	Alerts    *alert.Controller
	MacID     func() string
	PeerCount func() int
}

// Snapshot builds one refresh's worth of display state from the live
// registries.
func (s Source) Snapshot() Snapshot {
	peers := 0
	if s.PeerCount != nil {
		peers = s.PeerCount()
	}
	active := 0
	if s.Alerts != nil {
		active = s.Alerts.ActiveCount()
	}
	var mac string
	if s.MacID != nil {
		mac = s.MacID()
	}
	return Snapshot{
		MacID:        mac,
		Zones:        s.Zones.GetZoneStatuses(),
		Groups:       s.Groups.All(),
		ActiveAlerts: active,
		PeerCount:    peers,
	}
}

// Monitor drives the terminal dashboard. Construct with New, feed it
// snapshots with Update, and block on QuitChan (or run Start in its own
// goroutine) to learn when the operator asked to quit.
type Monitor struct {
	program  *tea.Program
	updates  chan Snapshot
	quitChan chan struct{}

	mu     sync.Mutex
	closed bool
}

// New constructs a monitor. Nothing runs until Start is called.
func New() *Monitor {
	return &Monitor{
		updates:  make(chan Snapshot, 10),
		quitChan: make(chan struct{}, 1),
	}
}

// Start runs the dashboard in the calling goroutine until the operator
// quits (q or Ctrl+C) or Stop is called.
func (m *Monitor) Start() error {
	model := dashboardModel{
		startTime: time.Now(),
		quitChan:  m.quitChan,
	}

	m.program = tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		for snap := range m.updates {
			if m.program != nil {
				m.program.Send(snapshotMsg(snap))
			}
		}
	}()

	_, err := m.program.Run()
	return err
}

// Update pushes a fresh snapshot to the dashboard. Never blocks; a stale
// dashboard just skips a tick if the channel is momentarily full. It holds
// the same lock Stop closes the channel under, so a racing shutdown can
// never close updates between Update's closed check and its send.
func (m *Monitor) Update(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.updates <- snap:
	default:
	}
}

// Stop tears down the dashboard.
func (m *Monitor) Stop() {
	if m.program != nil {
		m.program.Quit()
	}
	m.mu.Lock()
	m.closed = true
	close(m.updates)
	m.mu.Unlock()
}

// QuitChan reports when the operator asked to quit from within the TUI,
// distinct from the process receiving SIGINT/SIGTERM.
func (m *Monitor) QuitChan() <-chan struct{} {
	return m.quitChan
}

type tickMsg time.Time
type snapshotMsg Snapshot

type dashboardModel struct {
	snap      Snapshot
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

func (m dashboardModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case snapshotMsg:
		m.snap = Snapshot(msg)
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Shutting down bridge...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	zoneHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("AudioServer Bridge"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Paired MAC: "))
	mac := m.snap.MacID
	if mac == "" {
		mac = "(unpaired)"
	}
	b.WriteString(valueStyle.Render(mac))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Uptime: "))
	b.WriteString(valueStyle.Render(time.Since(m.startTime).Round(time.Second).String()))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Connected peers: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.snap.PeerCount)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Active alerts: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.snap.ActiveAlerts)))
	b.WriteString("\n\n")

	zones := append([]zone.ZoneStatus(nil), m.snap.Zones...)
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })

	b.WriteString(zoneHeaderStyle.Render(fmt.Sprintf("Zones (%d)", len(zones))))
	b.WriteString("\n\n")

	if len(zones) == 0 {
		b.WriteString(valueStyle.Render("  no zones configured"))
		b.WriteString("\n")
	} else {
		for _, z := range zones {
			state := "disconnected"
			if z.Connected {
				state = string(z.BackendKind)
			}
			line := fmt.Sprintf("  %2d  %-20s vol=%-3d %s", z.ID, z.Name, z.State.Volume, state)
			b.WriteString(valueStyle.Render(line))
			if z.ConnectError != "" {
				b.WriteString(errStyle.Render(" (" + z.ConnectError + ")"))
			}
			b.WriteString("\n")
		}
	}

	if len(m.snap.Groups) > 0 {
		b.WriteString("\n")
		b.WriteString(zoneHeaderStyle.Render(fmt.Sprintf("Groups (%d)", len(m.snap.Groups))))
		b.WriteString("\n\n")
		for _, g := range m.snap.Groups {
			members := g.MemberList()
			sort.Ints(members)
			b.WriteString(valueStyle.Render(fmt.Sprintf("  leader=%d members=%v source=%s", g.Leader, members, g.Source)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}
