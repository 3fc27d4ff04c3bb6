// Package tui is the dashboard: a live view of the request yard with a
// prompt input. It is a pure presentation layer: every mutation goes
// through the scheduler's public operations, and all reads are the
// snapshot accessors.
package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/switchyard/internal/app"
	"github.com/billie-coop/switchyard/internal/queue"
)

const maxPanelRows = 8

type tickMsg time.Time

type keyMap struct {
	Submit     key.Binding
	Cycle      key.Binding
	Pause      key.Binding
	CancelLast key.Binding
	CancelAll  key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter")),
		Cycle:      key.NewBinding(key.WithKeys("tab")),
		Pause:      key.NewBinding(key.WithKeys("ctrl+p")),
		CancelLast: key.NewBinding(key.WithKeys("ctrl+k")),
		CancelAll:  key.NewBinding(key.WithKeys("ctrl+x")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc")),
	}
}

// Model is the dashboard state. Queue state is refreshed from scheduler
// snapshots whenever an event or tick arrives; the model never holds
// live references into the scheduler.
type Model struct {
	app    *app.App
	bridge *Bridge

	width  int
	height int

	input textarea.Model
	spin  spinner.Model
	keys  keyMap

	agents   []string
	agentIdx int

	pending  []queue.Request
	active   []queue.Request
	stats    queue.Stats
	paused   bool
	lastDone *queue.Request
	flash    string
}

// New creates the dashboard for a running app.
func New(a *app.App) *Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the work for this agent..."
	ta.Prompt = ""
	ta.CharLimit = -1
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	agents := a.Agents.Names()
	sort.Strings(agents)

	m := &Model{
		app:    a,
		bridge: NewBridge(a.Scheduler),
		input:  ta,
		spin:   newStyledSpinner(),
		keys:   defaultKeyMap(),
		agents: agents,
	}
	m.refresh()
	return m
}

// Init starts the cursor blink, the spinner, the event wait, and the
// one-second refresh tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spin.Tick,
		m.bridge.wait(),
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles input and scheduler events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.bridge.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil

		case key.Matches(msg, m.keys.Cycle):
			if len(m.agents) > 0 {
				m.agentIdx = (m.agentIdx + 1) % len(m.agents)
			}
			return m, nil

		case key.Matches(msg, m.keys.Pause):
			if m.app.Scheduler.Paused() {
				m.app.Scheduler.Resume()
				m.flash = ""
			} else {
				m.app.Scheduler.Pause()
			}
			m.refresh()
			return m, nil

		case key.Matches(msg, m.keys.CancelLast):
			if n := len(m.pending); n > 0 {
				m.app.Scheduler.Cancel(m.pending[n-1].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.CancelAll):
			n := m.app.Scheduler.CancelAll()
			m.flash = fmt.Sprintf("cancelled %d waiting request(s)", n)
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 6)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		m.refresh()
		return m, tick()

	case settledMsg:
		r := msg.Req
		m.lastDone = &r
		m.refresh()
		return m, m.bridge.wait()

	case enqueuedMsg, cancelledMsg, drainedMsg:
		m.refresh()
		return m, m.bridge.wait()
	}

	return m, nil
}

func (m *Model) submit() {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return
	}
	if len(m.agents) == 0 {
		m.flash = "no agents configured"
		return
	}

	agentID := m.agents[m.agentIdx]
	_, err := m.app.Scheduler.Enqueue(agentID, prompt, queue.WithPriority(queue.PriorityHigh))
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		m.flash = "queue is full — try again in a moment"
	case err != nil:
		m.flash = err.Error()
	default:
		m.flash = ""
		m.input.Reset()
	}
	m.refresh()
}

// refresh pulls fresh snapshots from the scheduler.
func (m *Model) refresh() {
	sched := m.app.Scheduler
	m.pending = sched.Pending()
	m.active = sched.Active()
	m.stats = sched.Stats()
	m.paused = sched.Paused()
}

// View renders the dashboard.
func (m *Model) View() tea.View {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🚂 switchyard — agent request yard"))
	b.WriteString("\n")
	b.WriteString(m.statsLine())
	b.WriteString("\n\n")

	b.WriteString(m.renderWaiting())
	b.WriteString("\n")
	b.WriteString(m.renderActive())
	b.WriteString("\n")
	b.WriteString(m.renderResult())

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(flashStyle.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))

	return tea.NewView(b.String())
}

func (m *Model) statsLine() string {
	s := m.stats
	line := fmt.Sprintf(
		"queued %d · active %d/%d · done %d · failed %d · cancelled %d · merged %d · avg wait %s",
		s.QueueSize, s.Processing, m.app.Scheduler.Config().MaxConcurrent,
		s.TotalProcessed, s.TotalFailed, s.TotalCancelled, s.TotalDeduplicated,
		s.AvgWait.Round(time.Millisecond),
	)
	out := statsStyle.Render(line)
	if m.paused {
		out += "  " + pausedStyle.Render("[PAUSED]")
	}
	return out
}

func (m *Model) renderWaiting() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Waiting (%d)", len(m.pending))))
	b.WriteString("\n")

	if len(m.pending) == 0 {
		b.WriteString(dimStyle.Render("  nothing waiting"))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range m.pending {
		if i >= maxPanelRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.pending)-maxPanelRows)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s %s %s\n",
			i+1,
			priorityBadge(r.Priority),
			r.AgentID,
			truncate(r.Prompt, m.promptWidth()),
			dimStyle.Render(humanAge(r.EnqueuedAt)),
		))
	}
	return b.String()
}

func (m *Model) renderActive() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Active (%d)", len(m.active))))
	b.WriteString("\n")

	if len(m.active) == 0 {
		b.WriteString(dimStyle.Render("  idle"))
		b.WriteString("\n")
		return b.String()
	}

	for _, r := range m.active {
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			m.spin.View(),
			r.AgentID,
			truncate(r.Prompt, m.promptWidth()),
			dimStyle.Render(humanAge(r.StartedAt)),
		))
	}
	return b.String()
}

func (m *Model) renderResult() string {
	if m.lastDone == nil {
		return ""
	}
	r := m.lastDone

	var b strings.Builder
	elapsed := r.CompletedAt.Sub(r.StartedAt).Round(100 * time.Millisecond)
	switch r.Status {
	case queue.StatusFailed:
		b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Last result — %s ✗ (%s)", r.AgentID, elapsed)))
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  " + r.Error))
		b.WriteString("\n")
	default:
		b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Last result — %s ✓ (%s)", r.AgentID, elapsed)))
		b.WriteString("\n")
		b.WriteString(renderMarkdown(r.Result, max(m.width-4, 40)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) helpLine() string {
	agentName := "none"
	if len(m.agents) > 0 {
		agentName = m.agents[m.agentIdx]
	}
	return fmt.Sprintf(
		"enter send · tab agent (%s) · ^p pause/resume · ^k cancel last · ^x cancel all · esc quit",
		agentName,
	)
}

func (m *Model) promptWidth() int {
	if m.width <= 0 {
		return 48
	}
	return max(m.width-30, 20)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return s[:width-1] + "…"
}

func humanAge(since time.Time) string {
	d := time.Since(since)
	if d < time.Second {
		return "<1s"
	}
	return d.Round(time.Second).String()
}
