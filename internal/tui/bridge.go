package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/switchyard/internal/queue"
)

// Messages delivered to the model when the scheduler changes.

type enqueuedMsg struct{ Req queue.Request }

type settledMsg struct{ Req queue.Request }

type cancelledMsg struct{ Req queue.Request }

type drainedMsg struct{}

// Bridge forwards scheduler events into a channel the bubbletea program
// can consume. Scheduler listeners run inside the scheduler's lock, so
// the bridge only does a non-blocking send; if the buffer is full the
// event is dropped and the periodic refresh tick catches the model up.
type Bridge struct {
	events chan tea.Msg
	unsubs []func()
}

// NewBridge subscribes to all four scheduler channels.
func NewBridge(sched *queue.Scheduler) *Bridge {
	b := &Bridge{events: make(chan tea.Msg, 64)}

	b.unsubs = append(b.unsubs,
		sched.OnEnqueue(func(r queue.Request) { b.send(enqueuedMsg{Req: r}) }),
		sched.OnProcess(func(r queue.Request) { b.send(settledMsg{Req: r}) }),
		sched.OnCancel(func(r queue.Request) { b.send(cancelledMsg{Req: r}) }),
		sched.OnDrain(func() { b.send(drainedMsg{}) }),
	)
	return b
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

// wait returns a command that delivers the next scheduler event.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

// Close detaches from the scheduler.
func (b *Bridge) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}
