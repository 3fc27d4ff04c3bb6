package queue

// Listener receives a value copy of the request that triggered the event.
type Listener func(Request)

// DrainListener fires when the scheduler transitions from having any
// queued-or-active work to having none at all.
type DrainListener func()

// notifier holds the four listener lists.
//
// Listeners are invoked synchronously, in registration order, while the
// scheduler's mutex is held and before the triggering call returns. They
// must not call back into the scheduler; forward to a channel or goroutine
// if more work is needed (see tui.Bridge).
type notifier struct {
	nextID  int
	enqueue []subscription
	process []subscription
	cancel  []subscription
	drain   []drainSubscription
}

type subscription struct {
	id int
	fn Listener
}

type drainSubscription struct {
	id int
	fn DrainListener
}

func (n *notifier) subscribe(list *[]subscription, fn Listener) int {
	n.nextID++
	*list = append(*list, subscription{id: n.nextID, fn: fn})
	return n.nextID
}

func (n *notifier) unsubscribe(list *[]subscription, id int) {
	for i, s := range *list {
		if s.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

func (n *notifier) emit(list []subscription, r Request) {
	for _, s := range list {
		s.fn(r)
	}
}

func (n *notifier) emitDrain() {
	for _, s := range n.drain {
		s.fn()
	}
}
