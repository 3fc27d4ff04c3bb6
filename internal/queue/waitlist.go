package queue

// waitlist is the priority-ordered waiting list.
// It is not safe for concurrent use; the Scheduler's mutex guards it.
//
// Ordering is priority ascending (Critical first) with FIFO among equal
// priorities. Insertion is a linear scan for the first strictly greater
// priority, which keeps equal-priority arrivals behind existing ones.
// O(n) insert is fine at the configured scale (tens of entries); a heap
// keyed on (priority, sequence) would be the replacement if that changed.
type waitlist struct {
	items []*Request
}

// insert places r before the first entry with a strictly greater priority
// value, or at the end if there is none.
func (w *waitlist) insert(r *Request) {
	at := len(w.items)
	for i, item := range w.items {
		if item.Priority > r.Priority {
			at = i
			break
		}
	}
	w.items = append(w.items, nil)
	copy(w.items[at+1:], w.items[at:])
	w.items[at] = r
}

// head removes and returns the front of the list, or nil when empty.
func (w *waitlist) head() *Request {
	if len(w.items) == 0 {
		return nil
	}
	r := w.items[0]
	w.items[0] = nil
	w.items = w.items[1:]
	return r
}

// remove takes the request with the given id out of the list.
func (w *waitlist) remove(id string) *Request {
	for i, item := range w.items {
		if item.ID == id {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return item
		}
	}
	return nil
}

// position returns the 0-based index of id, or -1 if absent.
func (w *waitlist) position(id string) int {
	for i, item := range w.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// find returns the waiting request with the given id, or nil.
func (w *waitlist) find(id string) *Request {
	if i := w.position(id); i >= 0 {
		return w.items[i]
	}
	return nil
}

func (w *waitlist) len() int {
	return len(w.items)
}

// drain empties the list and returns the removed requests in order.
func (w *waitlist) drain() []*Request {
	items := w.items
	w.items = nil
	return items
}
