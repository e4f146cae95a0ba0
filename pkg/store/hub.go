package store

import "sync"

// Hub fans out LastChecked updates to in-process subscribers. Publish calls
// every subscriber synchronously, in subscription order.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(LastChecked)
	ids  []int
}

func NewHub() *Hub {
	return &Hub{subs: map[int]func(LastChecked){}}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn func(LastChecked)) (cancel func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.ids = append(h.ids, id)
	h.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			for i, v := range h.ids {
				if v == id {
					h.ids = append(h.ids[:i], h.ids[i+1:]...)
					break
				}
			}
		})
	}
}

func (h *Hub) Publish(last LastChecked) {
	h.mu.RLock()
	fns := make([]func(LastChecked), 0, len(h.ids))
	for _, id := range h.ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(last)
	}
}
