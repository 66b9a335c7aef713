package widget

import (
	"strings"
	"sync"
)

// Registry keeps the widgets of one form keyed by uid. It holds at most one
// widget per uid and iterates in insertion order, which is the order the
// server delivered the fragments in.
type Registry struct {
	mu    sync.RWMutex
	order []string
	items map[string]Widget
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Widget)}
}

// Add registers w, replacing any widget already registered under the same
// uid. The replaced widget is returned so callers can detach it.
func (r *Registry) Add(w Widget) Widget {
	if r == nil || w == nil {
		return nil
	}
	uid := strings.TrimSpace(w.UID())
	if uid == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.items == nil {
		r.items = make(map[string]Widget)
	}
	previous, exists := r.items[uid]
	if exists {
		r.order = removeString(r.order, uid)
	}
	r.items[uid] = w
	r.order = append(r.order, uid)
	return previous
}

// Get returns the widget registered under uid.
func (r *Registry) Get(uid string) (Widget, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[uid]
	return w, ok
}

// Remove unregisters uid and returns the widget that was registered.
func (r *Registry) Remove(uid string) (Widget, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[uid]
	if !ok {
		return nil, false
	}
	delete(r.items, uid)
	r.order = removeString(r.order, uid)
	return w, true
}

// Len reports the number of registered widgets.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// All returns the registered widgets in insertion order.
func (r *Registry) All() []Widget {
	return r.filter(func(Widget) bool { return true })
}

// ByStep returns the widgets that belong to step, in insertion order.
func (r *Registry) ByStep(step int) []Widget {
	return r.filter(func(w Widget) bool { return w.FormStep() == step })
}

// Count reports how many widgets belong to step.
func (r *Registry) Count(step int) int {
	return len(r.ByStep(step))
}

// UIDs returns the registered uids in insertion order.
func (r *Registry) UIDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) filter(keep func(Widget) bool) []Widget {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Widget, 0, len(r.order))
	for _, uid := range r.order {
		if w := r.items[uid]; keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func removeString(list []string, target string) []string {
	for i, value := range list {
		if value == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
