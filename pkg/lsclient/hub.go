package lsclient

import "sync"

// Hub fans host notifications out to subscribers. The zero value is ready to
// use and safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	theme   map[int]func(ThemeKind)
	project map[int]func(bool)
}

// OnThemeChanged registers fn for theme change notifications.
func (h *Hub) OnThemeChanged(fn func(ThemeKind)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.theme == nil {
		h.theme = make(map[int]func(ThemeKind))
	}
	id := h.nextID
	h.nextID++
	h.theme[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.theme, id)
	}
}

// OnProjectContentUpdated registers fn for project content notifications.
func (h *Hub) OnProjectContentUpdated(fn func(bool)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.project == nil {
		h.project = make(map[int]func(bool))
	}
	id := h.nextID
	h.nextID++
	h.project[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.project, id)
	}
}

// PublishThemeChanged calls every theme subscriber.
func (h *Hub) PublishThemeChanged(kind ThemeKind) {
	h.mu.RLock()
	handlers := make([]func(ThemeKind), 0, len(h.theme))
	for _, fn := range h.theme {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(kind)
	}
}

// PublishProjectContentUpdated calls every project subscriber.
func (h *Hub) PublishProjectContentUpdated(updated bool) {
	h.mu.RLock()
	handlers := make([]func(bool), 0, len(h.project))
	for _, fn := range h.project {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(updated)
	}
}
