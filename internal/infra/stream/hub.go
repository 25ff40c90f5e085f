// Package stream distribui avisos de "leads mudaram" para os assinantes do painel.
package stream

import "sync"

// Hub entrega os avisos de mudança. Cada canal de assinante guarda no máximo um
// aviso pendente; uma rajada de escritas vira uma única nova listagem.
type Hub struct {
	mu      sync.Mutex
	clients map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan struct{}]struct{})}
}

func (h *Hub) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(sub <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		if ch == sub {
			delete(h.clients, ch)
			close(ch)
			return
		}
	}
}

func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
