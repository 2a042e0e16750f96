package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

type envelope struct {
	name     string
	evt      any
	handlers []HandlerFunc
}

// Bus fans events out to subscribers. Publish only enqueues, so publishers
// such as the controller tick never block on slow consumers. A single
// dispatcher goroutine runs handlers in publish order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc

	qmu      sync.Mutex
	idle     *sync.Cond
	queue    []envelope
	pending  int
	draining bool
}

func NewBus() *Bus {
	b := &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
	b.idle = sync.NewCond(&b.qmu)
	return b
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *Bus) Publish(eventName string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	b.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	b.qmu.Lock()
	b.queue = append(b.queue, envelope{name: eventName, evt: evt, handlers: handlers})
	b.pending++
	if !b.draining {
		b.draining = true
		go b.drain()
	}
	b.qmu.Unlock()
}

func (b *Bus) drain() {
	for {
		b.qmu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.qmu.Unlock()
			return
		}
		env := b.queue[0]
		b.queue[0] = envelope{}
		b.queue = b.queue[1:]
		b.qmu.Unlock()

		for _, h := range env.handlers {
			b.call(env.name, h, env.evt)
		}

		b.qmu.Lock()
		b.pending--
		if b.pending == 0 {
			b.idle.Broadcast()
		}
		b.qmu.Unlock()
	}
}

func (b *Bus) call(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}

// Wait blocks until every event published so far has been handled. It must
// not be called from a handler.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.qmu.Lock()
	for b.pending > 0 {
		b.idle.Wait()
	}
	b.qmu.Unlock()
}
