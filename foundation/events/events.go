// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Event is one message emitted by a component of the node.
type Event struct {
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Parse splits a raw event handler message of the form "component: ..."
// into an event.
func Parse(s string) Event {
	ev := Event{Message: s, Time: time.Now().UTC()}
	if i := strings.Index(s, ":"); i > 0 && !strings.ContainsAny(s[:i], " []") {
		ev.Component = s[:i]
	}
	return ev
}

// =============================================================================

type subscriber struct {
	ch         chan Event
	components map[string]bool
}

func (s subscriber) wants(ev Event) bool {
	return len(s.components) == 0 || s.components[ev.Component]
}

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]subscriber
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. When components are provided only events of those
// components are delivered.
func (evt *Events) Acquire(id string, components ...string) chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if exists {
		return sub.ch
	}

	// Since a message will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose a message. Websocket send could take long.
	const messageBuffer = 100

	sub = subscriber{
		ch:         make(chan Event, messageBuffer),
		components: make(map[string]bool, len(components)),
	}
	for _, c := range components {
		if c != "" {
			sub.components[c] = true
		}
	}

	evt.m[id] = sub
	return sub.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Len returns the number of registered receivers.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals an event to every registered channel interested in its
// component. Send will not block waiting for a receiver on any given channel.
func (evt *Events) Send(ev Event) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, sub := range evt.m {
		if !sub.wants(ev) {
			continue
		}

		select {
		case sub.ch <- ev:
		default:
		}
	}
}
