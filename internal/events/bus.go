// Package events implements the per-job event bus the orchestrator
// publishes to and subscribers read from — a fan-out with a bounded
// queue per subscriber, modeled on the corpus's events.Hub but scoped
// to a single job and upgraded to drop (rather than silently starve)
// a subscriber that falls behind.
package events

import (
	"sync"
	"time"

	"pantryscout-discovery/internal/model"
)

const subscriberBuffer = 32

// Bus fans out one job's events to any number of subscribers. New
// subscribers are caught up with a synthesized job_started (and, if the
// job has already finished, the terminal event) but never with
// per-pantry history — callers that need that poll the store.
type Bus struct {
	mu            sync.Mutex
	subs          map[chan model.Event]struct{}
	urlsFound     int
	terminal      *model.Event
	slowThreshold time.Duration
}

// NewBus creates an empty bus. slowThreshold bounds how long Publish
// will wait on a backed-up subscriber before dropping it.
func NewBus(slowThreshold time.Duration) *Bus {
	return &Bus{
		subs:          make(map[chan model.Event]struct{}),
		slowThreshold: slowThreshold,
	}
}

// Subscribe registers a new listener and returns its channel, primed
// with a job_started event reflecting the bus's current state.
func (b *Bus) Subscribe() chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)

	b.mu.Lock()
	started := model.Event{Type: model.EventJobStarted, Data: model.JobStartedData{UrlsFound: b.urlsFound}}
	terminal := b.terminal
	// Send job_started (and, if already terminal, the terminal event)
	// while still holding the lock, before ch is reachable from Publish —
	// otherwise a Publish racing this call could slip an event onto ch
	// ahead of job_started. The channel is freshly made and buffered, so
	// these sends can't block.
	ch <- started
	if terminal != nil {
		ch <- *terminal
		close(ch)
	} else {
		b.subs[ch] = struct{}{}
	}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes and closes ch. Safe to call more than once.
func (b *Bus) Unsubscribe(ch chan model.Event) {
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// SetUrlsFound updates the count a future Subscribe() will see in its
// synthesized job_started event. The spec's tie-break rule applies: the
// most recent call wins.
func (b *Bus) SetUrlsFound(n int) {
	b.mu.Lock()
	b.urlsFound = n
	b.mu.Unlock()
}

// Publish fans ev out to every live subscriber. A subscriber whose
// queue is still full after slowThreshold is dropped: its oldest queued
// event is discarded to make room for an error_event, and its channel
// is then closed.
func (b *Bus) Publish(ev model.Event) {
	b.mu.Lock()
	if ev.Type == model.EventComplete {
		cp := ev
		b.terminal = &cp
	}
	targets := make([]chan model.Event, 0, len(b.subs))
	for ch := range b.subs {
		targets = append(targets, ch)
	}
	b.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
			go b.deliverSlow(ch, ev)
		}
	}
}

// PublishTerminal is Publish plus marking ev as the job's terminal
// event, for the job-failure path where no complete event follows an
// error_event. Orchestrator calls this instead of Publish for the last
// event on a job that ends in failure rather than success.
func (b *Bus) PublishTerminal(ev model.Event) {
	b.mu.Lock()
	cp := ev
	b.terminal = &cp
	targets := make([]chan model.Event, 0, len(b.subs))
	for ch := range b.subs {
		targets = append(targets, ch)
	}
	b.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
			go b.deliverSlow(ch, ev)
		}
	}
}

func (b *Bus) deliverSlow(ch chan model.Event, ev model.Event) {
	timer := time.NewTimer(b.slowThreshold)
	defer timer.Stop()

	select {
	case ch <- ev:
		return
	case <-timer.C:
	}

	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if !ok {
		return
	}

	// The queue is still full: discard its oldest pending event so the
	// error_event has a slot.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- model.Event{Type: model.EventError, Data: model.ErrorData{Message: "subscriber too slow, dropped"}}:
	default:
	}
	close(ch)
}

// CloseAll closes every live subscriber channel without sending a final
// event. Used when the orchestrator reaps a job past its grace period.
func (b *Bus) CloseAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[chan model.Event]struct{})
	b.mu.Unlock()
	for ch := range subs {
		close(ch)
	}
}
