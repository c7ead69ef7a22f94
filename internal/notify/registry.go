// Package notify delivers ephemeral events to the connections a user
// currently has open.
//
// Delivery is best-effort and at-most-once. An event published while the
// user has no open connection is dropped; nothing is queued for later.
package notify

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var ErrRegistryClosed = errors.New("notification registry closed")

const (
	KindTaskShared    = "task_shared"
	KindStatusChanged = "status_changed"
	KindSubscribed    = "subscribed"
	KindUnsubscribed  = "unsubscribed"
	KindError         = "error"
)

// Event is the payload written to subscribers. It is never persisted.
type Event struct {
	Kind    string `json:"kind,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// Subscriber is one open connection listening on a user's topic.
type Subscriber interface {
	// Topic is the user id the subscriber listens on.
	Topic() string
	// Deliver hands the event over without blocking and reports
	// whether it was accepted.
	Deliver(ev Event) bool
	Close()
}

// Registry maps user ids to their open subscribers.
type Registry struct {
	logger zerolog.Logger

	mu     sync.RWMutex
	topics map[string]map[Subscriber]struct{}
	closed bool
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		logger: logger,
		topics: make(map[string]map[Subscriber]struct{}),
	}
}

func (r *Registry) Add(sub Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	topic := sub.Topic()
	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[Subscriber]struct{})
		r.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	r.logger.Debug().
		Str("user_id", topic).
		Int("subscribers", len(subs)).
		Msg("added subscriber")
	return nil
}

// Remove reports whether the subscriber was registered.
func (r *Registry) Remove(sub Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic := sub.Topic()
	subs, ok := r.topics[topic]
	if !ok {
		return false
	}
	if _, ok = subs[sub]; !ok {
		return false
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(r.topics, topic)
	}

	r.logger.Debug().
		Str("user_id", topic).
		Int("subscribers", len(subs)).
		Msg("removed subscriber")
	return true
}

// Publish fans the event out to every subscriber of userID and returns
// how many of them accepted it. Zero means the event is gone.
func (r *Registry) Publish(userID string, ev Event) int {
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.topics[userID]))
	for sub := range r.topics[userID] {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.Deliver(ev) {
			delivered++
		}
	}

	r.logger.Debug().
		Str("user_id", userID).
		Str("kind", ev.Kind).
		Int("subscribers", len(subs)).
		Int("delivered", delivered).
		Msg("published event")
	return delivered
}

func (r *Registry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[userID])
}

// Close disconnects every subscriber and rejects further Add calls.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true

	var subs []Subscriber
	for _, topicSubs := range r.topics {
		for sub := range topicSubs {
			subs = append(subs, sub)
		}
	}
	r.topics = make(map[string]map[Subscriber]struct{})
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	r.logger.Info().
		Int("subscribers", len(subs)).
		Msg("closed notification registry")
}
