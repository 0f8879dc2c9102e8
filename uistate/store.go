// Package uistate holds the render-ready contact list state.
//
// A [Store] has a single logical writer (the session that loads contacts)
// and any number of readers. Readers subscribe and receive every snapshot
// in publication order; nothing is dropped or coalesced.
package uistate

import (
	"context"
	"errors"
	"sync"

	"github.com/spachava753/contactsapp/contactlist"
)

// ErrClosed is returned by [Subscription.Next] once the store or the
// subscription is closed and no snapshots remain.
var ErrClosed = errors.New("uistate: closed")

// State is what the render layer draws. While Loading is true, Contacts
// is stale and must not be treated as authoritative.
type State struct {
	Loading  bool
	Contacts contactlist.GroupedContacts
}

// Snapshot is a published State. Version increases by one on every
// publication, starting at 1 for the initial state.
type Snapshot struct {
	Version uint64
	State
}

// Store is the UI state container.
type Store struct {
	mu          sync.Mutex
	current     Snapshot
	subscribers map[*Subscription]struct{}
	closed      bool
}

// New returns a store in the initial loading state with no contacts.
func New() *Store {
	return &Store{
		current: Snapshot{
			Version: 1,
			State:   State{Loading: true, Contacts: contactlist.GroupedContacts{}},
		},
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetLoading marks the start of a load cycle. Existing contacts are kept
// but become stale.
func (s *Store) SetLoading() {
	s.publish(func(state *State) {
		state.Loading = true
	})
}

// SetLoaded ends a load cycle, replacing all contacts with grouped.
func (s *Store) SetLoaded(grouped contactlist.GroupedContacts) {
	if grouped == nil {
		grouped = contactlist.GroupedContacts{}
	}
	s.publish(func(state *State) {
		state.Loading = false
		state.Contacts = grouped
	})
}

func (s *Store) publish(mutate func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	mutate(&s.current.State)
	s.current.Version++
	for sub := range s.subscribers {
		sub.push(s.current)
	}
}

// Subscribe returns a subscription whose first snapshot is the current one.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		store:  s,
		notify: make(chan struct{}, 1),
	}
	if s.closed {
		sub.done = true
		return sub
	}
	sub.push(s.current)
	s.subscribers[sub] = struct{}{}
	return sub
}

// Close tears the store down. Later writes are discarded; subscribers
// drain what they have queued and then receive [ErrClosed].
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subscribers {
		sub.finish()
	}
	clear(s.subscribers)
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

// Subscription delivers snapshots from a [Store] in order.
type Subscription struct {
	store  *Store
	notify chan struct{}

	mu      sync.Mutex
	pending []Snapshot
	done    bool
}

func (sub *Subscription) push(snapshot Snapshot) {
	sub.mu.Lock()
	sub.pending = append(sub.pending, snapshot)
	sub.mu.Unlock()
	sub.wake()
}

func (sub *Subscription) finish() {
	sub.mu.Lock()
	sub.done = true
	sub.mu.Unlock()
	sub.wake()
}

func (sub *Subscription) wake() {
	select {
	case sub.notify <- struct{}{}:
	default:
	}
}

// Next blocks until the next snapshot is available. It returns ctx.Err()
// if ctx ends first and [ErrClosed] after the queue is drained on a
// closed subscription.
func (sub *Subscription) Next(ctx context.Context) (Snapshot, error) {
	for {
		sub.mu.Lock()
		if len(sub.pending) > 0 {
			snapshot := sub.pending[0]
			sub.pending[0] = Snapshot{}
			sub.pending = sub.pending[1:]
			sub.mu.Unlock()
			return snapshot, nil
		}
		done := sub.done
		sub.mu.Unlock()
		if done {
			return Snapshot{}, ErrClosed
		}

		select {
		case <-sub.notify:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

// Close detaches the subscription. Queued snapshots can still be read.
func (sub *Subscription) Close() {
	sub.store.unsubscribe(sub)
	sub.finish()
}
