package memstore

import (
	"context"
	"sync"

	"github.com/jakechorley/tour-desk/pkg/db"
)

type subscription struct {
	store   *Store
	id      int
	handler db.ChangeHandlerFunc
	tables  map[string]bool
	once    sync.Once
}

// Subscribe registers handler for changes on tables (all tables when none are
// given). Events are delivered synchronously on the mutating goroutine.
func (s *Store) Subscribe(ctx context.Context, handler db.ChangeHandlerFunc, tables ...string) (db.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpSubscribe); err != nil {
		return nil, err
	}

	sub := &subscription{
		store:   s,
		id:      s.nextSubID,
		handler: handler,
		tables:  make(map[string]bool, len(tables)),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}
	s.nextSubID++
	s.subscribers[sub.id] = sub
	return sub, nil
}

// Subscribers returns the number of open subscriptions
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Publish delivers an event to matching subscribers as if a row had changed
func (s *Store) Publish(event db.ChangeEvent) {
	s.publish(event)
}

func (s *Store) publish(event db.ChangeEvent) {
	s.mu.Lock()
	targets := make([]*subscription, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		if len(sub.tables) == 0 || sub.tables[event.Table] {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.handler(event)
	}
}

func (sub *subscription) Close() error {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subscribers, sub.id)
		sub.store.mu.Unlock()
	})
	return nil
}
