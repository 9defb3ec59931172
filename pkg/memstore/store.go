// Package memstore provides an in-process tour store and change feed with the
// same read ordering and notification semantics as the Postgres backend.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jakechorley/tour-desk/pkg/db"
)

var (
	_ db.TourStore  = (*Store)(nil)
	_ db.TourSeeder = (*Store)(nil)
	_ db.ChangeFeed = (*Store)(nil)
)

// Operation names accepted by FailNext
const (
	OpGetTours           = "GetTours"
	OpUpdateClientStatus = "UpdateClientStatus"
	OpAssignGuide        = "AssignGuide"
	OpSubscribe          = "Subscribe"
)

// Store keeps guides, tours and clients in memory
type Store struct {
	mu          sync.Mutex
	guides      map[string]db.TourGuide
	tours       map[string]db.Tour
	clients     map[string]db.TourClient
	failures    map[string]error
	subscribers map[int]*subscription
	nextSubID   int
}

// New creates an empty store
func New() *Store {
	return &Store{
		guides:      make(map[string]db.TourGuide),
		tours:       make(map[string]db.Tour),
		clients:     make(map[string]db.TourClient),
		failures:    make(map[string]error),
		subscribers: make(map[int]*subscription),
	}
}

// FailNext makes the next call of op return err
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

// GetTours returns every tour joined with its guide and clients, ordered by
// ascending date then id
func (s *Store) GetTours(ctx context.Context) ([]db.Tour, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpGetTours); err != nil {
		return nil, err
	}

	tours := make([]db.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		if guide, ok := s.guides[t.GuideID]; ok {
			g := guide
			t.Guide = &g
		}
		t.Clients = s.clientsOf(t.ID)
		tours = append(tours, t)
	}

	sort.SliceStable(tours, func(i, j int) bool {
		if !tours[i].Date.Equal(tours[j].Date) {
			return tours[i].Date.Before(tours[j].Date)
		}
		return tours[i].ID < tours[j].ID
	})

	return tours, nil
}

func (s *Store) clientsOf(tourID string) []db.TourClient {
	clients := []db.TourClient{}
	for _, c := range s.clients {
		if c.TourID == tourID {
			clients = append(clients, c)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients
}

// UpdateClientStatus sets the check-in status of a single client
func (s *Store) UpdateClientStatus(ctx context.Context, clientID string, status db.CheckInStatus) error {
	s.mu.Lock()
	if err := s.takeFailure(OpUpdateClientStatus); err != nil {
		s.mu.Unlock()
		return err
	}
	client, ok := s.clients[clientID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to update client status: client %s not found", clientID)
	}
	client.CheckInStatus = status
	s.clients[clientID] = client
	s.mu.Unlock()

	s.publish(db.ChangeEvent{Table: db.TableTourClients, Operation: "UPDATE", RowID: clientID})
	return nil
}

// AssignGuide sets the guide reference of a single tour
func (s *Store) AssignGuide(ctx context.Context, tourID, guideID string) error {
	s.mu.Lock()
	if err := s.takeFailure(OpAssignGuide); err != nil {
		s.mu.Unlock()
		return err
	}
	tour, ok := s.tours[tourID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to assign guide: tour %s not found", tourID)
	}
	if _, ok := s.guides[guideID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to assign guide: guide %s not found", guideID)
	}
	tour.GuideID = guideID
	s.tours[tourID] = tour
	s.mu.Unlock()

	s.publish(db.ChangeEvent{Table: db.TableTours, Operation: "UPDATE", RowID: tourID})
	return nil
}

// InsertGuide adds a guide, generating an id when none is set
func (s *Store) InsertGuide(ctx context.Context, guide *db.TourGuide) error {
	if guide.ID == "" {
		guide.ID = uuid.New().String()
	}
	s.mu.Lock()
	if _, exists := s.guides[guide.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("failed to insert guide: duplicate id %s", guide.ID)
	}
	s.guides[guide.ID] = *guide
	s.mu.Unlock()

	s.publish(db.ChangeEvent{Table: db.TableTourGuides, Operation: "INSERT", RowID: guide.ID})
	return nil
}

// InsertTour adds a tour, generating an id when none is set.
// Nested guide and clients are ignored.
func (s *Store) InsertTour(ctx context.Context, tour *db.Tour) error {
	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}
	s.mu.Lock()
	if _, exists := s.tours[tour.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("failed to insert tour: duplicate id %s", tour.ID)
	}
	if tour.GuideID != "" {
		if _, ok := s.guides[tour.GuideID]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("failed to insert tour: guide %s not found", tour.GuideID)
		}
	}
	stored := *tour
	stored.Guide = nil
	stored.Clients = nil
	s.tours[tour.ID] = stored
	s.mu.Unlock()

	s.publish(db.ChangeEvent{Table: db.TableTours, Operation: "INSERT", RowID: tour.ID})
	return nil
}

// InsertClient adds a client to an existing tour, generating an id when none is set
func (s *Store) InsertClient(ctx context.Context, client *db.TourClient) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	s.mu.Lock()
	if _, ok := s.tours[client.TourID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to insert client: tour %s not found", client.TourID)
	}
	if _, exists := s.clients[client.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("failed to insert client: duplicate id %s", client.ID)
	}
	s.clients[client.ID] = *client
	s.mu.Unlock()

	s.publish(db.ChangeEvent{Table: db.TableTourClients, Operation: "INSERT", RowID: client.ID})
	return nil
}
