package db

import "context"

// TourReader loads the full tour list with guides and clients, ordered by date
type TourReader interface {
	GetTours(ctx context.Context) ([]Tour, error)
}

// TourWriter applies targeted updates to single rows
type TourWriter interface {
	UpdateClientStatus(ctx context.Context, clientID string, status CheckInStatus) error
	AssignGuide(ctx context.Context, tourID, guideID string) error
}

// TourStore defines the interface for tour database operations.
// Both postgres.DB and memstore.Store implement this interface.
type TourStore interface {
	TourReader
	TourWriter
}

// TourSeeder inserts new records; used to populate demo data
type TourSeeder interface {
	InsertGuide(ctx context.Context, guide *TourGuide) error
	InsertTour(ctx context.Context, tour *Tour) error
	InsertClient(ctx context.Context, client *TourClient) error
}

// ChangeHandlerFunc receives change events delivered by a ChangeFeed
type ChangeHandlerFunc func(event ChangeEvent)

// ChangeFeed delivers row-level change notifications for the given tables.
// An empty table list means every table the feed knows about.
type ChangeFeed interface {
	Subscribe(ctx context.Context, handler ChangeHandlerFunc, tables ...string) (Subscription, error)
}

// Subscription is an open change-notification channel. Close must be safe to
// call more than once.
type Subscription interface {
	Close() error
}
