package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// getToursQuery selects every tour with its guide and its clients, ordered by date.
// Clients are aggregated as JSON so each tour is a single row.
const getToursQuery = `
	SELECT
		t.id, t.name, t.date, t.guide_id, t.created_at,
		g.id, g.name, g.email, g.phone,
		COALESCE(
			json_agg(
				json_build_object(
					'id', c.id,
					'tour_id', c.tour_id,
					'name', c.name,
					'email', COALESCE(c.email, ''),
					'check_in_status', COALESCE(c.check_in_status, '')
				) ORDER BY c.created_at, c.id
			) FILTER (WHERE c.id IS NOT NULL),
			'[]'
		) AS clients
	FROM tours t
	LEFT JOIN tour_guides g ON g.id = t.guide_id
	LEFT JOIN tour_clients c ON c.tour_id = t.id
	GROUP BY t.id, g.id
	ORDER BY t.date ASC, t.id ASC
`

// GetTours retrieves all tours with nested guide and clients, ordered by ascending date
func (d *DB) GetTours(ctx context.Context) ([]db.Tour, error) {
	rows, err := d.pool.Query(ctx, getToursQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer rows.Close()

	tours := []db.Tour{}
	for rows.Next() {
		var t db.Tour
		var tourGuideID *string
		var guideID, guideName, guideEmail, guidePhone *string
		var clients []db.TourClient
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Date, &tourGuideID, &t.CreatedAt,
			&guideID, &guideName, &guideEmail, &guidePhone,
			&clients,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		if tourGuideID != nil {
			t.GuideID = *tourGuideID
		}
		if guideID != nil {
			t.Guide = &db.TourGuide{
				ID:    *guideID,
				Name:  deref(guideName),
				Email: deref(guideEmail),
				Phone: deref(guidePhone),
			}
		}
		if clients == nil {
			clients = []db.TourClient{}
		}
		t.Clients = clients
		tours = append(tours, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tours: %w", err)
	}

	return tours, nil
}

// UpdateClientStatus sets check_in_status on a single tour_clients row
func (d *DB) UpdateClientStatus(ctx context.Context, clientID string, status db.CheckInStatus) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE tour_clients SET check_in_status = $2 WHERE id = $1
	`, clientID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update client status: client %s not found", clientID)
	}
	return nil
}

// AssignGuide sets guide_id on a single tours row
func (d *DB) AssignGuide(ctx context.Context, tourID, guideID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE tours SET guide_id = $2 WHERE id = $1
	`, tourID, guideID)
	if err != nil {
		return fmt.Errorf("failed to assign guide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to assign guide: tour %s not found", tourID)
	}
	return nil
}

// InsertGuide inserts a new tour guide record
func (d *DB) InsertGuide(ctx context.Context, guide *db.TourGuide) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO tour_guides (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
	`, guide.ID, guide.Name, nullable(guide.Email), nullable(guide.Phone))
	if err != nil {
		return fmt.Errorf("failed to insert guide: %w", err)
	}
	return nil
}

// InsertTour inserts a new tour record; nested guide and clients are ignored
func (d *DB) InsertTour(ctx context.Context, tour *db.Tour) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO tours (id, name, date, guide_id)
		VALUES ($1, $2, $3, $4)
	`, tour.ID, tour.Name, tour.Date, nullable(tour.GuideID))
	if err != nil {
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

// InsertClient inserts a new tour client record
func (d *DB) InsertClient(ctx context.Context, client *db.TourClient) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO tour_clients (id, tour_id, name, email, check_in_status)
		VALUES ($1, $2, $3, $4, $5)
	`, client.ID, client.TourID, client.Name, nullable(client.Email), nullable(string(client.CheckInStatus)))
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
