package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// SeedResult summarizes the demo records inserted by SeedDemo
type SeedResult struct {
	Guides  []db.TourGuide
	Tours   []db.Tour
	Clients []db.TourClient
}

// SeedCmd creates the seed command
func SeedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo guides, tours and clients starting tomorrow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := SeedDemo(app.Ctx, app.Seeder, app.Logger, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "\n✓ Seeded %d guides, %d tours and %d clients\n\n",
				len(result.Guides), len(result.Tours), len(result.Clients))
			for _, g := range result.Guides {
				fmt.Fprintf(app.Out, "Guide  %-20s %s\n", g.Name, g.ID)
			}
			for _, t := range result.Tours {
				fmt.Fprintf(app.Out, "Tour   %-20s %s  %s\n", t.Name, t.Date.Format(time.DateOnly), t.ID)
			}
			return nil
		},
	}
}

// SeedDemo inserts two guides and three tours on consecutive days after from,
// with clients on each tour. Only the first tour has a guide.
func SeedDemo(ctx context.Context, seeder db.TourSeeder, logger *zap.Logger, from time.Time) (*SeedResult, error) {
	result := &SeedResult{}
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	for _, name := range []string{"Greta Lind", "Tomas Berg"} {
		g := db.TourGuide{ID: uuid.NewString(), Name: name}
		if err := seeder.InsertGuide(ctx, &g); err != nil {
			return nil, err
		}
		result.Guides = append(result.Guides, g)
	}

	tourClients := map[string][]string{
		"Old Town Walk":    {"Ana Costa", "Ben Okafor", "Chen Wei"},
		"Harbour Cruise":   {"Dana Novak", "Eli Haddad"},
		"Castle & Gardens": {"Farah Aziz"},
	}
	for i, name := range []string{"Old Town Walk", "Harbour Cruise", "Castle & Gardens"} {
		t := db.Tour{ID: uuid.NewString(), Name: name, Date: day.AddDate(0, 0, i+1)}
		if i == 0 {
			t.GuideID = result.Guides[0].ID
		}
		if err := seeder.InsertTour(ctx, &t); err != nil {
			return nil, err
		}
		result.Tours = append(result.Tours, t)

		for _, clientName := range tourClients[name] {
			c := db.TourClient{ID: uuid.NewString(), TourID: t.ID, Name: clientName}
			if err := seeder.InsertClient(ctx, &c); err != nil {
				return nil, err
			}
			result.Clients = append(result.Clients, c)
		}
	}

	logger.Info("Seeded demo data",
		zap.Int("guides", len(result.Guides)),
		zap.Int("tours", len(result.Tours)),
		zap.Int("clients", len(result.Clients)))

	return result, nil
}
