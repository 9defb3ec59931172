package tours

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/db"
	"github.com/jakechorley/tour-desk/pkg/notify"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}

func TestMetrics_CountFetchesAndMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	store := &mockTourStore{
		getToursFunc: func(ctx context.Context, call int) ([]db.Tour, error) {
			if call == 2 {
				return nil, errors.New("unavailable")
			}
			return []db.Tour{}, nil
		},
		assignGuideFunc: func(ctx context.Context, tourID, guideID string) error {
			return errors.New("unavailable")
		},
	}
	c := NewController(store, &mockFeed{}, &notify.Recorder{}, zap.NewNop(), WithMetrics(metrics))

	c.Refresh(context.Background())
	c.Refresh(context.Background())
	c.UpdateClientStatus(context.Background(), "c1", db.StatusNoShow)
	c.UpdateClientStatus(context.Background(), "c1", db.CheckInStatus("bogus"))
	c.AssignGuide(context.Background(), "t1", "g1")

	assert.Equal(t, 1.0, counterValue(t, metrics.fetches.WithLabelValues("applied")))
	assert.Equal(t, 1.0, counterValue(t, metrics.fetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, counterValue(t, metrics.mutations.WithLabelValues(OpUpdateClientStatus, "success")))
	assert.Equal(t, 1.0, counterValue(t, metrics.mutations.WithLabelValues(OpUpdateClientStatus, "invalid")))
	assert.Equal(t, 1.0, counterValue(t, metrics.mutations.WithLabelValues(OpAssignGuide, "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tourdesk_tour_fetches_total")
	assert.Contains(t, names, "tourdesk_mutations_total")
}

func TestMetrics_CountNotifications(t *testing.T) {
	metrics := NewMetrics(nil)
	feed := &mockFeed{}
	c := NewController(&mockTourStore{}, feed, &notify.Recorder{}, zap.NewNop(), WithMetrics(metrics))
	require.NoError(t, c.Start(context.Background()))
	waitReady(t, c)

	feed.emit(db.ChangeEvent{Table: db.TableTours, Operation: "INSERT", RowID: "a"})
	feed.emit(db.ChangeEvent{Table: db.TableTours, Operation: "DELETE", RowID: "a"})
	c.Stop()

	assert.Equal(t, 2.0, counterValue(t, metrics.notifications))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.fetch("applied")
		m.notification()
		m.mutation(OpAssignGuide, "success")
	})
}
