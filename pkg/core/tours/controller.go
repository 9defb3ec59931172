// Package tours keeps an in-memory list of tours synchronized with the tour
// store and exposes the check-in and guide assignment mutations.
//
// The list is a full snapshot: every change notification triggers a complete
// re-fetch ordered by date, and each applied fetch replaces the list wholesale.
// Mutations never touch the local list; their effect shows up on the next
// fetch.
package tours

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/db"
	"github.com/jakechorley/tour-desk/pkg/notify"
)

// DefaultRequestTimeout bounds each fetch and mutation
const DefaultRequestTimeout = 10 * time.Second

// Operation names used in logs, metrics and RemoteError
const (
	OpFetchTours         = "fetch_tours"
	OpSubscribe          = "subscribe"
	OpUpdateClientStatus = "update_client_status"
	OpAssignGuide        = "assign_guide"
)

var validate = validator.New()

// ChangeHandler reacts to a change notification on a watched table
type ChangeHandler interface {
	HandleChange(ctx context.Context, event db.ChangeEvent)
}

// ChangeFunc adapts a function to ChangeHandler
type ChangeFunc func(ctx context.Context, event db.ChangeEvent)

func (f ChangeFunc) HandleChange(ctx context.Context, event db.ChangeEvent) {
	f(ctx, event)
}

// FullRefetch re-reads the whole tour list on every change, ignoring the event contents
func FullRefetch(c *Controller) ChangeHandler {
	return ChangeFunc(func(ctx context.Context, _ db.ChangeEvent) {
		c.Refresh(ctx)
	})
}

// Option configures a Controller
type Option func(*Controller)

// WithTables sets the tables whose changes trigger a re-fetch
func WithTables(tables ...string) Option {
	return func(c *Controller) {
		c.tables = tables
	}
}

// WithRequestTimeout bounds each remote call
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.requestTimeout = d
	}
}

// WithMetrics records fetch, notification and mutation counts
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithChangeHandler replaces the full re-fetch strategy
func WithChangeHandler(build func(*Controller) ChangeHandler) Option {
	return func(c *Controller) {
		c.onChange = build(c)
	}
}

// Controller owns the tour list, its loading flag and the change subscription
type Controller struct {
	store          db.TourStore
	feed           db.ChangeFeed
	notifier       notify.Notifier
	logger         *zap.Logger
	metrics        *Metrics
	tables         []string
	requestTimeout time.Duration
	onChange       ChangeHandler

	mu        sync.RWMutex
	tours     []db.Tour
	loading   bool
	requested uint64
	applied   uint64
	ready     chan struct{}

	lifecycleMu sync.Mutex
	started     bool
	stopped     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	sub         db.Subscription
	inflight    sync.WaitGroup
}

// NewController creates a controller in the loading state with an empty list.
// Nothing is fetched until Start.
func NewController(store db.TourStore, feed db.ChangeFeed, notifier notify.Notifier, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:          store,
		feed:           feed,
		notifier:       notifier,
		logger:         logger,
		tables:         []string{db.TableTours},
		requestTimeout: DefaultRequestTimeout,
		tours:          []db.Tour{},
		loading:        true,
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.onChange == nil {
		c.onChange = FullRefetch(c)
	}
	return c
}

// Tours returns a copy of the current snapshot, ordered by ascending date
func (c *Controller) Tours() []db.Tour {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]db.Tour, len(c.tours))
	for i, t := range c.tours {
		if t.Clients != nil {
			clients := make([]db.TourClient, len(t.Clients))
			copy(clients, t.Clients)
			t.Clients = clients
		}
		if t.Guide != nil {
			g := *t.Guide
			t.Guide = &g
		}
		out[i] = t
	}
	return out
}

// Loading reports whether the first fetch has yet to resolve
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Ready is closed once the first fetch resolves, successfully or not
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Start subscribes to changes on the watched tables and launches the first
// fetch. A subscription failure is logged and returned; the first fetch still
// runs so the list loads without live updates.
func (c *Controller) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.started {
		return errors.New("tour list controller already started")
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.logger.Debug("Starting tour list controller", zap.Strings("tables", c.tables))

	var subErr error
	sub, err := c.feed.Subscribe(c.ctx, c.onNotification, c.tables...)
	if err != nil {
		subErr = remoteError(OpSubscribe, err)
		c.logger.Error("Failed to subscribe to tour changes", zap.Error(subErr))
	} else {
		c.sub = sub
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.Refresh(c.ctx)
	}()

	return subErr
}

// Stop closes the change subscription, cancels in-flight fetches and waits for
// them to return. Later notifications and fetch results are ignored. Safe to
// call more than once.
func (c *Controller) Stop() {
	c.lifecycleMu.Lock()
	if !c.started || c.stopped.Load() {
		c.lifecycleMu.Unlock()
		return
	}
	c.stopped.Store(true)
	sub, cancel := c.sub, c.cancel
	c.sub = nil
	c.lifecycleMu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			c.logger.Warn("Failed to close change subscription", zap.Error(err))
		}
	}
	cancel()
	c.inflight.Wait()

	c.logger.Debug("Tour list controller stopped")
}

func (c *Controller) onNotification(event db.ChangeEvent) {
	c.lifecycleMu.Lock()
	if c.stopped.Load() {
		c.lifecycleMu.Unlock()
		return
	}
	ctx := c.ctx
	c.inflight.Add(1)
	c.lifecycleMu.Unlock()

	c.metrics.notification()
	c.logger.Debug("Change received",
		zap.String("table", event.Table),
		zap.String("op", event.Operation),
		zap.String("id", event.RowID))

	go func() {
		defer c.inflight.Done()
		c.onChange.HandleChange(ctx, event)
	}()
}

// Refresh re-reads the whole tour list. On success the snapshot is replaced
// unless a newer fetch has already been applied. On failure the previous list
// is kept and a loading error is shown. Either way the loading flag clears.
func (c *Controller) Refresh(ctx context.Context) {
	if c.stopped.Load() {
		return
	}

	c.mu.Lock()
	c.requested++
	seq := c.requested
	c.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	tours, err := c.store.GetTours(fetchCtx)

	if c.stopped.Load() {
		c.logger.Debug("Discarding fetch result after stop", zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		c.finishLoading()
		c.metrics.fetch("error")
		c.logger.Error("Failed to fetch tours",
			zap.Uint64("seq", seq),
			zap.Error(remoteError(OpFetchTours, err)))
		c.notifier.Error(notify.MsgLoadError)
		return
	}

	if tours == nil {
		tours = []db.Tour{}
	}

	c.mu.Lock()
	stale := seq < c.applied
	if !stale {
		c.tours = tours
		c.applied = seq
	}
	c.mu.Unlock()
	c.finishLoading()

	if stale {
		c.metrics.fetch("stale")
		c.logger.Debug("Discarding stale fetch result", zap.Uint64("seq", seq))
		return
	}

	c.metrics.fetch("applied")
	c.logger.Debug("Tours fetched", zap.Uint64("seq", seq), zap.Int("count", len(tours)))
}

func (c *Controller) finishLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		c.loading = false
		close(c.ready)
	}
}

type clientStatusUpdate struct {
	ClientID string `validate:"required"`
	Status   string `validate:"oneof=checked-in no-show"`
}

// UpdateClientStatus sets a client's check-in status to checked-in or no-show.
// The outcome is reported through the notifier; the local list is not changed.
func (c *Controller) UpdateClientStatus(ctx context.Context, clientID string, status db.CheckInStatus) {
	req := clientStatusUpdate{ClientID: clientID, Status: string(status)}
	if err := validate.Struct(req); err != nil {
		c.metrics.mutation(OpUpdateClientStatus, "invalid")
		c.logger.Warn("Rejected client status update",
			zap.String("client_id", clientID),
			zap.String("status", string(status)),
			zap.Error(err))
		c.notifier.Error(notify.MsgStatusError)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.store.UpdateClientStatus(callCtx, clientID, status); err != nil {
		c.metrics.mutation(OpUpdateClientStatus, "error")
		c.logger.Error("Failed to update client status",
			zap.String("client_id", clientID),
			zap.String("status", string(status)),
			zap.Error(remoteError(OpUpdateClientStatus, err)))
		c.notifier.Error(notify.MsgStatusError)
		return
	}

	c.metrics.mutation(OpUpdateClientStatus, "success")
	c.logger.Info("Client status updated",
		zap.String("client_id", clientID),
		zap.String("status", string(status)))
	c.notifier.Success(notify.MsgStatusUpdated)
}

type guideAssignment struct {
	TourID  string `validate:"required"`
	GuideID string `validate:"required"`
}

// AssignGuide sets the guide of a tour. Same reporting contract as UpdateClientStatus.
func (c *Controller) AssignGuide(ctx context.Context, tourID, guideID string) {
	if err := validate.Struct(guideAssignment{TourID: tourID, GuideID: guideID}); err != nil {
		c.metrics.mutation(OpAssignGuide, "invalid")
		c.logger.Warn("Rejected guide assignment",
			zap.String("tour_id", tourID),
			zap.String("guide_id", guideID),
			zap.Error(err))
		c.notifier.Error(notify.MsgGuideAssignFail)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.store.AssignGuide(callCtx, tourID, guideID); err != nil {
		c.metrics.mutation(OpAssignGuide, "error")
		c.logger.Error("Failed to assign guide",
			zap.String("tour_id", tourID),
			zap.String("guide_id", guideID),
			zap.Error(remoteError(OpAssignGuide, err)))
		c.notifier.Error(notify.MsgGuideAssignFail)
		return
	}

	c.metrics.mutation(OpAssignGuide, "success")
	c.logger.Info("Guide assigned",
		zap.String("tour_id", tourID),
		zap.String("guide_id", guideID))
	c.notifier.Success(notify.MsgGuideAssigned)
}
