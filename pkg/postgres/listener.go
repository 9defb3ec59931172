package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// listener holds a dedicated pooled connection LISTENing on notifyChannel
type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe opens a change-notification channel for the given tables (all
// tables when none are given). The handler runs on the listener goroutine.
// The returned subscription owns a pooled connection until it is closed.
func (d *DB) Subscribe(ctx context.Context, handler db.ChangeHandlerFunc, tables ...string) (db.Subscription, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listener connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{notifyChannel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	watched := make(map[string]bool, len(tables))
	for _, t := range tables {
		watched[t] = true
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	l := &listener{cancel: cancel, done: make(chan struct{})}

	d.logger.Debug("Listening for changes",
		zap.String("channel", notifyChannel),
		zap.Strings("tables", tables))

	go func() {
		defer close(l.done)
		defer d.releaseListener(conn.Conn(), func() { conn.Release() })

		for {
			n, err := conn.Conn().WaitForNotification(listenCtx)
			if err != nil {
				if listenCtx.Err() == nil {
					d.logger.Error("Change listener stopped", zap.Error(err))
				}
				return
			}

			event, err := decodeChangeEvent(n)
			if err != nil {
				d.logger.Warn("Ignoring malformed change notification",
					zap.String("payload", n.Payload),
					zap.Error(err))
				continue
			}
			if len(watched) > 0 && !watched[event.Table] {
				continue
			}
			handler(event)
		}
	}()

	return l, nil
}

// Close stops the listener goroutine and returns its connection to the pool
func (l *listener) Close() error {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
	return nil
}

// releaseListener UNLISTENs on a still-open connection before handing it back.
// A connection closed by a cancelled wait is discarded by the pool on release.
func (d *DB) releaseListener(conn *pgx.Conn, release func()) {
	if !conn.IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctx, "UNLISTEN *"); err != nil {
			d.logger.Debug("Failed to unlisten", zap.Error(err))
		}
	}
	release()
}

func decodeChangeEvent(n *pgconn.Notification) (db.ChangeEvent, error) {
	var event db.ChangeEvent
	if err := json.Unmarshal([]byte(n.Payload), &event); err != nil {
		return db.ChangeEvent{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	if event.Table == "" {
		return db.ChangeEvent{}, errors.New("notification has no table")
	}
	return event, nil
}
