package postgres

import (
	"context"
	"time"

	"github.com/and161185/stockkeeper/internal/live"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ChangeChannel is the NOTIFY channel the items/settings triggers write to.
// The payload is the namespace that changed.
const ChangeChannel = "inventory_changes"

// Listener holds one pooled connection in LISTEN mode and forwards
// notifications to a live.Publisher.
type Listener struct {
	pool  *pgxpool.Pool
	log   *zap.Logger
	retry time.Duration
}

// NewListener constructs a listener over pool.
func NewListener(pool *pgxpool.Pool, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{pool: pool, log: log, retry: 2 * time.Second}
}

// Run blocks until ctx ends, reconnecting after a fixed delay whenever the
// connection drops. After each reconnect every topic is signalled, because
// notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context, pub live.Publisher) error {
	first := true
	for {
		err := l.listen(ctx, pub, !first)
		first = false
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("change listener disconnected", zap.Error(err), zap.Duration("retry_in", l.retry))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context, pub live.Publisher, resync bool) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	l.log.Info("listening for changes", zap.String("channel", ChangeChannel))
	if resync {
		pub.PublishAll()
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		pub.Publish(n.Payload)
	}
}
