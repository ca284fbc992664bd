package live

import (
	"context"

	"go.uber.org/zap"
)

// Follow subscribes to topic and returns a channel that first carries the
// current value from load and then a fresh value after every change signal.
// The initial load error is returned directly; later load errors are logged
// and the previous value stays current. The channel closes when ctx ends.
func Follow[T any](ctx context.Context, hub *Hub, topic string, load func(context.Context) (T, error), log *zap.Logger) (<-chan T, error) {
	if log == nil {
		log = zap.NewNop()
	}
	// Subscribe before the first read so no change between them is missed.
	signals, cancel := hub.Subscribe(topic)

	first, err := load(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	out := NewLatest[T]()
	out.Offer(first)

	go func() {
		defer out.Close()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				v, err := load(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Warn("reload after change failed", zap.String("topic", topic), zap.Error(err))
					continue
				}
				out.Offer(v)
			}
		}
	}()
	return out.C(), nil
}
