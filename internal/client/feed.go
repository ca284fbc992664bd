package client

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/convert"
	"github.com/and161185/stockkeeper/internal/live"
	"github.com/and161185/stockkeeper/internal/model"
)

// WatchItems streams full item snapshots. The channel closes when ctx ends
// or the stream fails; a reader that falls behind only sees the newest
// snapshot.
func (c *Client) WatchItems(ctx context.Context) (<-chan []model.Item, error) {
	opt, err := c.auth()
	if err != nil {
		return nil, err
	}
	stream, err := c.rpc.WatchItems(ctx, opt)
	if err != nil {
		return nil, fromRPC(err)
	}
	return pump(ctx, stream, func(m *api.ItemList) ([]model.Item, bool) {
		items, err := convert.FromAPIItems(m.Items)
		if err != nil {
			c.log.Warn("dropping malformed snapshot", zap.Error(err))
			return nil, false
		}
		return items, true
	}, c.log.With(zap.String("stream", "items"))), nil
}

// SettingsFeed streams settings. It emits DefaultSettings() first so a
// consumer can render before the server answers.
func (c *Client) SettingsFeed(ctx context.Context) (<-chan model.Settings, error) {
	opt, err := c.auth()
	if err != nil {
		return nil, err
	}
	stream, err := c.rpc.WatchSettings(ctx, opt)
	if err != nil {
		return nil, fromRPC(err)
	}
	return pumpWithInitial(ctx, stream, model.DefaultSettings(), func(m *api.Settings) (model.Settings, bool) {
		return convert.FromAPISettings(m), true
	}, c.log.With(zap.String("stream", "settings"))), nil
}

func pump[M, T any](ctx context.Context, stream api.Receiver[M], conv func(*M) (T, bool), log *zap.Logger) <-chan T {
	out := live.NewLatest[T]()
	go run(ctx, stream, out, conv, log)
	return out.C()
}

func pumpWithInitial[M, T any](ctx context.Context, stream api.Receiver[M], first T, conv func(*M) (T, bool), log *zap.Logger) <-chan T {
	out := live.NewLatest[T]()
	out.Offer(first)
	go run(ctx, stream, out, conv, log)
	return out.C()
}

func run[M, T any](ctx context.Context, stream api.Receiver[M], out *live.Latest[T], conv func(*M) (T, bool), log *zap.Logger) {
	defer out.Close()
	for {
		m, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Warn("watch ended", zap.Error(fromRPC(err)))
			}
			return
		}
		if v, ok := conv(m); ok {
			out.Offer(v)
		}
	}
}
