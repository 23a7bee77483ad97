package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Notifier broadcasts collection changes over redis pub/sub.
type Notifier struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewNotifier creates a notifier publishing on channels named prefix+collection.
func NewNotifier(client *redis.Client, prefix string, logger *zap.Logger) *Notifier {
	return &Notifier{client: client, prefix: prefix, logger: logger}
}

func (n *Notifier) channel(collection string) string {
	return n.prefix + collection
}

// Publish announces that a collection changed.
func (n *Notifier) Publish(ctx context.Context, collection string) error {
	return n.client.Publish(ctx, n.channel(collection), collection).Err()
}

// Subscribe calls fn for every change announced on the collection until the
// returned function is called or ctx ends.
func (n *Notifier) Subscribe(ctx context.Context, collection string, fn func()) (func(), error) {
	ps := n.client.Subscribe(ctx, n.channel(collection))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	done := make(chan struct{})
	go func() {
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				n.logger.Debug("failed to close subscription", zap.String("collection", collection), zap.Error(err))
			}
		})
	}, nil
}
