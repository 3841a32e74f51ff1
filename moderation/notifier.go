package moderation

import (
	"context"
	"edirne-events/metrics"
	"errors"

	"github.com/redis/go-redis/v9"
)

// PendingChannel is the Redis channel announcing changes to the pending set.
const PendingChannel = "pending:changed"

// Notifier is told whenever the pending set of a kind changes.
type Notifier interface {
	PendingChanged(ctx context.Context, kind Kind) error
}

// Notifiers fans a notification out to every member.
type Notifiers []Notifier

func (ns Notifiers) PendingChanged(ctx context.Context, kind Kind) error {
	var errs []error
	for _, n := range ns {
		if err := n.PendingChanged(ctx, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedisNotifier publishes the kind on PendingChannel.
type RedisNotifier struct {
	Client *redis.Client
}

func (rn RedisNotifier) PendingChanged(ctx context.Context, kind Kind) error {
	return rn.Client.Publish(ctx, PendingChannel, string(kind)).Err()
}

// PendingCounter reports how many suggestions of each kind await review.
type PendingCounter interface {
	CountPending(ctx context.Context) (events, venues int, err error)
}

// GaugeNotifier refreshes the pending items gauge from the store.
type GaugeNotifier struct {
	Counter PendingCounter
}

func (gn GaugeNotifier) PendingChanged(ctx context.Context, _ Kind) error {
	events, venues, err := gn.Counter.CountPending(ctx)
	if err != nil {
		return err
	}
	metrics.SetPending(string(KindEvent), events)
	metrics.SetPending(string(KindVenue), venues)
	return nil
}
