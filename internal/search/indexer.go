package search

import (
	"context"
	"log"
	"sync"

	"github.com/yourorg/listing-api/internal/events"
)

// Indexer consumes listing.stored events and keeps per-type counters and the
// property each listing last resolved to.
type Indexer struct {
	Pub    events.Publisher
	Logger *log.Logger

	mu         sync.RWMutex
	types      map[string]string
	properties map[string]string
}

func (i *Indexer) Run(ctx context.Context) {
	sub := i.Pub.SubscribeListingStored()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			i.Apply(evt)
		}
	}
}

// Apply records a single event. A listing that changes type moves between
// counters.
func (i *Indexer) Apply(evt events.ListingStored) {
	i.mu.Lock()
	if i.types == nil {
		i.types = map[string]string{}
		i.properties = map[string]string{}
	}
	i.types[evt.ListingID] = evt.ListingType
	if evt.PropertyKey != "" {
		i.properties[evt.ListingID] = evt.PropertyKey
	}
	i.mu.Unlock()
	if i.Logger != nil {
		i.Logger.Printf("indexer: listing.stored id=%s type=%s key=%s inserted=%t", evt.ListingID, evt.ListingType, evt.PropertyKey, evt.Inserted)
	}
}

func (i *Indexer) Counts() map[string]int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]int)
	for _, typ := range i.types {
		out[typ]++
	}
	return out
}

func (i *Indexer) PropertyKey(listingID string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	k, ok := i.properties[listingID]
	return k, ok
}
