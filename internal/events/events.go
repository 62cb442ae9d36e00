package events

import (
	"context"
)

type ListingStored struct {
	ListingID   string
	ListingType string
	PropertyKey string
	Inserted    bool
}

type Publisher interface {
	PublishListingStored(ctx context.Context, evt ListingStored)
	SubscribeListingStored() <-chan ListingStored
}

type inMemory struct{ ch chan ListingStored }

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan ListingStored, buffer)}
}

// PublishListingStored drops the event when the buffer is full.
func (m *inMemory) PublishListingStored(_ context.Context, evt ListingStored) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeListingStored() <-chan ListingStored { return m.ch }
