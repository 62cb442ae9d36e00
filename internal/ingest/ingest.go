package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yourorg/listing-api/internal/canon"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/store"
	"github.com/yourorg/listing-api/listing"
)

// ListingWriter persists a listing row; *store.Store satisfies it.
type ListingWriter interface {
	UpsertListing(ctx context.Context, in store.UpsertInput) (store.UpsertResult, error)
}

// Cache holds raw listing documents; *redisx.Client satisfies it.
type Cache interface {
	SetListing(ctx context.Context, id string, doc []byte, ttl time.Duration) error
}

// ValidationError wraps the validator failures of one listing.
type ValidationError struct {
	ListingID string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listing %q failed validation: %v", e.ListingID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type Result struct {
	ListingID   string       `json:"id"`
	ListingType listing.Type `json:"listingType"`
	PropertyKey string       `json:"propertyKey,omitempty"`
	Inserted    bool         `json:"inserted"`
	Unchanged   bool         `json:"unchanged"`
}

type Ingestor struct {
	Store    ListingWriter
	Cache    Cache
	Pub      events.Publisher
	Logger   *log.Logger
	CacheTTL time.Duration

	once     sync.Once
	validate *validator.Validate
}

func New(st ListingWriter, cache Cache, pub events.Publisher) *Ingestor {
	return &Ingestor{Store: st, Cache: cache, Pub: pub, CacheTTL: time.Hour}
}

func (in *Ingestor) logf(format string, args ...any) {
	if in.Logger != nil {
		in.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (in *Ingestor) checker() *validator.Validate {
	in.once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := listing.RegisterValidations(v); err != nil {
			panic(err)
		}
		in.validate = v
	})
	return in.validate
}

// Ingest decodes one listing document or an array of them, validates each
// listing and writes it through store, cache and publisher. Decode and
// validation failures reject the whole payload before anything is written.
// Writes are not transactional across listings: a store failure stops the
// run and returns the results of the listings already written with the error.
func (in *Ingestor) Ingest(ctx context.Context, source string, raw []byte) ([]Result, error) {
	listings, err := listing.DecodeAll(raw)
	if err != nil {
		return nil, err
	}
	docs, err := documents(raw)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(listings) {
		return nil, errors.New("ingest: document count mismatch")
	}
	for _, l := range listings {
		if err := in.checker().Struct(l); err != nil {
			return nil, &ValidationError{ListingID: l.Common().ID, Err: err}
		}
	}

	results := make([]Result, 0, len(listings))
	for i, l := range listings {
		res, err := in.write(ctx, source, docs[i], l)
		if err != nil {
			return results, fmt.Errorf("listing %s: %w", l.Common().ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (in *Ingestor) write(ctx context.Context, source string, doc []byte, l listing.Listing) (Result, error) {
	b := l.Common()
	norm := canon.Canonicalize(b.Address)
	res := Result{ListingID: b.ID, ListingType: l.ListingType(), PropertyKey: norm.PropertyKey}

	if in.Store != nil {
		up := store.UpsertInput{
			ID:          b.ID,
			ListingType: l.ListingType().String(),
			AgentID:     b.AgentID,
			Status:      store.NullString(strings.ToLower(b.Status)),
			PropertyKey: store.NullString(norm.PropertyKey),
			Suburb:      store.NullString(norm.Suburb),
			State:       store.NullString(norm.State),
			Postcode:    store.NullString(norm.Postcode),
			Source:      source,
			PayloadJSON: doc,
		}
		if b.Address != nil {
			up.Lat = store.NullFloat(b.Address.Latitude)
			up.Lon = store.NullFloat(b.Address.Longitude)
		}
		out, err := in.Store.UpsertListing(ctx, up)
		if err != nil {
			return res, err
		}
		res.Inserted, res.Unchanged = out.Inserted, out.Unchanged
	}
	if in.Cache != nil {
		if err := in.Cache.SetListing(ctx, b.ID, doc, in.CacheTTL); err != nil {
			in.logf("[WARN] cache set failed for listing %s: %v", b.ID, err)
		}
	}
	if in.Pub != nil && !res.Unchanged {
		in.Pub.PublishListingStored(ctx, events.ListingStored{
			ListingID:   b.ID,
			ListingType: l.ListingType().String(),
			PropertyKey: norm.PropertyKey,
			Inserted:    res.Inserted,
		})
	}
	return res, nil
}
