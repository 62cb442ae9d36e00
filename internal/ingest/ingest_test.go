package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/store"
	"github.com/yourorg/listing-api/listing"
)

type fakeStore struct {
	mu     sync.Mutex
	rows   map[string]store.UpsertInput
	err    error
	failID string
}

func (f *fakeStore) UpsertListing(_ context.Context, in store.UpsertInput) (store.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && (f.failID == "" || f.failID == in.ID) {
		return store.UpsertResult{}, f.err
	}
	if f.rows == nil {
		f.rows = map[string]store.UpsertInput{}
	}
	prev, exists := f.rows[in.ID]
	f.rows[in.ID] = in
	return store.UpsertResult{
		ListingID: in.ID,
		Inserted:  !exists,
		Unchanged: exists && string(prev.PayloadJSON) == string(in.PayloadJSON),
	}, nil
}

type fakeCache struct {
	mu   sync.Mutex
	docs map[string]string
	err  error
}

func (f *fakeCache) SetListing(_ context.Context, id string, doc []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = map[string]string{}
	}
	f.docs[id] = string(doc)
	return f.err
}

const payload = `[
	{"listingType": "Residential", "id": "R1", "agentId": "A1", "statusType": "current",
	 "address": {"streetNumber": "12", "street": "Smith Street", "suburb": "Fitzroy", "state": "VIC", "postcode": "3065", "latitude": -37.8, "longitude": 144.97}},
	{"listingType": "rental", "id": "R2", "agentId": "A1", "pricing": {"rentalPrice": 400, "paymentFrequencyType": "weekly"}}
]`

func TestIngest_WritesEveryListing(t *testing.T) {
	st := &fakeStore{}
	cache := &fakeCache{}
	pub := events.NewInMemory(8)
	in := New(st, cache, pub)

	res, err := in.Ingest(context.Background(), "api", []byte(payload))
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "R1", res[0].ListingID)
	assert.Equal(t, listing.Residential, res[0].ListingType)
	assert.Equal(t, "12 smith st|fitzroy|vic|3065", res[0].PropertyKey)
	assert.True(t, res[0].Inserted)
	assert.Equal(t, listing.Rental, res[1].ListingType)

	row := st.rows["R1"]
	assert.Equal(t, "residential", row.ListingType)
	assert.Equal(t, "A1", row.AgentID)
	assert.Equal(t, "api", row.Source)
	assert.True(t, row.Lat.Valid)
	assert.Equal(t, "rental", st.rows["R2"].ListingType)
	assert.False(t, st.rows["R2"].PropertyKey.Valid)

	d, err := listing.Decode([]byte(cache.docs["R2"]))
	require.NoError(t, err)
	assert.Equal(t, listing.Rental, d.ListingType())

	sub := pub.SubscribeListingStored()
	require.Len(t, sub, 2)
	first := <-sub
	assert.Equal(t, "R1", first.ListingID)
	assert.Equal(t, "residential", first.ListingType)
}

func TestIngest_UnchangedSkipsPublish(t *testing.T) {
	st := &fakeStore{}
	pub := events.NewInMemory(8)
	in := New(st, nil, pub)
	doc := []byte(`{"listingType": "land", "id": "L1", "agentId": "A2"}`)

	_, err := in.Ingest(context.Background(), "api", doc)
	require.NoError(t, err)
	res, err := in.Ingest(context.Background(), "api", doc)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Unchanged)
	assert.Len(t, pub.SubscribeListingStored(), 1)
}

func TestIngest_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing discriminator",
			doc:  `[{"listingType": "land", "id": "L1", "agentId": "A"}, {"id": "X"}]`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, listing.ErrMissingDiscriminator)
			},
		},
		{
			name: "unknown discriminator",
			doc:  `{"listingType": "commercial", "id": "C1"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, listing.ErrUnknownDiscriminator)
			},
		},
		{
			name: "missing agent",
			doc:  `{"listingType": "rural", "id": "RU1"}`,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "RU1", ve.ListingID)
			},
		},
		{
			name: "bad status",
			doc:  `{"listingType": "rural", "id": "RU2", "agentId": "A", "statusType": "pending"}`,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{}
			_, err := New(st, nil, nil).Ingest(context.Background(), "api", []byte(tt.doc))
			require.Error(t, err)
			tt.check(t, err)
			assert.Empty(t, st.rows)
		})
	}
}

func TestIngest_StoreError(t *testing.T) {
	st := &fakeStore{err: errors.New("db down")}
	_, err := New(st, nil, nil).Ingest(context.Background(), "api", []byte(`{"listingType": "land", "id": "L1", "agentId": "A"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing L1: db down")
}

func TestIngest_StoreErrorReturnsWrittenResults(t *testing.T) {
	st := &fakeStore{err: errors.New("db down"), failID: "R2"}
	res, err := New(st, nil, nil).Ingest(context.Background(), "api", []byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing R2: db down")
	require.Len(t, res, 1)
	assert.Equal(t, "R1", res[0].ListingID)
	assert.Contains(t, st.rows, "R1")
}

func TestIngest_StatusIgnoresCase(t *testing.T) {
	st := &fakeStore{}
	res, err := New(st, nil, nil).Ingest(context.Background(), "api",
		[]byte(`{"listingType": "residential", "id": "R9", "agentId": "A", "statusType": "offMarket", "pricing": {"salePrice": 1}}`))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "offmarket", st.rows["R9"].Status.String)

	_, err = New(st, nil, nil).Ingest(context.Background(), "api",
		[]byte(`{"listingType": "rental", "id": "R10", "agentId": "A", "pricing": {"paymentFrequencyType": "Monthly"}}`))
	require.NoError(t, err)
}

func TestIngest_CacheErrorIsNotFatal(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	res, err := New(&fakeStore{}, cache, nil).Ingest(context.Background(), "api", []byte(`{"listingType": "land", "id": "L1", "agentId": "A"}`))
	require.NoError(t, err)
	assert.Len(t, res, 1)
}
