package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode resolves the variant of a single listing document and populates it.
func Decode(data []byte) (Listing, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DocumentError{Op: "decode document", Err: err}
	}
	if obj == nil {
		return nil, &DiscriminatorError{Kind: MissingDiscriminator, Field: DiscriminatorField}
	}
	l, err := Resolve(obj)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, &DocumentError{Op: "populate " + l.ListingType().String() + " listing", Err: err}
	}
	return l, nil
}

// DecodeAll accepts either a single listing document or an array of them.
func DecodeAll(data []byte) ([]Listing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		l, err := Decode(trimmed)
		if err != nil {
			return nil, err
		}
		return []Listing{l}, nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, &DocumentError{Op: "decode array", Err: err}
	}
	out := make([]Listing, 0, len(docs))
	for i, doc := range docs {
		l, err := Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("listing[%d]: %w", i, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Reader is the read-only surface of a listing codec.
type Reader interface {
	CanRead() bool
	ReadListing(r io.Reader) (Listing, error)
	ReadAll(r io.Reader) ([]Listing, error)
}

// Converter reads polymorphic listing documents. It deliberately has no write
// capability: listings are written through an explicit Envelope instead.
type Converter struct {
	// MaxBytes bounds the input of one read. Zero means 4MB.
	MaxBytes int64
}

var _ Reader = Converter{}

func (Converter) CanRead() bool  { return true }
func (Converter) CanWrite() bool { return false }

func (c Converter) ReadListing(r io.Reader) (Listing, error) {
	b, err := c.read(r)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// ReadAll reads a single document or an array of them, as DecodeAll.
func (c Converter) ReadAll(r io.Reader) ([]Listing, error) {
	b, err := c.read(r)
	if err != nil {
		return nil, err
	}
	return DecodeAll(b)
}

func (c Converter) read(r io.Reader) ([]byte, error) {
	limit := c.MaxBytes
	if limit <= 0 {
		limit = 4 << 20
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrTooLarge
	}
	return b, nil
}

// WriteListing always fails with ErrWriteUnsupported and writes nothing.
func (Converter) WriteListing(io.Writer, Listing) error { return ErrWriteUnsupported }

// Envelope is the explicit write form of a listing: the variant tag next to
// the listing body.
type Envelope struct {
	ListingType Type    `json:"listingType"`
	Listing     Listing `json:"listing"`
}

func Wrap(l Listing) Envelope { return Envelope{ListingType: l.ListingType(), Listing: l} }
