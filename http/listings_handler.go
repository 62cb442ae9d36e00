package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/yourorg/listing-api/internal/ingest"
	"github.com/yourorg/listing-api/internal/redisx"
	"github.com/yourorg/listing-api/internal/store"
	"github.com/yourorg/listing-api/listing"
)

const maxBody = 4 << 20

// PayloadReader loads stored listing documents; *store.Store satisfies it.
type PayloadReader interface {
	FetchPayload(ctx context.Context, id string) ([]byte, error)
}

// DocCache is the raw-document cache; *redisx.Client satisfies it.
type DocCache interface {
	GetListing(ctx context.Context, id string) ([]byte, error)
	SetListing(ctx context.Context, id string, doc []byte, ttl time.Duration) error
}

type storeCounter interface {
	CountByType(ctx context.Context) (map[string]int, error)
}

// TypeCounter reports listing counts per type.
type TypeCounter interface {
	Counts() map[string]int
}

type ListingsDeps struct {
	Ingestor *ingest.Ingestor
	Store    PayloadReader
	Cache    DocCache
	Index    TypeCounter
	CacheTTL time.Duration
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Route("/v1/listings", func(r chi.Router) {
		r.Post("/resolve", func(w http.ResponseWriter, req *http.Request) {
			body, ok := readBody(w, req)
			if !ok {
				return
			}
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(body, &obj); err != nil {
				renderError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
				return
			}
			l, err := listing.Resolve(obj)
			if err != nil {
				renderDecodeError(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "listingType": l.ListingType()})
		})

		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			if d.Ingestor == nil {
				renderError(w, req, http.StatusServiceUnavailable, "ingest_disabled", "no ingestor configured")
				return
			}
			body, ok := readBody(w, req)
			if !ok {
				return
			}
			res, err := d.Ingestor.Ingest(req.Context(), "api", body)
			if err != nil && len(res) > 0 {
				// the listings in res were written before the failure
				log.Printf("[WARN] ingest stopped after %d listing(s): %v", len(res), err)
				render.Status(req, http.StatusInternalServerError)
				render.JSON(w, req, map[string]any{"error": "ingest_partial", "detail": err.Error(), "count": len(res), "results": res})
				return
			}
			if err != nil {
				renderDecodeError(w, req, err)
				return
			}
			render.Status(req, http.StatusCreated)
			render.JSON(w, req, map[string]any{"ok": true, "count": len(res), "results": res})
		})

		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			counts := map[string]int{}
			if d.Index != nil {
				counts = d.Index.Counts()
			}
			out := map[string]any{"ok": true, "counts": counts}
			if c, ok := d.Store.(storeCounter); ok {
				stored, err := c.CountByType(req.Context())
				if err != nil {
					log.Printf("[WARN] store counts failed: %v", err)
				} else {
					out["stored"] = stored
				}
			}
			render.JSON(w, req, out)
		})

		r.Get("/{listingID}", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "listingID")
			doc, source, err := loadDocument(req.Context(), d, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					renderError(w, req, http.StatusNotFound, "not_found", id)
					return
				}
				renderError(w, req, http.StatusInternalServerError, "lookup_error", err.Error())
				return
			}
			l, err := listing.Decode(doc)
			if err != nil {
				renderError(w, req, http.StatusInternalServerError, "stored_document_invalid", err.Error())
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "source": source, "data": listing.Wrap(l)})
		})
	})
}

func loadDocument(ctx context.Context, d ListingsDeps, id string) ([]byte, string, error) {
	if d.Cache != nil {
		doc, err := d.Cache.GetListing(ctx, id)
		if err == nil {
			return doc, "cache", nil
		}
		if !errors.Is(err, redisx.ErrMiss) {
			log.Printf("[WARN] cache lookup failed for listing %s: %v", id, err)
		}
	}
	if d.Store == nil {
		return nil, "", store.ErrNotFound
	}
	doc, err := d.Store.FetchPayload(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if d.Cache != nil {
		ttl := d.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		if err := d.Cache.SetListing(ctx, id, doc, ttl); err != nil {
			log.Printf("[WARN] cache backfill failed for listing %s: %v", id, err)
		}
	}
	return doc, "database", nil
}

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBody))
	if err != nil {
		renderError(w, req, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return nil, false
	}
	return body, true
}

func renderDecodeError(w http.ResponseWriter, req *http.Request, err error) {
	var de *listing.DiscriminatorError
	var ve *ingest.ValidationError
	var doc *listing.DocumentError
	switch {
	case errors.As(err, &de):
		renderError(w, req, http.StatusBadRequest, de.Kind.String(), err.Error())
	case errors.As(err, &ve):
		renderError(w, req, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.As(err, &doc):
		renderError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
	default:
		log.Printf("[WARN] ingest failed: %v", err)
		renderError(w, req, http.StatusInternalServerError, "ingest_error", err.Error())
	}
}

func renderError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"error": code, "detail": detail})
}
