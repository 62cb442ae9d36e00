package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrNotFound = errors.New("store: listing not found")

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS listings (
            id              TEXT PRIMARY KEY,
            listing_type    TEXT NOT NULL,
            agent_id        TEXT NOT NULL,
            status          TEXT,
            property_key    TEXT,
            suburb          TEXT,
            state           TEXT,
            postcode        TEXT,
            lat             DOUBLE PRECISION,
            lon             DOUBLE PRECISION,
            source          TEXT NOT NULL,
            payload         JSONB NOT NULL,
            payload_sha256  TEXT NOT NULL,
            created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(listing_type);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_property_key ON listings(property_key);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_agent ON listings(agent_id);`,
		`CREATE TABLE IF NOT EXISTS listing_raw_snapshots (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            source         TEXT NOT NULL,
            listing_id     TEXT,
            payload        JSONB NOT NULL,
            fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
            payload_sha256 TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_listing ON listing_raw_snapshots(source, listing_id, fetched_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

type UpsertInput struct {
	ID          string
	ListingType string
	AgentID     string
	Status      sql.NullString
	PropertyKey sql.NullString
	Suburb      sql.NullString
	State       sql.NullString
	Postcode    sql.NullString
	Lat         sql.NullFloat64
	Lon         sql.NullFloat64
	Source      string
	PayloadJSON []byte
}

type UpsertResult struct {
	ListingID string
	Inserted  bool
	Unchanged bool
}

// UpsertListing writes the raw snapshot and upserts the listing row in one
// transaction. A payload identical to the stored one only records the snapshot.
func (s *Store) UpsertListing(ctx context.Context, in UpsertInput) (UpsertResult, error) {
	var res UpsertResult
	if s.DB == nil {
		return res, errors.New("nil db")
	}
	if in.ID == "" {
		return res, errors.New("store: listing id required")
	}
	sum := sha256.Sum256(in.PayloadJSON)
	sha := hex.EncodeToString(sum[:])

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
        INSERT INTO listing_raw_snapshots (source, listing_id, payload, payload_sha256)
        VALUES ($1,$2,$3,$4)`,
		in.Source, in.ID, string(in.PayloadJSON), sha); err != nil {
		return res, err
	}

	var prev sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT payload_sha256 FROM listings WHERE id=$1 FOR UPDATE`, in.ID).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res.Inserted = true
		err = nil
	case err != nil:
		return res, err
	}
	res.ListingID = in.ID
	if prev.Valid && prev.String == sha {
		res.Unchanged = true
		err = tx.Commit()
		return res, err
	}

	if _, err = tx.ExecContext(ctx, `
        INSERT INTO listings (id, listing_type, agent_id, status, property_key, suburb, state, postcode, lat, lon, source, payload, payload_sha256)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (id)
        DO UPDATE SET listing_type=EXCLUDED.listing_type, agent_id=EXCLUDED.agent_id, status=EXCLUDED.status, property_key=EXCLUDED.property_key,
            suburb=EXCLUDED.suburb, state=EXCLUDED.state, postcode=EXCLUDED.postcode, lat=EXCLUDED.lat, lon=EXCLUDED.lon,
            source=EXCLUDED.source, payload=EXCLUDED.payload, payload_sha256=EXCLUDED.payload_sha256, updated_at=now()`,
		in.ID, in.ListingType, in.AgentID, in.Status, in.PropertyKey, in.Suburb, in.State, in.Postcode, in.Lat, in.Lon,
		in.Source, string(in.PayloadJSON), sha); err != nil {
		return res, err
	}

	err = tx.Commit()
	return res, err
}

// FetchPayload returns the stored raw document for a listing id.
func (s *Store) FetchPayload(ctx context.Context, id string) ([]byte, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `SELECT payload::text FROM listings WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// CountByType returns the number of stored listings per listing_type.
func (s *Store) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT listing_type, count(*) FROM listings GROUP BY listing_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func NullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
