// Package ratestore is the local SQLite cache of exchange rates.
//
// Rates are fetched once and kept forever: a historical rate never changes.
// Each batch of fetched rates is recorded under a time sortable ULID so that
// the origin of every rate used in a report can be traced.
package ratestore

import (
	"context"
	cryptoRand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/date"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Schema creates the tables, it can be run on an existing database.
const Schema = `
CREATE TABLE IF NOT EXISTS fetches (
	id       TEXT PRIMARY KEY,
	currency TEXT NOT NULL,
	created  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rates (
	currency TEXT NOT NULL,
	day      TEXT NOT NULL,
	rate     TEXT NOT NULL,
	fetch_id TEXT NOT NULL REFERENCES fetches(id),
	PRIMARY KEY (currency, day)
);
`

// Store is a rate cache backed by a SQLite file.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	mono io.Reader
}

// Open opens or creates the store at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open rate store %s: %w", path, err)
	}
	// a single writer, sqlite serializes them anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create rate store schema in %s: %w", path, err)
	}

	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Store{
		db:   db,
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// newID returns a new ULID, increasing even within the same millisecond.
func (s *Store) newID(now time.Time) (ulid.ULID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.New(ulid.Timestamp(now), s.mono)
}

func normalize(currency string) string { return strings.ToUpper(strings.TrimSpace(currency)) }

// Put stores the rates of h for currency as a new fetch batch, replacing the
// rates already stored for the same days. It returns the batch id.
func (s *Store) Put(ctx context.Context, currency string, h *date.History[decimal.Decimal]) (string, error) {
	currency = normalize(currency)
	now := time.Now().UTC()
	id, err := s.newID(now)
	if err != nil {
		return "", fmt.Errorf("cannot create fetch id: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO fetches (id, currency, created) VALUES (?, ?, ?)`,
		id.String(), currency, now.Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("cannot record fetch %s: %w", id, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rates (currency, day, rate, fetch_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (currency, day) DO UPDATE SET rate = excluded.rate, fetch_id = excluded.fetch_id`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	n := 0
	for day, rate := range h.Values() {
		if !rate.IsPositive() {
			return "", fmt.Errorf("invalid %s rate %v on %s", currency, rate, day)
		}
		if _, err := stmt.ExecContext(ctx, currency, day.String(), rate.String(), id.String()); err != nil {
			return "", fmt.Errorf("cannot store %s rate on %s: %w", currency, day, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Debug("stored rates", "currency", currency, "count", n, "fetch", id.String())
	return id.String(), nil
}

// History returns every stored rate of currency.
func (s *Store) History(ctx context.Context, currency string) (*date.History[decimal.Decimal], error) {
	currency = normalize(currency)
	rows, err := s.db.QueryContext(ctx, `SELECT day, rate FROM rates WHERE currency = ? ORDER BY day`, currency)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s rates: %w", currency, err)
	}
	defer rows.Close()

	h := new(date.History[decimal.Decimal])
	for rows.Next() {
		var day, value string
		if err := rows.Scan(&day, &value); err != nil {
			return nil, err
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("corrupted %s rate day %q: %w", currency, day, err)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("corrupted %s rate on %s: %w", currency, day, err)
		}
		h.Append(on, rate)
	}
	return h, rows.Err()
}

// Missing returns the days among days without a stored rate for currency,
// in chronological order and without duplicates. USD is never missing.
func (s *Store) Missing(ctx context.Context, currency string, days []date.Date) ([]date.Date, error) {
	if normalize(currency) == fxgains.USD {
		return nil, nil
	}
	h, err := s.History(ctx, currency)
	if err != nil {
		return nil, err
	}
	var missing []date.Date
	for _, day := range days {
		if _, ok := h.Get(day); !ok && !slices.Contains(missing, day) {
			missing = append(missing, day)
		}
	}
	slices.SortFunc(missing, date.Date.Compare)
	return missing, nil
}

// Currencies returns the sorted list of currencies with stored rates.
func (s *Store) Currencies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT currency FROM rates ORDER BY currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Snapshot loads the stored rates of currencies, all of them if none is
// given, into an immutable fxgains.Rates with the given lookback.
func (s *Store) Snapshot(ctx context.Context, lookback int, currencies ...string) (*fxgains.Rates, error) {
	if len(currencies) == 0 {
		var err error
		if currencies, err = s.Currencies(ctx); err != nil {
			return nil, err
		}
	}
	series := make(map[string]*date.History[decimal.Decimal], len(currencies))
	for _, c := range currencies {
		if normalize(c) == fxgains.USD {
			continue
		}
		h, err := s.History(ctx, c)
		if err != nil {
			return nil, err
		}
		series[normalize(c)] = h
	}
	return fxgains.NewRates(lookback, series)
}

// Fetch describes a stored batch of rates.
type Fetch struct {
	ID       string
	Currency string
	Created  time.Time
	Count    int
}

// Fetches returns the batches still providing at least one rate, oldest first.
func (s *Store) Fetches(ctx context.Context) ([]Fetch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.currency, COUNT(r.day)
		FROM fetches f JOIN rates r ON r.fetch_id = f.id
		GROUP BY f.id, f.currency
		ORDER BY f.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Fetch
	for rows.Next() {
		var f Fetch
		if err := rows.Scan(&f.ID, &f.Currency, &f.Count); err != nil {
			return nil, err
		}
		id, err := ulid.ParseStrict(f.ID)
		if err != nil {
			return nil, fmt.Errorf("corrupted fetch id %q: %w", f.ID, err)
		}
		f.Created = ulid.Time(id.Time()).UTC()
		list = append(list, f)
	}
	return list, rows.Err()
}
