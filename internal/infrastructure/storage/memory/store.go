// Package memory provides an in-memory implementation of every repository
// and of the transaction manager. It backs service tests and local demos.
//
// A transaction holds an exclusive lock for its whole duration and restores
// a snapshot when fn fails, so concurrent units of work are serialized the
// way row locks serialize them in PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/domain/shop"
)

type state struct {
	users          map[id.ID]auth.User
	shops          map[id.ID]shop.Shop
	products       map[id.ID]product.Product
	counterparties map[id.ID]counterparty.Counterparty
	documents      map[id.ID]documents.Document
	transactions   []cashflow.Transaction
	movements      []stock.Movement
	notifications  []notification.Notification
	audit          []audit.Entry
	sequences      map[string]int64
}

func newState() *state {
	return &state{
		users:          make(map[id.ID]auth.User),
		shops:          make(map[id.ID]shop.Shop),
		products:       make(map[id.ID]product.Product),
		counterparties: make(map[id.ID]counterparty.Counterparty),
		documents:      make(map[id.ID]documents.Document),
		sequences:      make(map[string]int64),
	}
}

func (s *state) clone() *state {
	docs := make(map[id.ID]documents.Document, len(s.documents))
	for k, d := range s.documents {
		docs[k] = copyDocument(d)
	}
	return &state{
		users:          maps.Clone(s.users),
		shops:          maps.Clone(s.shops),
		products:       maps.Clone(s.products),
		counterparties: maps.Clone(s.counterparties),
		documents:      docs,
		transactions:   slices.Clone(s.transactions),
		movements:      slices.Clone(s.movements),
		notifications:  slices.Clone(s.notifications),
		audit:          slices.Clone(s.audit),
		sequences:      maps.Clone(s.sequences),
	}
}

// Store holds all data and hands out repositories over it.
type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *state
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

// RunInTransaction implements tx.Manager.
// Nested calls join the transaction already carried by ctx. The snapshot is
// restored when fn fails or panics.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Next implements documents.Numerator with a per-shop yearly counter.
func (s *Store) Next(_ context.Context, shopID id.ID, prefix string, date time.Time) (string, error) {
	var n int64
	_ = s.write(func(d *state) error {
		key := shopID.String() + ":" + prefix + "_" + date.Format("2006")
		d.sequences[key]++
		n = d.sequences[key]
		return nil
	})
	return fmt.Sprintf("%s-%s-%05d", prefix, date.Format("2006"), n), nil
}

// --- helpers ---

func copyDocument(d documents.Document) documents.Document {
	d.Lines = slices.Clone(d.Lines)
	return d
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortNamed orders by "name", "-name", "created_at" or "-created_at"; name is the default.
func sortNamed[T any](items []T, orderBy string, name func(T) string, created func(T) time.Time) {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if desc {
			a, b = b, a
		}
		if field == "created_at" {
			return created(a).Before(created(b))
		}
		return strings.ToLower(name(a)) < strings.ToLower(name(b))
	})
}
