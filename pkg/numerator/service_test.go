package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier keeps one counter per key, mimicking the sys_sequences upsert.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	var increment int64 = 1
	if len(args) == 2 {
		increment = args[1].(int64)
	}
	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	shopID := id.New()

	num, err := svc.GetNextNumber(ctx, shopID, DefaultConfig("INV"), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, shopID, DefaultConfig("INV"), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", num)
}

func TestGetNextNumber_SequencesArePerShopAndPrefix(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	shopA, shopB := id.New(), id.New()

	a1, _ := svc.Next(ctx, shopA, "INV", period)
	b1, _ := svc.Next(ctx, shopB, "INV", period)
	bill, _ := svc.Next(ctx, shopA, "BILL", period)
	a2, _ := svc.Next(ctx, shopA, "INV", period)

	assert.Equal(t, "INV-2026-00001", a1)
	assert.Equal(t, "INV-2026-00001", b1)
	assert.Equal(t, "BILL-2026-00001", bill)
	assert.Equal(t, "INV-2026-00002", a2)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	shopID := id.New()
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, shopID, DefaultConfig("ORD"), opts, period)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-00001", num)
	assert.Equal(t, 1, q.calls)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, shopID, DefaultConfig("ORD"), opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range of 10 served from memory")

	num, err = svc.GetNextNumber(ctx, shopID, DefaultConfig("ORD"), opts, period)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_QueryError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")

	_, err := New(q).GetNextNumber(context.Background(), id.New(), DefaultConfig("INV"), nil, period)
	assert.ErrorContains(t, err, "connection refused")
}

func TestFormatAndParse(t *testing.T) {
	cfg := DefaultConfig("BILL")
	formatted := formatNumber(cfg, period, 42)
	assert.Equal(t, "BILL-2026-00042", formatted)
	assert.Equal(t, int64(42), ParseNumber(formatted))

	cfg.IncludeYear = false
	assert.Equal(t, "BILL-00042", formatNumber(cfg, period, 42))
	assert.Equal(t, int64(-1), ParseNumber("supplier bill"))
}
