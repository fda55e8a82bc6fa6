package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

type stubRepo struct {
	monthly map[string][]MonthTotal
	from    time.Time
	to      time.Time
}

func (r *stubRepo) GetTotals(context.Context, id.ID) (Totals, error) {
	return Totals{CustomerCount: 3, SupplierCount: 1, ReceivableTotal: types.MustMoney("250"), PayableTotal: types.Zero()}, nil
}

func (r *stubRepo) MonthlyTotals(_ context.Context, _ id.ID, kind string, from, to time.Time) ([]MonthTotal, error) {
	r.from, r.to = from, to
	return r.monthly[kind], nil
}

func TestGetChart_FillsTwelveMonths(t *testing.T) {
	repo := &stubRepo{monthly: map[string][]MonthTotal{
		"sale":     {{Year: 2026, Month: 3, Total: types.MustMoney("300")}, {Year: 2025, Month: 4, Total: types.MustMoney("10")}},
		"purchase": {{Year: 2026, Month: 1, Total: types.MustMoney("120")}},
	}}
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	points, err := svc.GetChart(context.Background(), id.New())
	require.NoError(t, err)

	require.Len(t, points, ChartMonths)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), repo.to)

	assert.Equal(t, "Apr", points[0].Name)
	assert.True(t, types.MustMoney("10").Equal(points[0].Sales))
	assert.Equal(t, "Jan", points[9].Name)
	assert.True(t, types.MustMoney("120").Equal(points[9].Purchases))
	assert.Equal(t, "Mar", points[11].Name)
	assert.True(t, types.MustMoney("300").Equal(points[11].Sales))
	assert.True(t, points[5].Sales.IsZero())
}

func TestGetDashboard(t *testing.T) {
	d, err := NewService(&stubRepo{}).GetDashboard(context.Background(), id.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.TotalCustomers)
	assert.True(t, types.MustMoney("250").Equal(d.ReceivableAmount))
}
