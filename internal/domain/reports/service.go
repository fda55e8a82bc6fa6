// Package reports provides the shop dashboard figures.
package reports

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// ChartMonths is the number of months on the dashboard chart, current month included.
const ChartMonths = 12

// Dashboard summarizes counterparties of a shop.
type Dashboard struct {
	TotalCustomers   int64       `json:"totalCustomers"`
	TotalSuppliers   int64       `json:"totalSuppliers"`
	ReceivableAmount types.Money `json:"receivableAmount"`
	PayableAmount    types.Money `json:"payableAmount"`
}

// ChartPoint is one month of the sales/purchases chart.
type ChartPoint struct {
	Name      string      `json:"name"`
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Sales     types.Money `json:"sales"`
	Purchases types.Money `json:"purchases"`
}

// Service provides report generation operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetDashboard returns counterparty counts and the receivable/payable totals.
func (s *Service) GetDashboard(ctx context.Context, shopID id.ID) (*Dashboard, error) {
	totals, err := s.repo.GetTotals(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get dashboard totals: %w", err)
	}
	return &Dashboard{
		TotalCustomers:   totals.CustomerCount,
		TotalSuppliers:   totals.SupplierCount,
		ReceivableAmount: totals.ReceivableTotal,
		PayableAmount:    totals.PayableTotal,
	}, nil
}

// GetChart returns monthly sales and purchase totals for the last twelve
// months. Months without documents are present with zero totals.
func (s *Service) GetChart(ctx context.Context, shopID id.ID) ([]ChartPoint, error) {
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	start := end.AddDate(0, -ChartMonths, 0)

	sales, err := s.repo.MonthlyTotals(ctx, shopID, "sale", start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	purchases, err := s.repo.MonthlyTotals(ctx, shopID, "purchase", start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly purchases: %w", err)
	}

	index := func(totals []MonthTotal) map[[2]int]types.Money {
		m := make(map[[2]int]types.Money, len(totals))
		for _, t := range totals {
			m[[2]int{t.Year, t.Month}] = t.Total
		}
		return m
	}
	saleByMonth, purchaseByMonth := index(sales), index(purchases)

	points := make([]ChartPoint, 0, ChartMonths)
	for cur := start; cur.Before(end); cur = cur.AddDate(0, 1, 0) {
		key := [2]int{cur.Year(), int(cur.Month())}
		p := ChartPoint{
			Name:      cur.Format("Jan"),
			Year:      key[0],
			Month:     key[1],
			Sales:     types.Zero(),
			Purchases: types.Zero(),
		}
		if v, ok := saleByMonth[key]; ok {
			p.Sales = v
		}
		if v, ok := purchaseByMonth[key]; ok {
			p.Purchases = v
		}
		points = append(points, p)
	}
	return points, nil
}
