package dto

import (
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/cashflow"
)

// TransactionRequest is the body of POST /transactions. Categories owned by
// the sale and purchase flows are rejected by the service.
type TransactionRequest struct {
	Type          cashflow.Type          `json:"type" binding:"required,oneof=CASH_IN CASH_OUT"`
	Category      cashflow.Category      `json:"category" binding:"required"`
	Amount        types.Money            `json:"amount" binding:"positive_money"`
	PaymentMethod cashflow.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHEQUE CREDIT"`
	Date          *Date                  `json:"date"`
	Description   string                 `json:"description" binding:"max=500"`
	CustomerID    string                 `json:"customerId" binding:"omitempty,uuid"`
	SupplierID    string                 `json:"supplierId" binding:"omitempty,uuid"`
}

// ToEntry converts the request into a ledger entry.
func (r *TransactionRequest) ToEntry(shopID, userID id.ID) (cashflow.Entry, error) {
	customerID, err := ParseOptionalID("customerId", r.CustomerID)
	if err != nil {
		return cashflow.Entry{}, err
	}
	supplierID, err := ParseOptionalID("supplierId", r.SupplierID)
	if err != nil {
		return cashflow.Entry{}, err
	}
	return cashflow.Entry{
		ShopID:        shopID,
		Type:          r.Type,
		Category:      r.Category,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Date:          orNow(r.Date.Value()),
		Description:   r.Description,
		CustomerID:    customerID,
		SupplierID:    supplierID,
		CreatedBy:     userID,
	}, nil
}

// TransactionListQuery holds the filters of GET /transactions.
type TransactionListQuery struct {
	Type           string `form:"type" binding:"omitempty,oneof=CASH_IN CASH_OUT"`
	Category       string `form:"category"`
	CounterpartyID string `form:"counterpartyId" binding:"omitempty,uuid"`
	From           string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To             string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Search         string `form:"search"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a ledger filter.
func (q *TransactionListQuery) ToFilter(shopID id.ID) (cashflow.ListFilter, error) {
	f := cashflow.ListFilter{
		ShopID:   shopID,
		Type:     cashflow.Type(q.Type),
		Category: cashflow.Category(q.Category),
		Search:   q.Search,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	var err error
	if f.CounterpartyID, err = ParseOptionalID("counterpartyId", q.CounterpartyID); err != nil {
		return f, err
	}
	if f.From, err = ParseDate("from", q.From); err != nil {
		return f, err
	}
	if f.To, err = ParseEndOfDay("to", q.To); err != nil {
		return f, err
	}
	return f, nil
}

// TransactionListResponse is a page of transactions with totals over the whole filter.
type TransactionListResponse struct {
	Items      []*cashflow.Transaction `json:"items"`
	TotalCount int64                   `json:"totalCount"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	Summary    cashflow.Summary        `json:"summary"`
}
