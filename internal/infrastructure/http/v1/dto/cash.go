package dto

import (
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/cash"
	"shopledger/internal/domain/cashflow"
)

// CashRequest is the body of POST /cash/in (customerId) and POST /cash/out (supplierId).
type CashRequest struct {
	CustomerID    string                 `json:"customerId" binding:"omitempty,uuid"`
	SupplierID    string                 `json:"supplierId" binding:"omitempty,uuid"`
	Amount        types.Money            `json:"amount" binding:"positive_money"`
	PaymentMethod cashflow.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHEQUE CREDIT"`
	Notes         string                 `json:"notes" binding:"max=1000"`
	Date          *Date                  `json:"date"`
}

// ToCommand converts the request into an allocator command. field names the
// id the endpoint expects: "customerId" for cash in, "supplierId" for cash out.
func (r *CashRequest) ToCommand(field string, shopID, userID id.ID) (cash.Command, error) {
	raw := r.CustomerID
	if field == "supplierId" {
		raw = r.SupplierID
	}
	counterpartyID, err := ParseOptionalID(field, raw)
	if err != nil {
		return cash.Command{}, err
	}
	if counterpartyID == nil {
		return cash.Command{}, apperror.NewValidation(field + " is required").WithDetail("field", field)
	}
	return cash.Command{
		ShopID:         shopID,
		UserID:         userID,
		CounterpartyID: *counterpartyID,
		Amount:         r.Amount,
		PaymentMethod:  r.PaymentMethod,
		Date:           orNow(r.Date.Value()),
		Notes:          r.Notes,
	}, nil
}
