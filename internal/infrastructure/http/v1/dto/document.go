package dto

import (
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/documents"
)

// LineRequest is one item of a sale or purchase.
type LineRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	// UnitPrice defaults to the product's selling price (sale) or purchase price (purchase).
	UnitPrice *types.Money `json:"unitPrice" binding:"omitempty,money"`
}

// DocumentRequest is the body of POST /sales and POST /purchases.
// Without a customer (sale) or supplier (purchase) the document is a cash one
// and must be paid in full.
type DocumentRequest struct {
	CustomerID    string                 `json:"customerId" binding:"omitempty,uuid"`
	SupplierID    string                 `json:"supplierId" binding:"omitempty,uuid"`
	Items         []LineRequest          `json:"items" binding:"required,min=1,dive"`
	Discount      types.Money            `json:"discount" binding:"money"`
	Tax           types.Money            `json:"tax" binding:"money"`
	AmountPaid    types.Money            `json:"amountPaid" binding:"money"`
	PaymentMethod cashflow.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHEQUE CREDIT"`
	Notes         string                 `json:"notes" binding:"max=1000"`
	Date          *Date                  `json:"date"`
	BillNumber    string                 `json:"billNumber" binding:"max=64"`
}

// ToCommand converts the request into a create command for kind.
func (r *DocumentRequest) ToCommand(kind documents.Kind, shopID, userID id.ID) (documents.CreateCommand, error) {
	party, other := r.CustomerID, r.SupplierID
	field, otherField := "customerId", "supplierId"
	if kind == documents.KindPurchase {
		party, other = other, party
		field, otherField = otherField, field
	}
	if other != "" {
		return documents.CreateCommand{}, apperror.NewValidation(otherField + " is not allowed here").WithDetail("field", otherField)
	}
	counterpartyID, err := ParseOptionalID(field, party)
	if err != nil {
		return documents.CreateCommand{}, err
	}

	lines := make([]documents.LineInput, len(r.Items))
	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return documents.CreateCommand{}, apperror.NewValidation("invalid product id").WithDetail("field", "items")
		}
		lines[i] = documents.LineInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	cmd := documents.CreateCommand{
		ShopID:         shopID,
		UserID:         userID,
		CounterpartyID: counterpartyID,
		Lines:          lines,
		Discount:       r.Discount,
		Tax:            r.Tax,
		AmountPaid:     r.AmountPaid,
		PaymentMethod:  r.PaymentMethod,
		Notes:          r.Notes,
		Date:           orNow(r.Date.Value()),
	}
	if kind == documents.KindPurchase {
		cmd.Number = r.BillNumber
	}
	return cmd, nil
}

// PaymentRequest is the body of POST /sales/:id/payments and /purchases/:id/payments.
type PaymentRequest struct {
	Amount        types.Money            `json:"amount" binding:"positive_money"`
	PaymentMethod cashflow.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHEQUE CREDIT"`
	Date          *Date                  `json:"date"`
	Notes         string                 `json:"notes" binding:"max=1000"`
}

// ToCommand converts the request into a payment command.
func (r *PaymentRequest) ToCommand(shopID, userID, documentID id.ID) documents.PaymentCommand {
	return documents.PaymentCommand{
		ShopID:        shopID,
		UserID:        userID,
		DocumentID:    documentID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Date:          orNow(r.Date.Value()),
		Notes:         r.Notes,
	}
}

// DocumentListQuery holds the filters of GET /sales and GET /purchases.
type DocumentListQuery struct {
	Search         string `form:"search"`
	CounterpartyID string `form:"counterpartyId" binding:"omitempty,uuid"`
	Type           string `form:"type" binding:"omitempty,oneof=CUSTOMER SUPPLIER CASH"`
	Status         string `form:"status" binding:"omitempty,oneof=COMPLETED CANCELLED"`
	PaymentStatus  string `form:"paymentStatus" binding:"omitempty,oneof=UNPAID PARTIAL PAID"`
	From           string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To             string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a document filter.
func (q *DocumentListQuery) ToFilter(kind documents.Kind, shopID id.ID) (documents.ListFilter, error) {
	f := documents.ListFilter{
		ShopID:        shopID,
		Kind:          kind,
		Search:        q.Search,
		Type:          documents.Type(q.Type),
		Status:        documents.Status(q.Status),
		PaymentStatus: documents.PaymentStatus(q.PaymentStatus),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	var err error
	if f.CounterpartyID, err = ParseOptionalID("counterpartyId", q.CounterpartyID); err != nil {
		return f, err
	}
	if f.DateFrom, err = ParseDate("from", q.From); err != nil {
		return f, err
	}
	if f.DateTo, err = ParseEndOfDay("to", q.To); err != nil {
		return f, err
	}
	return f, nil
}
