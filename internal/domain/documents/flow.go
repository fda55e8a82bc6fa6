package documents

import (
	"fmt"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/registers/stock"
)

// Flow captures everything that differs between the sale and the purchase lifecycle.
// The orchestrator is written once against a Flow.
type Flow struct {
	Kind             Kind
	Title            string
	NumberPrefix     string
	CounterpartyKind counterparty.Kind
	CounterpartyType Type

	// Cash direction of a payment; a return goes the opposite way.
	PaymentType     cashflow.Type
	PaymentCategory cashflow.Category
	ReturnCategory  cashflow.Category

	CreateOp stock.Operation
	CancelOp stock.Operation

	// BulkVerb completes "Bulk payment ... X".
	BulkVerb string
}

// SaleFlow sells goods to a customer: stock out, cash in.
var SaleFlow = Flow{
	Kind:             KindSale,
	Title:            "Sale",
	NumberPrefix:     "INV",
	CounterpartyKind: counterparty.KindCustomer,
	CounterpartyType: TypeCustomer,
	PaymentType:      cashflow.CashIn,
	PaymentCategory:  cashflow.CategorySalePayment,
	ReturnCategory:   cashflow.CategorySaleReturn,
	CreateOp:         stock.OpIssue,
	CancelOp:         stock.OpReturnIssued,
	BulkVerb:         "received from",
}

// PurchaseFlow buys goods from a supplier: stock in, cash out.
var PurchaseFlow = Flow{
	Kind:             KindPurchase,
	Title:            "Purchase",
	NumberPrefix:     "BILL",
	CounterpartyKind: counterparty.KindSupplier,
	CounterpartyType: TypeSupplier,
	PaymentType:      cashflow.CashOut,
	PaymentCategory:  cashflow.CategoryPurchasePayment,
	ReturnCategory:   cashflow.CategoryPurchaseReturn,
	CreateOp:         stock.OpReceive,
	CancelOp:         stock.OpReverseReceipt,
	BulkVerb:         "made to",
}

// FlowFor returns the flow of a document kind.
func FlowFor(kind Kind) Flow {
	if kind == KindPurchase {
		return PurchaseFlow
	}
	return SaleFlow
}

// FlowForCounterparty returns the flow whose documents a counterparty kind settles.
func FlowForCounterparty(kind counterparty.Kind) Flow {
	if kind == counterparty.KindSupplier {
		return PurchaseFlow
	}
	return SaleFlow
}

// BulkDescription is the default description of a lump payment transaction.
func (f Flow) BulkDescription(counterpartyName string) string {
	return fmt.Sprintf("Bulk payment %s %s", f.BulkVerb, counterpartyName)
}

// linkDocument fills the document and counterparty references of a ledger entry.
func (f Flow) linkDocument(e *cashflow.Entry, doc *Document) {
	docID := doc.ID
	if f.Kind == KindSale {
		e.SaleID = &docID
	} else {
		e.PurchaseID = &docID
	}
	f.LinkCounterparty(e, doc.CounterpartyID)
}

// LinkCounterparty sets the customer or supplier reference of a ledger entry.
func (f Flow) LinkCounterparty(e *cashflow.Entry, counterpartyID *id.ID) {
	if counterpartyID == nil {
		return
	}
	cp := *counterpartyID
	if f.CounterpartyKind == counterparty.KindCustomer {
		e.CustomerID = &cp
	} else {
		e.SupplierID = &cp
	}
}
