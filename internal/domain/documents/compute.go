package documents

import (
	"shopledger/internal/core/types"
)

// ComputeDerivedFields returns a copy of doc with every derived field recomputed:
//
//	line total    = quantity × unitPrice
//	subTotal      = Σ line totals
//	grandTotal    = subTotal − discount (+ tax for sales)
//	amountDue     = max(grandTotal − amountPaid, 0)
//	paymentStatus = PAID if amountDue ≤ 0, PARTIAL if amountPaid > 0, else UNPAID
//
// The input is not modified.
func ComputeDerivedFields(doc Document) Document {
	lines := make([]Line, len(doc.Lines))
	subTotal := types.Zero()
	for i, line := range doc.Lines {
		line.LineNo = i + 1
		line.Total = types.Round(line.UnitPrice.Mul(types.NewMoney(line.Quantity)))
		subTotal = subTotal.Add(line.Total)
		lines[i] = line
	}
	doc.Lines = lines
	doc.SubTotal = subTotal

	grand := subTotal.Sub(doc.Discount)
	if doc.Kind == KindSale {
		grand = grand.Add(doc.Tax)
	}
	doc.GrandTotal = types.Round(grand)

	due := doc.GrandTotal.Sub(doc.AmountPaid)
	if due.IsNegative() {
		due = types.Zero()
	}
	doc.AmountDue = types.Round(due)

	switch {
	case !doc.AmountDue.IsPositive():
		doc.PaymentStatus = PaymentPaid
	case doc.AmountPaid.IsPositive():
		doc.PaymentStatus = PaymentPartial
	default:
		doc.PaymentStatus = PaymentUnpaid
	}

	return doc
}

// recompute applies ComputeDerivedFields in place.
func (d *Document) recompute() {
	*d = ComputeDerivedFields(*d)
}
