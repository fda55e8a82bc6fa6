package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func saleWith(paid string, lines ...Line) Document {
	doc := *NewDocument(id.New(), KindSale)
	doc.Lines = lines
	doc.AmountPaid = money(paid)
	return doc
}

func TestComputeDerivedFields(t *testing.T) {
	tests := []struct {
		name       string
		doc        func() Document
		subTotal   string
		grandTotal string
		amountDue  string
		status     PaymentStatus
	}{
		{
			name: "partial payment",
			doc: func() Document {
				return saleWith("200", Line{ProductID: id.New(), Quantity: 2, UnitPrice: money("150")})
			},
			subTotal: "300", grandTotal: "300", amountDue: "100", status: PaymentPartial,
		},
		{
			name: "unpaid with discount and tax",
			doc: func() Document {
				d := saleWith("0",
					Line{ProductID: id.New(), Quantity: 3, UnitPrice: money("10.10")},
					Line{ProductID: id.New(), Quantity: 1, UnitPrice: money("0.20")},
				)
				d.Discount = money("0.50")
				d.Tax = money("1.25")
				return d
			},
			subTotal: "30.5", grandTotal: "31.25", amountDue: "31.25", status: PaymentUnpaid,
		},
		{
			name: "overpayment floors due at zero",
			doc: func() Document {
				return saleWith("500", Line{ProductID: id.New(), Quantity: 1, UnitPrice: money("120")})
			},
			subTotal: "120", grandTotal: "120", amountDue: "0", status: PaymentPaid,
		},
		{
			name: "purchase ignores tax",
			doc: func() Document {
				d := *NewDocument(id.New(), KindPurchase)
				d.Lines = []Line{{ProductID: id.New(), Quantity: 4, UnitPrice: money("25")}}
				d.Tax = money("10")
				d.AmountPaid = money("100")
				return d
			},
			subTotal: "100", grandTotal: "100", amountDue: "0", status: PaymentPaid,
		},
		{
			name: "zero total counts as paid",
			doc: func() Document {
				return saleWith("0", Line{ProductID: id.New(), Quantity: 1, UnitPrice: money("0")})
			},
			subTotal: "0", grandTotal: "0", amountDue: "0", status: PaymentPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDerivedFields(tt.doc())

			assert.True(t, money(tt.subTotal).Equal(got.SubTotal), "subTotal %s", got.SubTotal)
			assert.True(t, money(tt.grandTotal).Equal(got.GrandTotal), "grandTotal %s", got.GrandTotal)
			assert.True(t, money(tt.amountDue).Equal(got.AmountDue), "amountDue %s", got.AmountDue)
			assert.Equal(t, tt.status, got.PaymentStatus)
		})
	}
}

func TestComputeDerivedFields_DoesNotMutateInput(t *testing.T) {
	in := saleWith("0", Line{ProductID: id.New(), Quantity: 2, UnitPrice: money("5")})

	out := ComputeDerivedFields(in)

	assert.True(t, in.Lines[0].Total.IsZero())
	assert.True(t, money("10").Equal(out.Lines[0].Total))
	assert.Equal(t, 1, out.Lines[0].LineNo)
}

func TestComputeDerivedFields_NoFloatDrift(t *testing.T) {
	in := saleWith("0.3", Line{ProductID: id.New(), Quantity: 3, UnitPrice: money("0.1")})

	out := ComputeDerivedFields(in)

	assert.True(t, out.AmountDue.IsZero())
	assert.Equal(t, PaymentPaid, out.PaymentStatus)
}

func TestValidate(t *testing.T) {
	valid := func() *Document {
		d := ComputeDerivedFields(saleWith("0", Line{ProductID: id.New(), Quantity: 1, UnitPrice: money("10")}))
		d.Number = "INV-2026-00001"
		return &d
	}

	assert.NoError(t, valid().Validate(t.Context()))

	noLines := valid()
	noLines.Lines = nil
	assert.Error(t, noLines.Validate(t.Context()))

	zeroQty := valid()
	zeroQty.Lines[0].Quantity = 0
	assert.Error(t, zeroQty.Validate(t.Context()))

	bigDiscount := valid()
	bigDiscount.Discount = money("11")
	*bigDiscount = ComputeDerivedFields(*bigDiscount)
	assert.Error(t, bigDiscount.Validate(t.Context()))

	taxedPurchase := valid()
	taxedPurchase.Kind = KindPurchase
	taxedPurchase.Tax = money("1")
	assert.Error(t, taxedPurchase.Validate(t.Context()))

	overpaid := valid()
	overpaid.AmountPaid = money("10.01")
	*overpaid = ComputeDerivedFields(*overpaid)
	err := overpaid.Validate(t.Context())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	exact := valid()
	exact.AmountPaid = money("10")
	*exact = ComputeDerivedFields(*exact)
	assert.NoError(t, exact.Validate(t.Context()))
}
