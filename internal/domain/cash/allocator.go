// Package cash applies lump cash-in and cash-out payments across a
// counterparty's outstanding documents, oldest first.
package cash

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/documents"
	"shopledger/pkg/logger"
)

// Command is a lump payment from a customer (cash in) or to a supplier (cash out).
type Command struct {
	ShopID         id.ID
	UserID         id.ID
	CounterpartyID id.ID
	Amount         types.Money
	PaymentMethod  cashflow.PaymentMethod
	Date           time.Time
	Notes          string
}

// Result is the outcome of an allocation.
type Result struct {
	Transaction  *cashflow.Transaction      `json:"transaction"`
	Allocations  []documents.Allocation     `json:"allocations"`
	Counterparty *counterparty.Counterparty `json:"counterparty"`
}

// Allocator runs bulk payments. It reuses the document lifecycle collaborators.
type Allocator struct {
	deps documents.Deps
}

// NewAllocator creates a bulk payment allocator.
func NewAllocator(deps documents.Deps) *Allocator {
	return &Allocator{deps: deps}
}

// CashIn applies a payment received from a customer.
func (a *Allocator) CashIn(ctx context.Context, cmd Command) (*Result, error) {
	return a.allocate(ctx, documents.SaleFlow, cmd)
}

// CashOut applies a payment made to a supplier.
func (a *Allocator) CashOut(ctx context.Context, cmd Command) (*Result, error) {
	return a.allocate(ctx, documents.PurchaseFlow, cmd)
}

// allocate spends the amount on outstanding documents ordered oldest first,
// settling each in full before moving on, and writes one transaction for the whole amount.
func (a *Allocator) allocate(ctx context.Context, flow documents.Flow, cmd Command) (*Result, error) {
	if _, err := a.deps.Shops.Verify(ctx, cmd.ShopID, cmd.UserID); err != nil {
		return nil, err
	}
	if !cmd.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be greater than zero").WithDetail("field", "amount")
	}
	if cmd.PaymentMethod != "" && !cmd.PaymentMethod.IsValid() {
		return nil, apperror.NewValidation("invalid payment method").WithDetail("field", "paymentMethod")
	}
	amount := types.Round(cmd.Amount)

	var result *Result
	err := a.deps.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cp, err := a.deps.Balances.Lock(ctx, cmd.ShopID, flow.CounterpartyKind, cmd.CounterpartyID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(cp.CurrentBalance) {
			return apperror.NewBusinessRule(apperror.CodePaymentExceedsDue,
				fmt.Sprintf("Amount cannot exceed total due of %s.", cp.CurrentBalance.StringFixed(types.MoneyScale))).
				WithDetail("amount", amount).
				WithDetail("currentBalance", cp.CurrentBalance)
		}

		docs, err := a.deps.Documents.ListOutstandingForUpdate(ctx, cmd.ShopID, flow.Kind, cp.ID)
		if err != nil {
			return fmt.Errorf("list outstanding %s: %w", flow.Kind, err)
		}

		remaining := amount
		allocations := make([]documents.Allocation, 0, len(docs))
		for _, doc := range docs {
			if !remaining.IsPositive() {
				break
			}
			applied := types.MinMoney(remaining, doc.AmountDue)
			if !applied.IsPositive() {
				continue
			}
			doc.ApplyPayment(applied)
			if err := a.deps.Documents.Update(ctx, doc); err != nil {
				return fmt.Errorf("update %s: %w", flow.Kind, err)
			}
			remaining = remaining.Sub(applied)
			allocations = append(allocations, documents.Allocation{
				DocumentID: doc.ID,
				Number:     doc.Number,
				Applied:    applied,
				AmountDue:  doc.AmountDue,
			})
		}
		if remaining.IsPositive() {
			logger.Warn(ctx, "bulk payment exceeds open documents; balance and documents disagree",
				"counterparty_id", cp.ID,
				"unallocated", remaining.String(),
			)
		}

		if err := a.deps.Balances.ApplyPayment(ctx, cp, amount); err != nil {
			return err
		}

		description := strings.TrimSpace(cmd.Notes)
		if description == "" {
			description = flow.BulkDescription(cp.Name)
		}
		entry := cashflow.Entry{
			ShopID:        cmd.ShopID,
			Type:          flow.PaymentType,
			Category:      flow.PaymentCategory,
			Amount:        amount,
			PaymentMethod: cmd.PaymentMethod,
			Date:          cmd.Date,
			Description:   description,
			CreatedBy:     cmd.UserID,
		}
		flow.LinkCounterparty(&entry, &cp.ID)
		txn, err := a.deps.Ledger.Record(ctx, entry)
		if err != nil {
			return err
		}

		if a.deps.Audit != nil {
			if err := a.deps.Audit.Record(ctx, audit.Event{
				ShopID:     cmd.ShopID,
				EntityType: string(cp.Kind),
				EntityID:   cp.ID,
				Action:     audit.ActionAllocate,
				UserID:     cmd.UserID,
				Changes: map[string]any{
					"amount":        amount,
					"transactionId": txn.ID,
					"allocations":   allocations,
				},
			}); err != nil {
				return fmt.Errorf("audit allocate: %w", err)
			}
		}

		result = &Result{Transaction: txn, Allocations: allocations, Counterparty: cp}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bulk payment allocated",
		"counterparty_id", cmd.CounterpartyID,
		"amount", amount.String(),
		"documents", len(result.Allocations),
	)
	return result, nil
}
