package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/registers/balance"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/domain/shop"
	"shopledger/pkg/logger"
)

// ShopVerifier checks that a user owns a shop.
type ShopVerifier interface {
	Verify(ctx context.Context, shopID, userID id.ID) (*shop.Shop, error)
}

// Deps are the collaborators shared by the sale and purchase services.
type Deps struct {
	Shops     ShopVerifier
	Documents Repository
	Stock     *stock.Service
	Balances  *balance.Service
	Ledger    *cashflow.Writer
	Numbers   Numerator
	Audit     audit.Recorder
	TxManager tx.Manager
}

// Service runs the lifecycle of one document kind: create, record payment and cancel.
// Every mutation is one unit of work; locks are taken in the order
// counterparty, document, products.
type Service struct {
	flow Flow
	Deps
}

// NewService creates the lifecycle service for a flow.
func NewService(flow Flow, deps Deps) *Service {
	return &Service{flow: flow, Deps: deps}
}

// Flow returns the flow the service runs.
func (s *Service) Flow() Flow {
	return s.flow
}

// LineInput is a requested document line. A nil UnitPrice takes the
// product's selling price (sale) or current purchase price (purchase).
type LineInput struct {
	ProductID id.ID
	Quantity  int64
	UnitPrice *types.Money
}

// CreateCommand creates a sale or purchase. A nil CounterpartyID makes it a CASH document.
type CreateCommand struct {
	ShopID         id.ID
	UserID         id.ID
	CounterpartyID *id.ID
	Lines          []LineInput
	Discount       types.Money
	Tax            types.Money
	AmountPaid     types.Money
	PaymentMethod  cashflow.PaymentMethod
	Notes          string
	Date           time.Time
	// Number is the supplier's own bill number; ignored for sales.
	Number string
}

// PaymentCommand records an additional payment against a document.
type PaymentCommand struct {
	ShopID        id.ID
	UserID        id.ID
	DocumentID    id.ID
	Amount        types.Money
	PaymentMethod cashflow.PaymentMethod
	Date          time.Time
	Notes         string
}

// CancelCommand cancels a document.
type CancelCommand struct {
	ShopID     id.ID
	UserID     id.ID
	DocumentID id.ID
}

// Create books a new document with its stock, balance and cash effects.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if _, err := s.Shops.Verify(ctx, cmd.ShopID, cmd.UserID); err != nil {
		return nil, err
	}
	if len(cmd.Lines) == 0 {
		return nil, apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	if cmd.PaymentMethod != "" && !cmd.PaymentMethod.IsValid() {
		return nil, apperror.NewValidation("invalid payment method").WithDetail("field", "paymentMethod")
	}

	var created *Document
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc := NewDocument(cmd.ShopID, s.flow.Kind)
		doc.CreatedBy = cmd.UserID
		doc.Notes = strings.TrimSpace(cmd.Notes)
		doc.PaymentMethod = string(cmd.PaymentMethod.OrDefault())
		doc.Discount = types.Round(cmd.Discount)
		doc.Tax = types.Round(cmd.Tax)
		doc.AmountPaid = types.Round(cmd.AmountPaid)
		if !cmd.Date.IsZero() {
			doc.Date = cmd.Date.UTC()
		}

		var cp *counterparty.Counterparty
		if cmd.CounterpartyID != nil {
			var err error
			cp, err = s.Balances.Lock(ctx, cmd.ShopID, s.flow.CounterpartyKind, *cmd.CounterpartyID)
			if err != nil {
				return err
			}
			doc.Type = s.flow.CounterpartyType
			doc.CounterpartyID = &cp.ID
			doc.CounterpartyName = cp.Name
		} else {
			doc.Type = TypeCash
		}

		productIDs := make([]id.ID, len(cmd.Lines))
		for i, l := range cmd.Lines {
			productIDs[i] = l.ProductID
		}
		locked, err := s.Stock.Lock(ctx, cmd.ShopID, productIDs)
		if err != nil {
			return err
		}

		doc.Lines = s.buildLines(cmd.Lines, locked)
		doc.recompute()

		if doc.IsCash() && doc.AmountDue.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeCashNotSettled,
				fmt.Sprintf("A cash %s must be fully paid. Amount due: %s.",
					strings.ToLower(s.flow.Title), doc.AmountDue.StringFixed(types.MoneyScale))).
				WithDetail("amountDue", doc.AmountDue)
		}

		if err := s.assignNumber(ctx, doc, cmd.Number); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		if err := s.Stock.Apply(ctx, locked, doc.ID, s.flow.CreateOp, stockLines(doc.Lines)); err != nil {
			return err
		}
		if err := s.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create %s: %w", s.flow.Kind, err)
		}
		if cp != nil {
			if err := s.Balances.ApplyDocument(ctx, cp, doc.AmountDue, doc.AmountPaid); err != nil {
				return err
			}
		}
		if doc.AmountPaid.IsPositive() {
			if _, err := s.record(ctx, doc, s.flow.PaymentType, s.flow.PaymentCategory, doc.AmountPaid,
				cashflow.PaymentMethod(doc.PaymentMethod), doc.Date, cmd.UserID,
				fmt.Sprintf("Payment for %s %s", strings.ToLower(s.flow.Title), doc.Number)); err != nil {
				return err
			}
		}

		if err := s.audit(ctx, doc, audit.ActionCreate, cmd.UserID, map[string]any{
			"grandTotal": doc.GrandTotal,
			"amountPaid": doc.AmountPaid,
			"amountDue":  doc.AmountDue,
			"items":      doc.Lines,
		}); err != nil {
			return err
		}

		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, strings.ToLower(s.flow.Title)+" created",
		"document_id", created.ID,
		"number", created.Number,
		"grand_total", created.GrandTotal.String(),
		"payment_status", created.PaymentStatus,
	)
	return created, nil
}

// RecordPayment adds a payment to a counterparty document.
// The amount must be positive and not above the amount due.
func (s *Service) RecordPayment(ctx context.Context, cmd PaymentCommand) (*Document, error) {
	if _, err := s.Shops.Verify(ctx, cmd.ShopID, cmd.UserID); err != nil {
		return nil, err
	}
	if !cmd.Amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be greater than zero").WithDetail("field", "amount")
	}
	if cmd.PaymentMethod != "" && !cmd.PaymentMethod.IsValid() {
		return nil, apperror.NewValidation("invalid payment method").WithDetail("field", "paymentMethod")
	}
	amount := types.Round(cmd.Amount)

	var updated *Document
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		peek, err := s.get(ctx, cmd.ShopID, cmd.DocumentID)
		if err != nil {
			return err
		}
		if err := s.checkPayable(peek); err != nil {
			return err
		}

		cp, err := s.Balances.Lock(ctx, cmd.ShopID, s.flow.CounterpartyKind, *peek.CounterpartyID)
		if err != nil {
			return err
		}
		doc, err := s.getForUpdate(ctx, cmd.ShopID, cmd.DocumentID)
		if err != nil {
			return err
		}
		if err := s.checkPayable(doc); err != nil {
			return err
		}
		if amount.GreaterThan(doc.AmountDue) {
			return apperror.NewBusinessRule(apperror.CodePaymentExceedsDue,
				fmt.Sprintf("Payment of %s exceeds the amount due of %s.",
					amount.StringFixed(types.MoneyScale), doc.AmountDue.StringFixed(types.MoneyScale))).
				WithDetail("amount", amount).
				WithDetail("amountDue", doc.AmountDue)
		}

		doc.ApplyPayment(amount)
		if err := s.Documents.Update(ctx, doc); err != nil {
			return fmt.Errorf("update %s: %w", s.flow.Kind, err)
		}
		if err := s.Balances.ApplyPayment(ctx, cp, amount); err != nil {
			return err
		}

		description := strings.TrimSpace(cmd.Notes)
		if description == "" {
			description = fmt.Sprintf("Payment for %s %s", strings.ToLower(s.flow.Title), doc.Number)
		}
		if _, err := s.record(ctx, doc, s.flow.PaymentType, s.flow.PaymentCategory, amount,
			cmd.PaymentMethod, cmd.Date, cmd.UserID, description); err != nil {
			return err
		}

		if err := s.audit(ctx, doc, audit.ActionPay, cmd.UserID, map[string]any{
			"amount":        amount,
			"amountPaid":    doc.AmountPaid,
			"amountDue":     doc.AmountDue,
			"paymentStatus": doc.PaymentStatus,
		}); err != nil {
			return err
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, strings.ToLower(s.flow.Title)+" payment recorded",
		"document_id", updated.ID,
		"amount", amount.String(),
		"payment_status", updated.PaymentStatus,
	)
	return updated, nil
}

// Cancel reverses every effect of a document and marks it CANCELLED.
// A cancelled document cannot be paid or cancelled again.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Document, error) {
	if _, err := s.Shops.Verify(ctx, cmd.ShopID, cmd.UserID); err != nil {
		return nil, err
	}

	var cancelled *Document
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		peek, err := s.get(ctx, cmd.ShopID, cmd.DocumentID)
		if err != nil {
			return err
		}
		if peek.IsCancelled() {
			return s.alreadyCancelled()
		}

		var cp *counterparty.Counterparty
		if peek.CounterpartyID != nil {
			cp, err = s.Balances.Lock(ctx, cmd.ShopID, s.flow.CounterpartyKind, *peek.CounterpartyID)
			if err != nil {
				return err
			}
		}
		doc, err := s.getForUpdate(ctx, cmd.ShopID, cmd.DocumentID)
		if err != nil {
			return err
		}
		if doc.IsCancelled() {
			return s.alreadyCancelled()
		}

		productIDs := make([]id.ID, len(doc.Lines))
		for i, l := range doc.Lines {
			productIDs[i] = l.ProductID
		}
		locked, err := s.Stock.Lock(ctx, cmd.ShopID, productIDs)
		if err != nil {
			return err
		}
		if err := s.Stock.Apply(ctx, locked, doc.ID, s.flow.CancelOp, stockLines(doc.Lines)); err != nil {
			return err
		}

		if cp != nil {
			if err := s.Balances.ReverseDocument(ctx, cp, doc.AmountDue, doc.AmountPaid); err != nil {
				return err
			}
		}
		if doc.AmountPaid.IsPositive() {
			if _, err := s.record(ctx, doc, s.flow.PaymentType.Opposite(), s.flow.ReturnCategory, doc.AmountPaid,
				cashflow.PaymentMethod(doc.PaymentMethod), time.Now().UTC(), cmd.UserID,
				fmt.Sprintf("Refund for cancelled %s %s", strings.ToLower(s.flow.Title), doc.Number)); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		doc.Status = StatusCancelled
		doc.CancelledAt = &now
		doc.recompute()
		if err := s.Documents.Update(ctx, doc); err != nil {
			return fmt.Errorf("update %s: %w", s.flow.Kind, err)
		}

		if err := s.audit(ctx, doc, audit.ActionCancel, cmd.UserID, map[string]any{
			"amountPaid": doc.AmountPaid,
			"amountDue":  doc.AmountDue,
		}); err != nil {
			return err
		}

		cancelled = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, strings.ToLower(s.flow.Title)+" cancelled",
		"document_id", cancelled.ID,
		"number", cancelled.Number,
	)
	return cancelled, nil
}

// Get returns a document of the shop with its lines.
func (s *Service) Get(ctx context.Context, shopID, userID, docID id.ID) (*Document, error) {
	if _, err := s.Shops.Verify(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.get(ctx, shopID, docID)
}

// List returns a page of document headers, newest first.
func (s *Service) List(ctx context.Context, userID id.ID, filter ListFilter) ([]*Document, int64, error) {
	if _, err := s.Shops.Verify(ctx, filter.ShopID, userID); err != nil {
		return nil, 0, err
	}
	filter.Kind = s.flow.Kind
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.Documents.List(ctx, filter)
}

// ApplyPayment adds amount to amountPaid and recomputes the derived fields.
func (d *Document) ApplyPayment(amount types.Money) {
	d.AmountPaid = d.AmountPaid.Add(amount)
	d.recompute()
}

func (s *Service) buildLines(inputs []LineInput, locked stock.Locked) []Line {
	lines := make([]Line, len(inputs))
	for i, in := range inputs {
		p := locked[in.ProductID]
		line := Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitCost:    types.Zero(),
		}
		switch {
		case in.UnitPrice != nil:
			line.UnitPrice = types.Round(*in.UnitPrice)
		case s.flow.Kind == KindSale:
			line.UnitPrice = p.SellingPrice
		default:
			line.UnitPrice = p.PurchasePrice
		}
		if s.flow.Kind == KindSale {
			line.UnitCost = p.PurchasePrice
		}
		lines[i] = line
	}
	return lines
}

func (s *Service) assignNumber(ctx context.Context, doc *Document, requested string) error {
	requested = strings.TrimSpace(requested)
	if requested != "" && s.flow.Kind == KindPurchase {
		doc.Number = requested
		return nil
	}
	number, err := s.Numbers.Next(ctx, doc.ShopID, s.flow.NumberPrefix, doc.Date)
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

func (s *Service) checkPayable(doc *Document) error {
	name := strings.ToLower(s.flow.Title)
	switch {
	case doc.IsCancelled():
		return apperror.NewBusinessRule(apperror.CodeDocumentCancelled,
			fmt.Sprintf("Cannot add payment to a cancelled %s.", name))
	case doc.IsCash() || doc.CounterpartyID == nil:
		return apperror.NewBusinessRule(apperror.CodeCashDocument,
			fmt.Sprintf("A cash %s is settled at creation and takes no further payments.", name))
	case doc.PaymentStatus == PaymentPaid:
		return apperror.NewBusinessRule(apperror.CodeDocumentPaid,
			fmt.Sprintf("This %s is already fully paid.", name))
	}
	return nil
}

func (s *Service) alreadyCancelled() error {
	return apperror.NewBusinessRule(apperror.CodeDocumentCancelled,
		fmt.Sprintf("This %s is already cancelled.", strings.ToLower(s.flow.Title)))
}

func (s *Service) get(ctx context.Context, shopID, docID id.ID) (*Document, error) {
	doc, err := s.Documents.GetByID(ctx, shopID, s.flow.Kind, docID)
	if err != nil {
		return nil, s.normalizeGetErr(err, docID)
	}
	return doc, nil
}

func (s *Service) getForUpdate(ctx context.Context, shopID, docID id.ID) (*Document, error) {
	doc, err := s.Documents.GetForUpdate(ctx, shopID, s.flow.Kind, docID)
	if err != nil {
		return nil, s.normalizeGetErr(err, docID)
	}
	return doc, nil
}

func (s *Service) normalizeGetErr(err error, docID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(string(s.flow.Kind), docID.String())
	}
	return fmt.Errorf("get %s: %w", s.flow.Kind, err)
}

func (s *Service) record(
	ctx context.Context,
	doc *Document,
	typ cashflow.Type,
	category cashflow.Category,
	amount types.Money,
	method cashflow.PaymentMethod,
	date time.Time,
	userID id.ID,
	description string,
) (*cashflow.Transaction, error) {
	entry := cashflow.Entry{
		ShopID:        doc.ShopID,
		Type:          typ,
		Category:      category,
		Amount:        amount,
		PaymentMethod: method,
		Date:          date,
		Description:   description,
		CreatedBy:     userID,
	}
	s.flow.linkDocument(&entry, doc)
	return s.Ledger.Record(ctx, entry)
}

func (s *Service) audit(ctx context.Context, doc *Document, action audit.Action, userID id.ID, changes any) error {
	if s.Audit == nil {
		return nil
	}
	err := s.Audit.Record(ctx, audit.Event{
		ShopID:     doc.ShopID,
		EntityType: string(s.flow.Kind),
		EntityID:   doc.ID,
		Action:     action,
		UserID:     userID,
		Changes:    changes,
	})
	if err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}

func stockLines(lines []Line) []stock.Line {
	out := make([]stock.Line, len(lines))
	for i, l := range lines {
		out[i] = stock.Line{ProductID: l.ProductID, Quantity: l.Quantity, UnitCost: l.UnitPrice}
	}
	return out
}
