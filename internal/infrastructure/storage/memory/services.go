package memory

import (
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/registers/balance"
	"shopledger/internal/domain/registers/stock"
)

// LedgerDeps wires the document lifecycle collaborators over the store.
// The store is its own transaction manager and numerator.
func (s *Store) LedgerDeps(shops documents.ShopVerifier) documents.Deps {
	return documents.Deps{
		Shops:     shops,
		Documents: s.Documents(),
		Stock:     stock.NewService(s.Products(), s.Movements()),
		Balances:  balance.NewService(s.Counterparties()),
		Ledger:    cashflow.NewWriter(s.Transactions()),
		Numbers:   s,
		Audit:     s.Audit(),
		TxManager: s,
	}
}
