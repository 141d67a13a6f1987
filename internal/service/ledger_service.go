package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"pdvcore/internal/idgen"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementInput describes one stock movement to append to the ledger.
type MovementInput struct {
	ProductID     uuid.UUID
	QuantityDelta decimal.Decimal
	Type          string // model.MovementSale | MovementEntry | MovementAdjustment
	DocumentRef   string
	Description   string
}

// LedgerVerification is the result of replaying a product's kardex chain.
type LedgerVerification struct {
	ProductID    uuid.UUID
	Entries      int
	ChainOK      bool
	StockMatches bool
	// FirstBrokenEntry is set when ChainOK is false.
	FirstBrokenEntry *uuid.UUID
	LedgerBalance    decimal.Decimal
	ProductStock     decimal.Decimal
}

// LedgerService maintains the per-product stock ledger: every movement
// appends an immutable kardex entry and folds the product's running stock.
//
// The ledger itself does not reject movements that drive stock negative —
// adjustments and corrections may do so deliberately. Callers that must not
// oversell (the sale processor) run their own availability check while
// holding the product lock.
type LedgerService interface {
	RecordMovement(ctx context.Context, in MovementInput) (*model.KardexEntry, error)
	// RecordMovementTx appends a movement inside the caller's transaction.
	// The caller must already hold the product locks for every product it
	// touches.
	RecordMovementTx(tx *gorm.DB, in MovementInput) (*model.KardexEntry, error)
	History(ctx context.Context, productID uuid.UUID) iter.Seq2[model.KardexEntry, error]
	Verify(ctx context.Context, productID uuid.UUID) (*LedgerVerification, error)
}

type ledgerService struct {
	products repository.ProductRepository
	kardex   repository.KardexRepository
	locks    *ProductLocks
	ids      idgen.Generator
}

func NewLedgerService(
	products repository.ProductRepository,
	kardex repository.KardexRepository,
	locks *ProductLocks,
	ids idgen.Generator,
) LedgerService {
	return &ledgerService{products: products, kardex: kardex, locks: locks, ids: ids}
}

func (s *ledgerService) RecordMovement(ctx context.Context, in MovementInput) (*model.KardexEntry, error) {
	unlock := s.locks.Lock(in.ProductID)
	defer unlock()

	var entry *model.KardexEntry
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		entry, err = s.recordInTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) RecordMovementTx(tx *gorm.DB, in MovementInput) (*model.KardexEntry, error) {
	return s.recordInTx(tx, in)
}

func (s *ledgerService) recordInTx(tx *gorm.DB, in MovementInput) (*model.KardexEntry, error) {
	switch in.Type {
	case model.MovementSale, model.MovementEntry, model.MovementAdjustment:
	default:
		return nil, fmt.Errorf("unknown movement type %q", in.Type)
	}

	// Idempotency probe: a retried movement for the same document and
	// product returns the already-written entry instead of double-applying.
	if in.DocumentRef != "" {
		existing, err := s.kardex.FindByDocumentTx(tx, in.DocumentRef, in.ProductID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistence("kardex lookup", err)
		}
	}

	product, err := s.products.FindByIDTx(tx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("product lookup", err)
	}

	newBalance := product.Stock.Add(in.QuantityDelta)

	entry := &model.KardexEntry{
		ID:            s.ids.New(),
		ProductID:     product.ID,
		Type:          in.Type,
		QuantityDelta: in.QuantityDelta,
		BalanceAfter:  newBalance,
		DocumentRef:   in.DocumentRef,
		Description:   in.Description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.kardex.CreateTx(tx, entry); err != nil {
		return nil, persistence("kardex append", err)
	}
	if err := s.products.SetStockTx(tx, product.ID, newBalance); err != nil {
		return nil, persistence("stock update", err)
	}
	return entry, nil
}

const historyPageSize = 200

// History returns a lazy, restartable, timestamp-ascending walk over the
// product's kardex entries. Pages are fetched on demand; ranging again
// restarts from the beginning.
func (s *ledgerService) History(ctx context.Context, productID uuid.UUID) iter.Seq2[model.KardexEntry, error] {
	return func(yield func(model.KardexEntry, error) bool) {
		var (
			after   time.Time
			afterID uuid.UUID
		)
		for {
			page, err := s.kardex.ListByProduct(ctx, productID, after, afterID, historyPageSize)
			if err != nil {
				yield(model.KardexEntry{}, persistence("kardex history", err))
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if len(page) < historyPageSize {
				return
			}
			last := page[len(page)-1]
			after, afterID = last.CreatedAt, last.ID
		}
	}
}

// Verify replays the full chain and checks the two ledger invariants: the
// running sum BalanceAfter[n] == BalanceAfter[n-1] + QuantityDelta[n], and
// the product's cached stock equals the final BalanceAfter.
func (s *ledgerService) Verify(ctx context.Context, productID uuid.UUID) (*LedgerVerification, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("product lookup", err)
	}

	v := &LedgerVerification{ProductID: productID, ChainOK: true, ProductStock: product.Stock}
	running := decimal.Zero
	for e, err := range s.History(ctx, productID) {
		if err != nil {
			return nil, err
		}
		v.Entries++
		running = running.Add(e.QuantityDelta)
		if v.ChainOK && !e.BalanceAfter.Equal(running) {
			v.ChainOK = false
			id := e.ID
			v.FirstBrokenEntry = &id
			// Keep replaying from the recorded balance so later breaks
			// do not cascade from the first.
			running = e.BalanceAfter
		}
	}
	v.LedgerBalance = running
	v.StockMatches = v.Entries == 0 || product.Stock.Equal(v.LedgerBalance)
	return v, nil
}
