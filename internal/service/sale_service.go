package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/dto"
	"pdvcore/internal/idgen"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService is the top-level orchestrator for finalizing a sale: stock
// decrements, the sale snapshot, the financial record and the cash inflow
// are one logical unit. A write-ahead SaleIntent brackets the cascade so an
// interrupted process can be reconciled on the next startup.
type SaleService interface {
	Finalize(ctx context.Context, operatorID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error)
	Void(ctx context.Context, saleID uuid.UUID, reason string) error
	Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter repository.SaleFilter) (*dto.SaleListResponse, error)
	// RecoverPending resolves intents left PENDING by a crash: committed
	// cascades are acknowledged, partial ones compensated. Returns the
	// number of intents resolved. Called once at startup.
	RecoverPending(ctx context.Context) (int, error)
}

type saleService struct {
	sales         repository.SaleRepository
	intents       repository.IntentRepository
	financial     repository.FinancialRepository
	kardex        repository.KardexRepository
	products      repository.ProductRepository
	ledger        LedgerService
	registers     RegisterService
	locks         *ProductLocks
	ids           idgen.Generator
	sink          audit.Sink
	recoveryGrace time.Duration
}

func NewSaleService(
	sales repository.SaleRepository,
	intents repository.IntentRepository,
	financial repository.FinancialRepository,
	kardex repository.KardexRepository,
	products repository.ProductRepository,
	ledger LedgerService,
	registers RegisterService,
	locks *ProductLocks,
	ids idgen.Generator,
	sink audit.Sink,
	recoveryGrace time.Duration,
) SaleService {
	return &saleService{
		sales:         sales,
		intents:       intents,
		financial:     financial,
		kardex:        kardex,
		products:      products,
		ledger:        ledger,
		registers:     registers,
		locks:         locks,
		ids:           ids,
		sink:          sink,
		recoveryGrace: recoveryGrace,
	}
}

// resolvedItem is a line item with the product price frozen at sale time.
type resolvedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// intentPayload is the JSON body persisted in the intent log for manual
// reconciliation when automatic recovery cannot finish.
type intentPayload struct {
	Items         []resolvedItem  `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
}

func (s *saleService) Finalize(ctx context.Context, operatorID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error) {
	// 1. The operator must have an open register.
	register, err := s.registers.OpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	// Lines repeating a product are merged up front: the availability check
	// and the single kardex decrement per product must see the combined
	// quantity, not each line against the same stock snapshot.
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	quantities := make(map[uuid.UUID]decimal.Decimal, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id %q: %w", item.ProductID, err)
		}
		if !item.Quantity.IsPositive() {
			return nil, ErrInvalidAmount
		}
		if _, seen := quantities[pid]; !seen {
			productIDs = append(productIDs, pid)
		}
		quantities[pid] = quantities[pid].Add(item.Quantity)
	}

	// Hold the product locks for the whole check-then-decrement window so
	// two sales of the same product cannot race past the stock check.
	unlock := s.locks.Lock(productIDs...)
	defer unlock()

	// 2. Resolve products, freeze prices, check availability. All-or-
	// nothing: any short line rejects the entire sale before any mutation.
	resolved := make([]resolvedItem, 0, len(productIDs))
	total := decimal.Zero
	for _, pid := range productIDs {
		qty := quantities[pid]
		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, persistence("product lookup", err)
		}
		if !product.Active {
			return nil, ErrProductInactive
		}
		if product.Stock.LessThan(qty) {
			return nil, &InsufficientStockError{
				ProductID:   product.ID.String(),
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Stock,
			}
		}
		lineTotal := product.Price.Mul(qty).Round(2)
		total = total.Add(lineTotal)
		resolved = append(resolved, resolvedItem{
			ProductID: pid,
			Name:      product.Name,
			Quantity:  qty,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
	}

	// 3. Cash handling: payment must cover the total; change is returned.
	var amountPaid, change *decimal.Decimal
	if req.PaymentMethod == model.PaymentCash {
		if req.AmountPaid == nil {
			return nil, ErrInsufficientPayment
		}
		if req.AmountPaid.LessThan(total) {
			return nil, ErrInsufficientPayment
		}
		paid := *req.AmountPaid
		c := paid.Sub(total)
		amountPaid, change = &paid, &c
	}

	// 4. Write-ahead intent. Durable BEFORE any stock/cash/sale mutation;
	// its ID is the sale ID all cascade artifacts reference.
	saleID := s.ids.New()
	payload, err := json.Marshal(intentPayload{
		Items:         resolved,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("encode intent payload: %w", err)
	}
	intent := &model.SaleIntent{
		ID:         saleID,
		OperatorID: operatorID,
		RegisterID: register.ID,
		Payload:    payload,
		Status:     model.IntentPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, persistence("write sale intent", err)
	}

	// 5. The cascade proper, one transaction: kardex decrements, sale
	// snapshot, financial record, cash inflow.
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		if cid, err := uuid.Parse(*req.CustomerID); err == nil {
			customerID = &cid
		}
	}

	sale := &model.Sale{
		ID:            saleID,
		RegisterID:    register.ID,
		OperatorID:    operatorID,
		CustomerID:    customerID,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    amountPaid,
		Change:        change,
		Status:        model.SaleCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	for _, r := range resolved {
		sale.Items = append(sale.Items, model.SaleItem{
			ID:        s.ids.New(),
			SaleID:    saleID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			LineTotal: r.LineTotal,
		})
	}

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		for _, r := range resolved {
			_, err := s.ledger.RecordMovementTx(tx, MovementInput{
				ProductID:     r.ProductID,
				QuantityDelta: r.Quantity.Neg(),
				Type:          model.MovementSale,
				DocumentRef:   saleID.String(),
				Description:   fmt.Sprintf("sale of %s x %s", r.Quantity, r.Name),
			})
			if err != nil {
				return err
			}
		}

		if err := s.sales.CreateTx(tx, sale); err != nil {
			return persistence("persist sale", err)
		}

		record := &model.FinancialRecord{
			ID:          s.ids.New(),
			Type:        model.FinancialIncome,
			Amount:      total,
			Category:    "sales",
			Date:        sale.CreatedAt,
			Status:      model.FinancialPaid,
			ReferenceID: &saleID,
		}
		if err := s.financial.CreateTx(tx, record); err != nil {
			return persistence("persist financial record", err)
		}

		if req.PaymentMethod == model.PaymentCash {
			if err := s.registers.RecordSaleCashTx(tx, register, total, saleID,
				fmt.Sprintf("sale %s", saleID)); err != nil {
				return persistence("record cash inflow", err)
			}
		}
		return nil
	})
	if txErr != nil {
		// The transaction rolled back atomically; close the intent so the
		// recovery pass does not re-examine it. If even this fails the
		// intent stays PENDING and startup recovery settles it.
		if err := s.intents.SetStatus(ctx, saleID, model.IntentRolledBack); err != nil {
			log.Error().Err(err).Str("sale_id", saleID.String()).
				Msg("failed to mark sale intent rolled back")
		}
		return nil, txErr
	}

	if err := s.intents.SetStatus(ctx, saleID, model.IntentCommitted); err != nil {
		// The sale is durable; recovery will mark the intent committed.
		log.Warn().Err(err).Str("sale_id", saleID.String()).
			Msg("sale committed but intent not acknowledged")
	}

	s.sink.Log(ctx, "sale.finalized",
		fmt.Sprintf("sale %s: %d items, total %s, %s, register %s",
			saleID, len(resolved), total, req.PaymentMethod, register.ID),
		audit.SeverityInfo)

	return saleToResponse(sale, resolved), nil
}

// Void reverses a completed sale with compensating records: ADJUSTMENT
// movements restore the stock, an EXPENSE financial record offsets the
// income, and a BLEED transaction removes the cash if the register is still
// open. The sale row itself is never edited beyond its status flag.
func (s *saleService) Void(ctx context.Context, saleID uuid.UUID, reason string) error {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		return persistence("sale lookup", err)
	}
	if sale.Status == model.SaleVoided {
		return ErrSaleAlreadyVoided
	}

	productIDs := make([]uuid.UUID, 0, len(sale.Items))
	for _, item := range sale.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	unlock := s.locks.Lock(productIDs...)
	defer unlock()

	register, err := s.registers.Get(ctx, sale.RegisterID)
	if err != nil {
		return err
	}

	docRef := "void:" + saleID.String()
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			_, err := s.ledger.RecordMovementTx(tx, MovementInput{
				ProductID:     item.ProductID,
				QuantityDelta: item.Quantity,
				Type:          model.MovementAdjustment,
				DocumentRef:   docRef,
				Description:   fmt.Sprintf("void of sale %s: %s", saleID, reason),
			})
			if err != nil {
				return err
			}
		}

		record := &model.FinancialRecord{
			ID:          s.ids.New(),
			Type:        model.FinancialExpense,
			Amount:      sale.Total,
			Category:    "sale_reversal",
			Date:        time.Now().UTC(),
			Status:      model.FinancialPaid,
			ReferenceID: &saleID,
		}
		if err := s.financial.CreateTx(tx, record); err != nil {
			return persistence("persist reversal record", err)
		}

		if sale.PaymentMethod == model.PaymentCash && register.Status == model.RegisterOpen {
			if err := s.registers.RecordRefundCashTx(tx, register, sale.Total, saleID,
				fmt.Sprintf("void of sale %s: %s", saleID, reason)); err != nil {
				return persistence("record cash reversal", err)
			}
		}

		return s.sales.UpdateStatusTx(tx, saleID, model.SaleVoided)
	})
	if txErr != nil {
		return txErr
	}

	severity := audit.SeverityInfo
	if sale.PaymentMethod == model.PaymentCash && register.Status != model.RegisterOpen {
		// Cash left the drawer in a closed shift; the money side needs a
		// manual financial entry.
		severity = audit.SeverityWarning
	}
	s.sink.Log(ctx, "sale.voided",
		fmt.Sprintf("sale %s voided: %s", saleID, reason), severity)
	return nil
}

func (s *saleService) Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, persistence("sale lookup", err)
	}
	return saleToResponse(sale, nil), nil
}

func (s *saleService) List(ctx context.Context, filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, persistence("sale list", err)
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i], nil))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *saleService) RecoverPending(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.recoveryGrace)
	pending, err := s.intents.ListPending(ctx, cutoff)
	if err != nil {
		return 0, persistence("list pending intents", err)
	}

	resolved := 0
	for _, intent := range pending {
		if err := s.recoverIntent(ctx, intent); err != nil {
			// Leave PENDING for the next startup or manual reconciliation.
			s.sink.Log(ctx, "sale.recovery_failed",
				fmt.Sprintf("intent %s could not be reconciled: %v", intent.ID, err),
				audit.SeverityCritical)
			continue
		}
		resolved++
	}
	return resolved, nil
}

func (s *saleService) recoverIntent(ctx context.Context, intent model.SaleIntent) error {
	exists, err := s.sales.Exists(ctx, intent.ID)
	if err != nil {
		return persistence("sale existence check", err)
	}
	if exists {
		// The cascade committed; only the acknowledgment was lost.
		if err := s.intents.SetStatus(ctx, intent.ID, model.IntentCommitted); err != nil {
			return persistence("acknowledge intent", err)
		}
		s.sink.Log(ctx, "sale.recovered",
			fmt.Sprintf("intent %s confirmed committed", intent.ID),
			audit.SeverityInfo)
		return nil
	}

	// The sale never committed. Compensate whatever stock decrements made
	// it to disk. The rollback movements carry their own document ref, so
	// a recovery retried after a second crash stays idempotent.
	entries, err := s.kardex.ListByDocument(ctx, intent.ID.String())
	if err != nil {
		return persistence("list cascade entries", err)
	}
	for _, e := range entries {
		_, err := s.ledger.RecordMovement(ctx, MovementInput{
			ProductID:     e.ProductID,
			QuantityDelta: e.QuantityDelta.Neg(),
			Type:          model.MovementAdjustment,
			DocumentRef:   "rollback:" + intent.ID.String(),
			Description:   fmt.Sprintf("rollback of interrupted sale %s", intent.ID),
		})
		if err != nil {
			return err
		}
	}
	if err := s.intents.SetStatus(ctx, intent.ID, model.IntentRolledBack); err != nil {
		return persistence("mark intent rolled back", err)
	}
	s.sink.Log(ctx, "sale.rolled_back",
		fmt.Sprintf("intent %s compensated (%d stock movements reversed)", intent.ID, len(entries)),
		audit.SeverityWarning)
	return nil
}

func saleToResponse(sale *model.Sale, resolved []resolvedItem) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for i, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		} else if resolved != nil && i < len(resolved) {
			name = resolved[i].Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	var customerID *string
	if sale.CustomerID != nil {
		cid := sale.CustomerID.String()
		customerID = &cid
	}
	return &dto.SaleResponse{
		ID:            sale.ID.String(),
		RegisterID:    sale.RegisterID.String(),
		OperatorID:    sale.OperatorID.String(),
		CustomerID:    customerID,
		Items:         items,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		AmountPaid:    sale.AmountPaid,
		Change:        sale.Change,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt.UTC().Format(time.RFC3339),
	}
}
