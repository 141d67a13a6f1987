package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/idgen"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterSummary is the itemized replay of a register's transaction log.
// Calculated = Opening + Supply + SalesCash - Bleed. Replaying is the
// canonical way to detect drift against the cached CurrentBalance.
type RegisterSummary struct {
	Opening    decimal.Decimal
	Supply     decimal.Decimal
	Bleed      decimal.Decimal
	SalesCash  decimal.Decimal
	Calculated decimal.Decimal
}

// RegisterService owns the single-register-per-operator state machine:
// NO_REGISTER -> OPEN -> CLOSED. CLOSED is terminal for the instance; a new
// Open call creates a fresh register.
type RegisterService interface {
	Open(ctx context.Context, operatorID uuid.UUID, openingBalance decimal.Decimal) (*model.CashRegister, error)
	AddTransaction(ctx context.Context, registerID uuid.UUID, txType string, amount decimal.Decimal, description string) (*model.CashTransaction, error)
	Summary(ctx context.Context, registerID uuid.UUID) (*RegisterSummary, error)
	Close(ctx context.Context, registerID uuid.UUID, countedAmount decimal.Decimal) (*model.CashRegister, error)

	// OpenByOperator returns the operator's OPEN register, or
	// ErrRegisterNotOpen. Used by the sale processor before any mutation.
	OpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error)
	Get(ctx context.Context, registerID uuid.UUID) (*model.CashRegister, error)
	Transactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error)
	List(ctx context.Context, operatorID *uuid.UUID, page, limit int) ([]model.CashRegister, int64, error)

	// RecordSaleCashTx appends the cash inflow of a finalized sale inside
	// the sale processor's transaction. RecordRefundCashTx is its inverse,
	// used when a cash sale is voided while the register is still open.
	RecordSaleCashTx(tx *gorm.DB, register *model.CashRegister, amount decimal.Decimal, saleID uuid.UUID, description string) error
	RecordRefundCashTx(tx *gorm.DB, register *model.CashRegister, amount decimal.Decimal, saleID uuid.UUID, description string) error
}

type registerService struct {
	repo repository.RegisterRepository
	ids  idgen.Generator
	sink audit.Sink
	// diffThreshold separates a warning-level close difference from a
	// critical one. Zero difference is informational.
	diffThreshold decimal.Decimal
}

func NewRegisterService(
	repo repository.RegisterRepository,
	ids idgen.Generator,
	sink audit.Sink,
	diffThreshold decimal.Decimal,
) RegisterService {
	return &registerService{repo: repo, ids: ids, sink: sink, diffThreshold: diffThreshold}
}

func (s *registerService) Open(ctx context.Context, operatorID uuid.UUID, openingBalance decimal.Decimal) (*model.CashRegister, error) {
	if openingBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if existing, err := s.repo.FindOpenByOperator(ctx, operatorID); err == nil && existing != nil {
		return nil, ErrRegisterAlreadyOpen
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("open register lookup", err)
	}

	now := time.Now().UTC()
	register := &model.CashRegister{
		ID:             s.ids.New(),
		Status:         model.RegisterOpen,
		OperatorID:     operatorID,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		OpenedAt:       now,
	}
	opening := &model.CashTransaction{
		ID:          s.ids.New(),
		RegisterID:  register.ID,
		Type:        model.CashOpening,
		Amount:      openingBalance,
		Description: "register opened",
		CreatedAt:   now,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateRegisterTx(tx, register); err != nil {
			return err
		}
		return s.repo.CreateTransactionTx(tx, opening)
	})
	if err != nil {
		return nil, persistence("open register", err)
	}

	s.sink.Log(ctx, "register.opened",
		fmt.Sprintf("register %s opened by %s with %s", register.ID, operatorID, openingBalance),
		audit.SeverityInfo)
	return register, nil
}

func (s *registerService) AddTransaction(ctx context.Context, registerID uuid.UUID, txType string, amount decimal.Decimal, description string) (*model.CashTransaction, error) {
	switch txType {
	case model.CashSupply, model.CashBleed, model.CashSale:
	default:
		return nil, fmt.Errorf("unsupported cash transaction type %q", txType)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	register, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, persistence("register lookup", err)
	}
	if register.Status != model.RegisterOpen {
		return nil, ErrRegisterNotOpen
	}

	// A drawer cannot bleed more cash than it holds.
	if txType == model.CashBleed && amount.GreaterThan(register.CurrentBalance) {
		return nil, ErrInvalidAmount
	}

	cashTx := &model.CashTransaction{
		ID:          s.ids.New(),
		RegisterID:  registerID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if txType == model.CashBleed {
		register.CurrentBalance = register.CurrentBalance.Sub(amount)
	} else {
		register.CurrentBalance = register.CurrentBalance.Add(amount)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTransactionTx(tx, cashTx); err != nil {
			return err
		}
		return s.repo.UpdateRegisterTx(tx, register)
	})
	if err != nil {
		return nil, persistence("append cash transaction", err)
	}
	return cashTx, nil
}

func (s *registerService) RecordSaleCashTx(tx *gorm.DB, register *model.CashRegister, amount decimal.Decimal, saleID uuid.UUID, description string) error {
	return s.recordRefCashTx(tx, register, model.CashSale, amount, saleID, description)
}

func (s *registerService) RecordRefundCashTx(tx *gorm.DB, register *model.CashRegister, amount decimal.Decimal, saleID uuid.UUID, description string) error {
	return s.recordRefCashTx(tx, register, model.CashBleed, amount, saleID, description)
}

func (s *registerService) recordRefCashTx(tx *gorm.DB, register *model.CashRegister, txType string, amount decimal.Decimal, saleID uuid.UUID, description string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	ref := saleID
	cashTx := &model.CashTransaction{
		ID:          s.ids.New(),
		RegisterID:  register.ID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		ReferenceID: &ref,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateTransactionTx(tx, cashTx); err != nil {
		return err
	}
	if txType == model.CashBleed {
		register.CurrentBalance = register.CurrentBalance.Sub(amount)
	} else {
		register.CurrentBalance = register.CurrentBalance.Add(amount)
	}
	return s.repo.UpdateRegisterTx(tx, register)
}

// Summary re-derives the register's balance from its transaction log
// instead of trusting the cached CurrentBalance.
func (s *registerService) Summary(ctx context.Context, registerID uuid.UUID) (*RegisterSummary, error) {
	if _, err := s.repo.FindByID(ctx, registerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, persistence("register lookup", err)
	}
	txs, err := s.repo.ListTransactions(ctx, registerID)
	if err != nil {
		return nil, persistence("transaction replay", err)
	}

	sum := &RegisterSummary{
		Opening:   decimal.Zero,
		Supply:    decimal.Zero,
		Bleed:     decimal.Zero,
		SalesCash: decimal.Zero,
	}
	for _, t := range txs {
		switch t.Type {
		case model.CashOpening:
			sum.Opening = sum.Opening.Add(t.Amount)
		case model.CashSupply:
			sum.Supply = sum.Supply.Add(t.Amount)
		case model.CashBleed:
			sum.Bleed = sum.Bleed.Add(t.Amount)
		case model.CashSale:
			sum.SalesCash = sum.SalesCash.Add(t.Amount)
		case model.CashClosing:
			// terminal snapshot, not additive
		}
	}
	sum.Calculated = sum.Opening.Add(sum.Supply).Add(sum.SalesCash).Sub(sum.Bleed)
	return sum, nil
}

func (s *registerService) Close(ctx context.Context, registerID uuid.UUID, countedAmount decimal.Decimal) (*model.CashRegister, error) {
	if countedAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	register, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, persistence("register lookup", err)
	}
	if register.Status != model.RegisterOpen {
		return nil, ErrRegisterNotOpen
	}

	summary, err := s.Summary(ctx, registerID)
	if err != nil {
		return nil, err
	}

	// The replayed value is authoritative at close time. A drifted cache
	// means an interrupted update somewhere — worth flagging, never worth
	// trusting.
	if !register.CurrentBalance.Equal(summary.Calculated) {
		s.sink.Log(ctx, "register.balance_drift",
			fmt.Sprintf("register %s cached balance %s != replayed %s",
				registerID, register.CurrentBalance, summary.Calculated),
			audit.SeverityWarning)
	}

	difference := countedAmount.Sub(summary.Calculated)
	severity := classifyDifference(difference, s.diffThreshold)

	now := time.Now().UTC()
	counted := countedAmount
	register.Status = model.RegisterClosed
	register.FinalCount = &counted
	register.Difference = &difference
	register.DifferenceSeverity = &severity
	register.CurrentBalance = summary.Calculated
	register.ClosedAt = &now

	closing := &model.CashTransaction{
		ID:          s.ids.New(),
		RegisterID:  registerID,
		Type:        model.CashClosing,
		Amount:      summary.Calculated,
		Description: fmt.Sprintf("register closed, counted %s, difference %s", countedAmount, difference),
		CreatedAt:   now,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateRegisterTx(tx, register); err != nil {
			return err
		}
		return s.repo.CreateTransactionTx(tx, closing)
	})
	if err != nil {
		return nil, persistence("close register", err)
	}

	s.sink.Log(ctx, "register.closed",
		fmt.Sprintf("register %s closed: calculated %s, counted %s, difference %s",
			registerID, summary.Calculated, countedAmount, difference),
		auditSeverity(severity))
	return register, nil
}

func (s *registerService) OpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	register, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotOpen
		}
		return nil, persistence("open register lookup", err)
	}
	return register, nil
}

func (s *registerService) Get(ctx context.Context, registerID uuid.UUID) (*model.CashRegister, error) {
	register, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, persistence("register lookup", err)
	}
	return register, nil
}

func (s *registerService) Transactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error) {
	txs, err := s.repo.ListTransactions(ctx, registerID)
	if err != nil {
		return nil, persistence("transaction list", err)
	}
	return txs, nil
}

func (s *registerService) List(ctx context.Context, operatorID *uuid.UUID, page, limit int) ([]model.CashRegister, int64, error) {
	regs, total, err := s.repo.ListRegisters(ctx, operatorID, page, limit)
	if err != nil {
		return nil, 0, persistence("register list", err)
	}
	return regs, total, nil
}

// classifyDifference maps the counted-vs-calculated gap to a severity:
// zero is info, within the threshold is warning, beyond it is critical.
func classifyDifference(difference, threshold decimal.Decimal) string {
	abs := difference.Abs()
	switch {
	case abs.IsZero():
		return model.DifferenceInfo
	case abs.LessThanOrEqual(threshold):
		return model.DifferenceWarning
	default:
		return model.DifferenceCritical
	}
}

func auditSeverity(differenceSeverity string) audit.Severity {
	switch differenceSeverity {
	case model.DifferenceCritical:
		return audit.SeverityCritical
	case model.DifferenceWarning:
		return audit.SeverityWarning
	default:
		return audit.SeverityInfo
	}
}
