package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes. DB() returns nil, which makes runTx invoke
// the callback directly — transactional semantics are covered by the
// integration suite, the unit tests exercise the business rules.

// ── Products ─────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if filter.Active == "true" && !p.Active {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) ListBelowMinStock(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock.LessThanOrEqual(p.MinStock) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── Kardex ───────────────────────────────────────────────────────────────────

type fakeKardexRepo struct {
	mu      sync.Mutex
	entries []model.KardexEntry
}

func newFakeKardexRepo() *fakeKardexRepo { return &fakeKardexRepo{} }

func (r *fakeKardexRepo) CreateTx(_ *gorm.DB, e *model.KardexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeKardexRepo) FindByDocumentTx(_ *gorm.DB, documentRef string, productID uuid.UUID) (*model.KardexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].DocumentRef == documentRef && r.entries[i].ProductID == productID {
			cp := r.entries[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeKardexRepo) ListByProduct(_ context.Context, productID uuid.UUID, after time.Time, afterID uuid.UUID, limit int) ([]model.KardexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.KardexEntry
	for _, e := range r.entries {
		if e.ProductID != productID {
			continue
		}
		if e.CreatedAt.After(after) || (e.CreatedAt.Equal(after) && e.ID.String() > afterID.String()) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeKardexRepo) ListByDocument(_ context.Context, documentRef string) ([]model.KardexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.KardexEntry
	for _, e := range r.entries {
		if e.DocumentRef == documentRef {
			out = append(out, e)
		}
	}
	return out, nil
}

// tamper overwrites the BalanceAfter of entry i, simulating corruption.
func (r *fakeKardexRepo) tamper(i int, balance decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[i].BalanceAfter = balance
}

var _ repository.KardexRepository = (*fakeKardexRepo)(nil)

// ── Registers ────────────────────────────────────────────────────────────────

type fakeRegisterRepo struct {
	mu        sync.Mutex
	registers map[uuid.UUID]*model.CashRegister
	txs       []model.CashTransaction
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{registers: make(map[uuid.UUID]*model.CashRegister)}
}

func (r *fakeRegisterRepo) CreateRegisterTx(_ *gorm.DB, reg *model.CashRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegisterRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registers {
		if reg.OperatorID == operatorID && reg.Status == model.RegisterOpen {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) UpdateRegisterTx(_ *gorm.DB, reg *model.CashRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) CreateTransactionTx(_ *gorm.DB, t *model.CashTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, *t)
	return nil
}

func (r *fakeRegisterRepo) ListTransactions(_ context.Context, registerID uuid.UUID) ([]model.CashTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashTransaction
	for _, t := range r.txs {
		if t.RegisterID == registerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRegisterRepo) ListRegisters(_ context.Context, operatorID *uuid.UUID, page, limit int) ([]model.CashRegister, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashRegister
	for _, reg := range r.registers {
		if operatorID != nil && reg.OperatorID != *operatorID {
			continue
		}
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRegisterRepo) DB() *gorm.DB { return nil }

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

// ── Sales ────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale
	// createErr, when set, fails the next CreateTx — simulates a cascade
	// interrupted mid-transaction.
	createErr error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sales[id]
	return ok, nil
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── Financial records ────────────────────────────────────────────────────────

type fakeFinancialRepo struct {
	mu      sync.Mutex
	records []model.FinancialRecord
}

func newFakeFinancialRepo() *fakeFinancialRepo { return &fakeFinancialRepo{} }

func (r *fakeFinancialRepo) CreateTx(_ *gorm.DB, f *model.FinancialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *f)
	return nil
}

func (r *fakeFinancialRepo) ListByReference(_ context.Context, referenceID uuid.UUID) ([]model.FinancialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.FinancialRecord
	for _, f := range r.records {
		if f.ReferenceID != nil && *f.ReferenceID == referenceID {
			out = append(out, f)
		}
	}
	return out, nil
}

var _ repository.FinancialRepository = (*fakeFinancialRepo)(nil)

// ── Intents ──────────────────────────────────────────────────────────────────

type fakeIntentRepo struct {
	mu      sync.Mutex
	intents map[uuid.UUID]*model.SaleIntent
}

func newFakeIntentRepo() *fakeIntentRepo {
	return &fakeIntentRepo{intents: make(map[uuid.UUID]*model.SaleIntent)}
}

func (r *fakeIntentRepo) Create(_ context.Context, i *model.SaleIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.intents[i.ID] = &cp
	return nil
}

func (r *fakeIntentRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.intents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Status = status
	return nil
}

func (r *fakeIntentRepo) ListPending(_ context.Context, before time.Time) ([]model.SaleIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SaleIntent
	for _, i := range r.intents {
		if i.Status == model.IntentPending && i.CreatedAt.Before(before) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *fakeIntentRepo) status(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.intents[id]; ok {
		return i.Status
	}
	return ""
}

var _ repository.IntentRepository = (*fakeIntentRepo)(nil)

// ── Audit capture ────────────────────────────────────────────────────────────

type capturedEvent struct {
	Action   string
	Details  string
	Severity audit.Severity
}

type captureSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (s *captureSink) Log(_ context.Context, action, details string, severity audit.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, capturedEvent{Action: action, Details: details, Severity: severity})
}

func (s *captureSink) byAction(action string) []capturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []capturedEvent
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

var _ audit.Sink = (*captureSink)(nil)
