package service

import (
	"context"
	"testing"
	"time"

	"pdvcore/internal/dto"
	"pdvcore/internal/idgen"
	"pdvcore/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductEnv() (*fakeProductRepo, *fakeKardexRepo, ProductService) {
	products := newFakeProductRepo()
	kardex := newFakeKardexRepo()
	ids := idgen.NewSequential()
	ledger := NewLedgerService(products, kardex, NewProductLocks(), ids)
	// nil redis client: the cache path is skipped entirely.
	svc := NewProductService(products, ledger, ids, nil, 30*time.Second)
	return products, kardex, svc
}

func TestCreateProductSeedsLedger(t *testing.T) {
	_, kardex, svc := newProductEnv()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code:         "COFFEE-1KG",
		Name:         "Coffee Beans 1kg",
		Price:        dec("49.90"),
		Cost:         dec("30.00"),
		MinStock:     dec("5"),
		InitialStock: dec("20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "20", resp.Stock.String())
	assert.True(t, resp.Active)
	assert.Equal(t, "unit", resp.Unit)

	// Initial stock arrives as an ENTRY so the chain starts consistent.
	require.Len(t, kardex.entries, 1)
	assert.Equal(t, model.MovementEntry, kardex.entries[0].Type)
	assert.Equal(t, "20", kardex.entries[0].BalanceAfter.String())
	assert.Equal(t, "initial:"+resp.ID, kardex.entries[0].DocumentRef)
}

func TestCreateProductWithoutInitialStock(t *testing.T) {
	_, kardex, svc := newProductEnv()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "TEA-BOX", Name: "Tea Box", Price: dec("12.50"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Stock.IsZero())
	assert.Empty(t, kardex.entries)
}

func TestCreateProductDuplicateCode(t *testing.T) {
	_, _, svc := newProductEnv()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "DUP", Name: "First", Price: dec("1"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "DUP", Name: "Second", Price: dec("2"),
	})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateProductNegativePrice(t *testing.T) {
	_, _, svc := newProductEnv()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "NEG", Name: "Broken", Price: dec("-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGetByCode(t *testing.T) {
	_, _, svc := newProductEnv()

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "SKU-9", Name: "Niner", Price: dec("9.99"),
	})
	require.NoError(t, err)

	found, err := svc.GetByCode(context.Background(), "SKU-9")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByCode(context.Background(), "NO-SUCH")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock(t *testing.T) {
	products, _, svc := newProductEnv()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "ADJ", Name: "Adjustable", Price: dec("5"), InitialStock: dec("10"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	entry, err := svc.AdjustStock(context.Background(), id, dto.AdjustStockRequest{
		QuantityDelta: dec("-3"),
		Type:          model.MovementAdjustment,
		Description:   "breakage",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", entry.BalanceAfter.String())

	p, _ := products.FindByID(context.Background(), id)
	assert.Equal(t, "7", p.Stock.String())
}

func TestAdjustStockZeroDelta(t *testing.T) {
	_, _, svc := newProductEnv()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "Z", Name: "Zero", Price: dec("5"),
	})
	require.NoError(t, err)

	_, err = svc.AdjustStock(context.Background(), uuid.MustParse(resp.ID), dto.AdjustStockRequest{
		QuantityDelta: decimal.Zero,
		Type:          model.MovementAdjustment,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestStockAlerts(t *testing.T) {
	_, _, svc := newProductEnv()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "LOW", Name: "Low Stock", Price: dec("5"), MinStock: dec("10"), InitialStock: dec("3"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "OK", Name: "Healthy Stock", Price: dec("5"), MinStock: dec("2"), InitialStock: dec("50"),
	})
	require.NoError(t, err)

	alerts, err := svc.StockAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "LOW", alerts[0].Code)
}
