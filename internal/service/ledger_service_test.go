package service

import (
	"context"
	"testing"

	"pdvcore/internal/idgen"
	"pdvcore/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerEnv() (*fakeProductRepo, *fakeKardexRepo, LedgerService) {
	products := newFakeProductRepo()
	kardex := newFakeKardexRepo()
	svc := NewLedgerService(products, kardex, NewProductLocks(), idgen.NewSequential())
	return products, kardex, svc
}

func seedProduct(t *testing.T, repo *fakeProductRepo, stock string) uuid.UUID {
	t.Helper()
	p := &model.Product{
		ID:     uuid.New(),
		Code:   "P-" + uuid.New().String()[:8],
		Name:   "Test Product",
		Price:  decimal.NewFromFloat(9.90),
		Stock:  decimal.RequireFromString(stock),
		Unit:   "unit",
		Active: true,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p.ID
}

func TestRecordMovementRunningBalance(t *testing.T) {
	products, kardex, svc := newLedgerEnv()
	id := seedProduct(t, products, "0")

	e1, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: id, QuantityDelta: decimal.NewFromInt(10), Type: model.MovementEntry,
	})
	require.NoError(t, err)
	assert.Equal(t, "10", e1.BalanceAfter.String())

	e2, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: id, QuantityDelta: decimal.NewFromInt(-3), Type: model.MovementSale,
		DocumentRef: "sale-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", e2.BalanceAfter.String())

	// Stock mirrors the last BalanceAfter.
	p, err := products.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "7", p.Stock.String())
	assert.Len(t, kardex.entries, 2)
}

func TestRecordMovementFractionalQuantities(t *testing.T) {
	products, _, svc := newLedgerEnv()
	id := seedProduct(t, products, "5")

	e, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: id, QuantityDelta: decimal.RequireFromString("-0.250"),
		Type: model.MovementSale, DocumentRef: "sale-w1",
	})
	require.NoError(t, err)
	assert.Equal(t, "4.75", e.BalanceAfter.String())
}

func TestRecordMovementUnknownType(t *testing.T) {
	products, _, svc := newLedgerEnv()
	id := seedProduct(t, products, "1")

	_, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: id, QuantityDelta: decimal.NewFromInt(1), Type: "TRANSFER",
	})
	assert.ErrorContains(t, err, "unknown movement type")
}

func TestRecordMovementUnknownProduct(t *testing.T) {
	_, _, svc := newLedgerEnv()

	_, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: uuid.New(), QuantityDelta: decimal.NewFromInt(1), Type: model.MovementEntry,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordMovementIdempotentPerDocument(t *testing.T) {
	products, kardex, svc := newLedgerEnv()
	id := seedProduct(t, products, "10")

	in := MovementInput{
		ProductID: id, QuantityDelta: decimal.NewFromInt(-4),
		Type: model.MovementSale, DocumentRef: "sale-42",
	}
	first, err := svc.RecordMovement(context.Background(), in)
	require.NoError(t, err)

	// The retry returns the already-written entry; nothing is double-applied.
	second, err := svc.RecordMovement(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, kardex.entries, 1)

	p, _ := products.FindByID(context.Background(), id)
	assert.Equal(t, "6", p.Stock.String())
}

func TestHistoryChronologicalAndRestartable(t *testing.T) {
	products, _, svc := newLedgerEnv()
	id := seedProduct(t, products, "0")

	for i := 0; i < 5; i++ {
		_, err := svc.RecordMovement(context.Background(), MovementInput{
			ProductID: id, QuantityDelta: decimal.NewFromInt(1), Type: model.MovementEntry,
		})
		require.NoError(t, err)
	}

	var balances []string
	for e, err := range svc.History(context.Background(), id) {
		require.NoError(t, err)
		balances = append(balances, e.BalanceAfter.String())
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, balances)

	// Ranging a second time restarts from the beginning.
	count := 0
	for _, err := range svc.History(context.Background(), id) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestVerifyIntactChain(t *testing.T) {
	products, _, svc := newLedgerEnv()
	id := seedProduct(t, products, "0")

	for _, delta := range []int64{10, -3, -2} {
		_, err := svc.RecordMovement(context.Background(), MovementInput{
			ProductID: id, QuantityDelta: decimal.NewFromInt(delta), Type: model.MovementAdjustment,
		})
		require.NoError(t, err)
	}

	v, err := svc.Verify(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, v.ChainOK)
	assert.True(t, v.StockMatches)
	assert.Equal(t, 3, v.Entries)
	assert.Equal(t, "5", v.LedgerBalance.String())
	assert.Nil(t, v.FirstBrokenEntry)
}

func TestVerifyDetectsBrokenChain(t *testing.T) {
	products, kardex, svc := newLedgerEnv()
	id := seedProduct(t, products, "0")

	for _, delta := range []int64{10, -3, -2} {
		_, err := svc.RecordMovement(context.Background(), MovementInput{
			ProductID: id, QuantityDelta: decimal.NewFromInt(delta), Type: model.MovementAdjustment,
		})
		require.NoError(t, err)
	}

	// Corrupt the middle entry's recorded balance.
	kardex.tamper(1, decimal.NewFromInt(99))

	v, err := svc.Verify(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, v.ChainOK)
	require.NotNil(t, v.FirstBrokenEntry)
	assert.Equal(t, kardex.entries[1].ID, *v.FirstBrokenEntry)
}

func TestVerifyEmptyLedger(t *testing.T) {
	products, _, svc := newLedgerEnv()
	id := seedProduct(t, products, "0")

	v, err := svc.Verify(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, v.ChainOK)
	assert.True(t, v.StockMatches)
	assert.Equal(t, 0, v.Entries)
}
