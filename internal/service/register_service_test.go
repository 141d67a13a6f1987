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

func newRegisterEnv() (*fakeRegisterRepo, *captureSink, RegisterService) {
	repo := newFakeRegisterRepo()
	sink := &captureSink{}
	svc := NewRegisterService(repo, idgen.NewSequential(), sink, decimal.NewFromInt(10))
	return repo, sink, svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOpenRegister(t *testing.T) {
	repo, sink, svc := newRegisterEnv()
	op := uuid.New()

	reg, err := svc.Open(context.Background(), op, dec("500.00"))
	require.NoError(t, err)
	assert.Equal(t, model.RegisterOpen, reg.Status)
	assert.Equal(t, "500", reg.CurrentBalance.String())

	// An OPENING transaction seeds the log.
	txs, err := repo.ListTransactions(context.Background(), reg.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.CashOpening, txs[0].Type)

	assert.Len(t, sink.byAction("register.opened"), 1)
}

func TestOpenRegisterNegativeBalance(t *testing.T) {
	_, _, svc := newRegisterEnv()

	_, err := svc.Open(context.Background(), uuid.New(), dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestOpenRegisterTwiceSameOperator(t *testing.T) {
	_, _, svc := newRegisterEnv()
	op := uuid.New()

	_, err := svc.Open(context.Background(), op, dec("100"))
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), op, dec("200"))
	assert.ErrorIs(t, err, ErrRegisterAlreadyOpen)
}

func TestReopenAfterCloseCreatesFreshRegister(t *testing.T) {
	_, _, svc := newRegisterEnv()
	op := uuid.New()

	first, err := svc.Open(context.Background(), op, dec("100"))
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), first.ID, dec("100"))
	require.NoError(t, err)

	second, err := svc.Open(context.Background(), op, dec("50"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCashMovements(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)

	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashSupply, dec("50"), "till float")
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashBleed, dec("30"), "safe drop")
	require.NoError(t, err)

	after, err := svc.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "120", after.CurrentBalance.String())
}

func TestBleedCannotExceedBalance(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)

	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashBleed, dec("150"), "safe drop")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMovementOnClosedRegister(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), reg.ID, dec("100"))
	require.NoError(t, err)

	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashSupply, dec("10"), "late supply")
	assert.ErrorIs(t, err, ErrRegisterNotOpen)
}

func TestMovementRejectsNonPositiveAmount(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)

	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashSupply, dec("0"), "noop")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashOpening, dec("5"), "second opening")
	assert.ErrorContains(t, err, "unsupported cash transaction type")
}

func TestSummaryReplaysLog(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashSupply, dec("50"), "float")
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashBleed, dec("30"), "drop")
	require.NoError(t, err)

	sum, err := svc.Summary(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", sum.Opening.String())
	assert.Equal(t, "50", sum.Supply.String())
	assert.Equal(t, "30", sum.Bleed.String())
	assert.Equal(t, "120", sum.Calculated.String())
}

func TestCloseExactCount(t *testing.T) {
	_, sink, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashSupply, dec("50"), "float")
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), reg.ID, model.CashBleed, dec("30"), "drop")
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), reg.ID, dec("120"))
	require.NoError(t, err)
	assert.Equal(t, model.RegisterClosed, closed.Status)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.Difference.IsZero())
	require.NotNil(t, closed.DifferenceSeverity)
	assert.Equal(t, model.DifferenceInfo, *closed.DifferenceSeverity)

	events := sink.byAction("register.closed")
	require.Len(t, events, 1)
}

func TestCloseDifferenceSeverity(t *testing.T) {
	cases := []struct {
		name     string
		counted  string
		diff     string
		severity string
	}{
		{"shortage within threshold", "95", "-5", model.DifferenceWarning},
		{"overage within threshold", "110", "10", model.DifferenceWarning},
		{"shortage beyond threshold", "70", "-30", model.DifferenceCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, svc := newRegisterEnv()
			reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
			require.NoError(t, err)

			closed, err := svc.Close(context.Background(), reg.ID, dec(tc.counted))
			require.NoError(t, err)
			assert.Equal(t, tc.diff, closed.Difference.String())
			assert.Equal(t, tc.severity, *closed.DifferenceSeverity)
		})
	}
}

func TestCloseTrustsReplayOverCachedBalance(t *testing.T) {
	repo, sink, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)

	// Corrupt the cached balance; the log still sums to 100.
	repo.mu.Lock()
	repo.registers[reg.ID].CurrentBalance = dec("175")
	repo.mu.Unlock()

	closed, err := svc.Close(context.Background(), reg.ID, dec("100"))
	require.NoError(t, err)
	// Difference is computed against the replayed 100, not the drifted 175.
	assert.True(t, closed.Difference.IsZero())
	assert.Equal(t, "100", closed.CurrentBalance.String())
	assert.Len(t, sink.byAction("register.balance_drift"), 1)
}

func TestCloseIsTerminal(t *testing.T) {
	_, _, svc := newRegisterEnv()
	reg, err := svc.Open(context.Background(), uuid.New(), dec("100"))
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), reg.ID, dec("100"))
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), reg.ID, dec("100"))
	assert.ErrorIs(t, err, ErrRegisterNotOpen)
}

func TestGetUnknownRegister(t *testing.T) {
	_, _, svc := newRegisterEnv()

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRegisterNotFound)
}
