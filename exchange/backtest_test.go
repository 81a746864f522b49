package exchange

import (
	"context"
	"testing"

	"lotbot/ledger"
	"lotbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedExecutor_Fees(t *testing.T) {
	ex := NewSimulatedExecutor(ledger.FeeModel{EntryRate: 0.001, ExitRate: 0.0005})

	open, err := ex.Execute(context.Background(), model.Order{Side: model.SideTypeBuy, Price: 100, Quantity: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, open.Fee, 1e-12)
	assert.Equal(t, 100.0, open.Price)

	closeFill, err := ex.Execute(context.Background(), model.Order{Side: model.SideTypeSell, Price: 110, Quantity: 10, ReduceOnly: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.55, closeFill.Fee, 1e-12)
	assert.InDelta(t, 0.0005, closeFill.FeeRate(), 1e-12)
	assert.NotEqual(t, open.OrderID, closeFill.OrderID)
}

func TestSimulatedExecutor_Slippage(t *testing.T) {
	ex := NewSimulatedExecutor(ledger.FeeModel{}, WithSlippage(0.01))

	buy, err := ex.Execute(context.Background(), model.Order{Side: model.SideTypeBuy, Price: 100, Quantity: 1})
	require.NoError(t, err)
	assert.InDelta(t, 101.0, buy.Price, 1e-9)

	sell, err := ex.Execute(context.Background(), model.Order{Side: model.SideTypeSell, Price: 100, Quantity: 1})
	require.NoError(t, err)
	assert.InDelta(t, 99.0, sell.Price, 1e-9)
}

func TestSimulatedExecutor_RejectsInvalidOrder(t *testing.T) {
	ex := NewSimulatedExecutor(ledger.FeeModel{})

	_, err := ex.Execute(context.Background(), model.Order{Side: model.SideTypeBuy, Price: 100})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	_, err = ex.Execute(context.Background(), model.Order{Side: model.SideTypeBuy, Quantity: 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidPrice)
}
