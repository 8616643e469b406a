package bank_test

import (
	"math/big"
	"testing"

	"github.com/opencurve/curved/internal/bank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndTransfer(t *testing.T) {
	b := bank.NewMemoryBank()
	require.NoError(t, b.Deposit("alice", big.NewInt(100)))
	require.NoError(t, b.Transfer("alice", "market", big.NewInt(40)))

	assert.Equal(t, big.NewInt(60), b.Balance("alice"))
	assert.Equal(t, big.NewInt(40), b.Balance("market"))
}

func TestTransferInsufficient(t *testing.T) {
	b := bank.NewMemoryBank()
	require.NoError(t, b.Deposit("alice", big.NewInt(10)))

	err := b.Transfer("alice", "market", big.NewInt(11))
	assert.ErrorIs(t, err, bank.ErrInsufficientFunds)
	assert.Equal(t, big.NewInt(10), b.Balance("alice"))
	assert.Zero(t, b.Balance("market").Sign())
}

func TestUnknownAccountIsEmpty(t *testing.T) {
	b := bank.NewMemoryBank()
	assert.Zero(t, b.Balance("nobody").Sign())
	assert.ErrorIs(t, b.Transfer("nobody", "market", big.NewInt(1)), bank.ErrInsufficientFunds)
}

func TestInvalidAmount(t *testing.T) {
	b := bank.NewMemoryBank()
	assert.ErrorIs(t, b.Deposit("alice", big.NewInt(-5)), bank.ErrInvalidAmount)
	assert.ErrorIs(t, b.Transfer("alice", "bob", nil), bank.ErrInvalidAmount)
}
