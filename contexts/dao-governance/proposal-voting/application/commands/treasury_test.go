package commands_test

import (
	"context"
	"errors"
	"testing"

	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"

	"github.com/stretchr/testify/require"
)

type refusingGateway struct{}

func (refusingGateway) Transfer(context.Context, entities.Payout) error {
	return errors.New("recipient wallet frozen")
}

func TestDepositValidatesInput(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	_, err := f.treasury.Deposit(ctx, commands.DepositCommand{Depositor: "", Amount: mustDecimal("1")})
	require.ErrorIs(t, err, domainerrors.ErrInvalidPrincipal)
	_, err = f.treasury.Deposit(ctx, commands.DepositCommand{Depositor: "dave", Amount: mustDecimal("0")})
	require.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	_, err = f.treasury.Deposit(ctx, commands.DepositCommand{Depositor: "dave", Amount: mustDecimal("-2")})
	require.ErrorIs(t, err, domainerrors.ErrInvalidAmount)

	require.True(t, f.balance(t).IsZero())
}

func TestDepositFromNonMember(t *testing.T) {
	f := newFixture(t, "0.5")
	ctx := context.Background()

	result, err := f.treasury.Deposit(ctx, commands.DepositCommand{Depositor: "dave", Amount: mustDecimal("0.25")})
	require.NoError(t, err)
	require.True(t, result.Treasury.Balance.Equal(mustDecimal("0.75")))
	require.Equal(t, entities.EntryDeposit, result.Entry.Kind)
	require.Equal(t, "dave", result.Entry.Principal)

	entries, err := f.store.ListTreasuryEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].BalanceAfter.Equal(mustDecimal("0.75")))
}

func TestDepositIdempotencyReplay(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()
	cmd := commands.DepositCommand{Depositor: "dave", Amount: mustDecimal("1"), IdempotencyKey: "dep-1"}

	first, err := f.treasury.Deposit(ctx, cmd)
	require.NoError(t, err)
	second, err := f.treasury.Deposit(ctx, cmd)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Entry.EntryID, second.Entry.EntryID)
	require.True(t, f.balance(t).Equal(mustDecimal("1")))

	cmd.Amount = mustDecimal("2")
	_, err = f.treasury.Deposit(ctx, cmd)
	require.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}

func TestWithdrawOwnerOnly(t *testing.T) {
	f := newFixture(t, "1.5")
	ctx := context.Background()

	_, err := f.treasury.Withdraw(ctx, commands.WithdrawCommand{Caller: "alice"})
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
	_, err = f.treasury.Withdraw(ctx, commands.WithdrawCommand{Caller: ""})
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
	require.True(t, f.balance(t).Equal(mustDecimal("1.5")))

	result, err := f.treasury.Withdraw(ctx, commands.WithdrawCommand{Caller: "dao-owner"})
	require.NoError(t, err)
	require.Equal(t, "dao-owner", result.Payout.Recipient)
	require.True(t, result.Payout.Amount.Equal(mustDecimal("1.5")))
	require.True(t, result.Treasury.Balance.IsZero())
	require.True(t, f.balance(t).IsZero())
	require.True(t, f.wallets.BalanceOf("dao-owner").Equal(mustDecimal("1.5")))

	payouts, err := f.store.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
}

func TestWithdrawEmptyTreasury(t *testing.T) {
	f := newFixture(t, "0")

	result, err := f.treasury.Withdraw(context.Background(), commands.WithdrawCommand{Caller: "dao-owner"})
	require.NoError(t, err)
	require.True(t, result.Payout.Amount.IsZero())
	require.True(t, f.balance(t).IsZero())
}

func TestWithdrawRefusedTransferRollsBack(t *testing.T) {
	f := newFixture(t, "2")
	f.treasury.Payouts = refusingGateway{}
	ctx := context.Background()

	_, err := f.treasury.Withdraw(ctx, commands.WithdrawCommand{Caller: "dao-owner"})
	require.ErrorIs(t, err, domainerrors.ErrPayoutTransferRejected)
	require.True(t, f.balance(t).Equal(mustDecimal("2")))

	payouts, err := f.store.ListPayouts(ctx)
	require.NoError(t, err)
	require.Empty(t, payouts)
	entries, err := f.store.ListTreasuryEntries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}
