package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "cryptodao/contexts/dao-governance/proposal-voting/application"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/shopspring/decimal"
)

type DepositCommand struct {
	Depositor      string
	Amount         decimal.Decimal
	IdempotencyKey string
}

type DepositResult struct {
	Entry    entities.TreasuryEntry
	Treasury entities.Treasury
	Replayed bool
}

type WithdrawCommand struct {
	Caller string
}

type WithdrawResult struct {
	Payout   entities.Payout
	Treasury entities.Treasury
}

// TreasuryUseCase covers the treasury paths that do not go through a
// proposal: deposits from anyone and the owner-only drain.
type TreasuryUseCase struct {
	Ledger         ports.Ledger
	Proposals      ports.ProposalRepository
	Payouts        ports.PayoutGateway
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Telemetry      ports.Telemetry
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc TreasuryUseCase) Deposit(ctx context.Context, cmd DepositCommand) (DepositResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	depositor := strings.TrimSpace(cmd.Depositor)
	if depositor == "" {
		return DepositResult{}, domainerrors.ErrInvalidPrincipal
	}
	if !cmd.Amount.IsPositive() {
		return DepositResult{}, domainerrors.ErrInvalidAmount
	}

	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := hashDepositCommand(depositor, cmd.Amount)
	if idempotencyKey != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, idempotencyKey, uc.now())
		if err != nil {
			return DepositResult{}, err
		}
		if found {
			if record.RequestHash != requestHash {
				return DepositResult{}, domainerrors.ErrIdempotencyConflict
			}
			treasury, err := uc.Proposals.GetTreasury(ctx)
			if err != nil {
				return DepositResult{}, err
			}
			return replayedDeposit(record, depositor, cmd.Amount, treasury), nil
		}
	}

	var result DepositResult
	err := uc.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		now := uc.now()
		treasury, err := tx.GetTreasury(ctx)
		if err != nil {
			return err
		}
		if idempotencyKey != "" {
			record, found, err := tx.GetIdempotency(ctx, idempotencyKey, now)
			if err != nil {
				return err
			}
			if found {
				if record.RequestHash != requestHash {
					return domainerrors.ErrIdempotencyConflict
				}
				result = replayedDeposit(record, depositor, cmd.Amount, treasury)
				return nil
			}
		}

		treasury.Balance = treasury.Balance.Add(cmd.Amount)
		treasury.UpdatedAt = now
		if err := tx.SaveTreasury(ctx, treasury); err != nil {
			return err
		}
		entryID, err := uc.newID(ctx)
		if err != nil {
			return err
		}
		entry := entities.TreasuryEntry{
			EntryID:      entryID,
			Kind:         entities.EntryDeposit,
			Amount:       cmd.Amount,
			Principal:    depositor,
			BalanceAfter: treasury.Balance,
			CreatedAt:    now,
		}
		if err := tx.AppendTreasuryEntry(ctx, entry); err != nil {
			return err
		}
		if idempotencyKey != "" {
			if err := tx.PutIdempotency(ctx, ports.IdempotencyRecord{
				Key:         idempotencyKey,
				RequestHash: requestHash,
				ResourceID:  entry.EntryID,
				ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
			}); err != nil {
				return err
			}
		}
		result = DepositResult{Entry: entry, Treasury: treasury}
		return appendTreasuryEvent(ctx, tx, uc.IDGen, eventTreasuryDeposited, treasury.Identity, now, map[string]any{
			"entry_id":      entry.EntryID,
			"depositor":     depositor,
			"amount":        cmd.Amount.String(),
			"balance_after": treasury.Balance.String(),
		})
	})
	if err != nil {
		uc.failed(logger, "deposit", err, "depositor", depositor)
		return DepositResult{}, err
	}
	if result.Replayed {
		return result, nil
	}

	if uc.Telemetry != nil {
		uc.Telemetry.TreasuryBalance(result.Treasury.Balance)
	}
	logger.Info("treasury deposit recorded",
		"event", "dao_treasury_deposit_recorded",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"depositor", depositor,
		"amount", cmd.Amount.String(),
		"balance", result.Treasury.Balance.String(),
	)
	return result, nil
}

// Withdraw moves the whole balance to the owner. The payout gateway runs
// inside the ledger transaction so that a refused transfer never debits.
func (uc TreasuryUseCase) Withdraw(ctx context.Context, cmd WithdrawCommand) (WithdrawResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	logger.Info("treasury withdraw processing started",
		"event", "dao_treasury_withdraw_started",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"caller", caller,
	)

	var result WithdrawResult
	err := uc.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		now := uc.now()
		treasury, err := tx.GetTreasury(ctx)
		if err != nil {
			return err
		}
		if caller == "" || caller != treasury.Owner {
			return domainerrors.ErrNotOwner
		}

		amount := treasury.Balance
		payoutID, err := uc.newID(ctx)
		if err != nil {
			return err
		}
		payout := entities.Payout{
			PayoutID:  payoutID,
			Recipient: treasury.Owner,
			Amount:    amount,
			CreatedAt: now,
		}
		treasury.Balance = decimal.Zero
		treasury.UpdatedAt = now
		if err := tx.SaveTreasury(ctx, treasury); err != nil {
			return err
		}
		if err := tx.RecordPayout(ctx, payout); err != nil {
			return err
		}
		if err := tx.AppendTreasuryEntry(ctx, entities.TreasuryEntry{
			EntryID:      payoutID,
			Kind:         entities.EntryWithdrawal,
			Amount:       amount,
			Principal:    treasury.Owner,
			BalanceAfter: treasury.Balance,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		if err := appendTreasuryEvent(ctx, tx, uc.IDGen, eventTreasuryWithdrawn, treasury.Identity, now, map[string]any{
			"payout_id": payoutID,
			"recipient": treasury.Owner,
			"amount":    amount.String(),
		}); err != nil {
			return err
		}

		if uc.Payouts != nil {
			if err := uc.Payouts.Transfer(ctx, payout); err != nil {
				if errors.Is(err, domainerrors.ErrPayoutTransferRejected) {
					return err
				}
				return fmt.Errorf("%w: %v", domainerrors.ErrPayoutTransferRejected, err)
			}
		}
		result = WithdrawResult{Payout: payout, Treasury: treasury}
		return nil
	})
	if err != nil {
		uc.failed(logger, "withdraw", err, "caller", caller)
		return WithdrawResult{}, err
	}

	if uc.Telemetry != nil {
		uc.Telemetry.TreasuryBalance(result.Treasury.Balance)
	}
	logger.Info("treasury withdrawn",
		"event", "dao_treasury_withdrawn",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"caller", caller,
		"amount", result.Payout.Amount.String(),
	)
	return result, nil
}

func (uc TreasuryUseCase) failed(logger *slog.Logger, operation string, err error, attrs ...any) {
	if uc.Telemetry != nil {
		uc.Telemetry.OperationFailed(operation, err)
	}
	fields := []any{
		"event", "dao_" + operation + "_failed",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"operation", operation,
		"error", err.Error(),
	}
	logger.Warn("treasury command rejected", append(fields, attrs...)...)
}

func (uc TreasuryUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc TreasuryUseCase) newID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return fmt.Sprintf("entry-%d", uc.now().UnixNano()), nil
	}
	return uc.IDGen.NewID(ctx)
}

func (uc TreasuryUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func replayedDeposit(record ports.IdempotencyRecord, depositor string, amount decimal.Decimal, treasury entities.Treasury) DepositResult {
	return DepositResult{
		Entry:    entities.TreasuryEntry{EntryID: record.ResourceID, Kind: entities.EntryDeposit, Amount: amount, Principal: depositor},
		Treasury: treasury,
		Replayed: true,
	}
}

func hashDepositCommand(depositor string, amount decimal.Decimal) string {
	raw, _ := json.Marshal(map[string]string{
		"op":        "deposit",
		"depositor": depositor,
		"amount":    amount.String(),
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
