package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "cryptodao/contexts/dao-governance/proposal-voting/application"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
)

const DefaultVotingWindow = 5 * time.Minute

type CreateProposalCommand struct {
	Caller         string
	AssetID        int64
	IdempotencyKey string
}

type CreateProposalResult struct {
	Proposal entities.Proposal
	Replayed bool
}

type VoteCommand struct {
	Caller     string
	ProposalID int64
	Vote       entities.VoteChoice
}

type ExecuteProposalCommand struct {
	Caller     string
	ProposalID int64
}

type ExecuteProposalResult struct {
	Proposal entities.Proposal
	Treasury entities.Treasury
}

// ProposalUseCase is the voting core. Each command runs entirely inside one
// ledger transaction: membership, deadline, ballot and treasury checks happen
// before the first write, and a failed check leaves the ledger untouched.
type ProposalUseCase struct {
	Ledger         ports.Ledger
	Proposals      ports.ProposalRepository
	Membership     ports.MembershipOracle
	Marketplace    ports.MarketplaceOracle
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Telemetry      ports.Telemetry
	VotingWindow   time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// CreateProposal opens a new purchase proposal for assetID. Ids are assigned
// sequentially from 0 inside the ledger transaction, so concurrent callers
// observe creation order.
func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (CreateProposalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	logger.Info("proposal create processing started",
		"event", "dao_proposal_create_started",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"caller", caller,
		"asset_id", cmd.AssetID,
	)

	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := hashCreateProposalCommand(cmd)
	if idempotencyKey != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, idempotencyKey, uc.now())
		if err != nil {
			logger.Error("proposal create idempotency lookup failed",
				"event", "dao_proposal_create_idempotency_lookup_failed",
				"module", "dao-governance/proposal-voting",
				"layer", "application",
				"caller", caller,
				"error", err.Error(),
			)
			return CreateProposalResult{}, err
		}
		if found {
			proposalID, err := replayedProposalID(record, requestHash)
			if err != nil {
				return CreateProposalResult{}, err
			}
			proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
			if err != nil {
				return CreateProposalResult{}, err
			}
			uc.logReplay(logger, proposal, caller)
			return CreateProposalResult{Proposal: proposal, Replayed: true}, nil
		}
	}

	var (
		created  entities.Proposal
		replayed bool
	)
	err := uc.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		now := uc.now()
		if idempotencyKey != "" {
			record, found, err := tx.GetIdempotency(ctx, idempotencyKey, now)
			if err != nil {
				return err
			}
			if found {
				proposalID, err := replayedProposalID(record, requestHash)
				if err != nil {
					return err
				}
				created, err = tx.GetProposal(ctx, proposalID)
				replayed = err == nil
				return err
			}
		}

		if err := uc.requireMember(ctx, caller); err != nil {
			return err
		}
		if cmd.AssetID < 0 {
			return domainerrors.ErrInvalidProposalInput
		}
		available, err := uc.Marketplace.Available(ctx, cmd.AssetID)
		if err != nil {
			return err
		}
		if !available {
			return domainerrors.ErrAssetNotForSale
		}

		proposalID, err := tx.NextProposalID(ctx)
		if err != nil {
			return err
		}
		created = entities.Proposal{
			ProposalID: proposalID,
			AssetID:    cmd.AssetID,
			Deadline:   now.Add(uc.resolveVotingWindow()),
			Outcome:    entities.OutcomePending,
			CreatedBy:  caller,
			CreatedAt:  now,
		}
		if err := tx.InsertProposal(ctx, created); err != nil {
			return err
		}
		if idempotencyKey != "" {
			if err := tx.PutIdempotency(ctx, ports.IdempotencyRecord{
				Key:         idempotencyKey,
				RequestHash: requestHash,
				ResourceID:  strconv.FormatInt(proposalID, 10),
				ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
			}); err != nil {
				return err
			}
		}
		return appendProposalEvent(ctx, tx, uc.IDGen, eventProposalCreated, proposalID, now, map[string]any{
			"asset_id":   created.AssetID,
			"created_by": created.CreatedBy,
			"deadline":   created.Deadline.Format(time.RFC3339),
		})
	})
	if err != nil {
		uc.failed(logger, "create_proposal", err, "caller", caller, "asset_id", cmd.AssetID)
		return CreateProposalResult{}, err
	}
	if replayed {
		uc.logReplay(logger, created, caller)
		return CreateProposalResult{Proposal: created, Replayed: true}, nil
	}

	if uc.Telemetry != nil {
		uc.Telemetry.ProposalCreated()
	}
	logger.Info("proposal created",
		"event", "dao_proposal_created",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"proposal_id", created.ProposalID,
		"asset_id", created.AssetID,
		"caller", caller,
		"deadline", created.Deadline.Format(time.RFC3339),
	)
	return CreateProposalResult{Proposal: created}, nil
}

// VoteOnProposal records one ballot per principal per proposal. The tally
// increment and the ballot row are written in the same transaction.
func (uc ProposalUseCase) VoteOnProposal(ctx context.Context, cmd VoteCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	logger.Info("proposal vote processing started",
		"event", "dao_proposal_vote_started",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"caller", caller,
		"proposal_id", cmd.ProposalID,
		"vote", string(cmd.Vote),
	)

	var updated entities.Proposal
	err := uc.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		now := uc.now()
		if err := uc.requireMember(ctx, caller); err != nil {
			return err
		}
		if !cmd.Vote.Valid() {
			return domainerrors.ErrInvalidVote
		}
		proposal, err := tx.GetProposal(ctx, cmd.ProposalID)
		if err != nil {
			return err
		}
		if !proposal.VotingOpen(now) {
			return domainerrors.ErrVotingClosed
		}
		voted, err := tx.HasVoted(ctx, proposal.ProposalID, caller)
		if err != nil {
			return err
		}
		if voted {
			return domainerrors.ErrAlreadyVoted
		}

		if cmd.Vote == entities.VoteYay {
			proposal.YayVotes++
		} else {
			proposal.NayVotes++
		}
		if err := tx.InsertBallot(ctx, entities.Ballot{
			ProposalID: proposal.ProposalID,
			Voter:      caller,
			Choice:     cmd.Vote,
			CastAt:     now,
		}); err != nil {
			return err
		}
		if err := tx.UpdateProposal(ctx, proposal); err != nil {
			return err
		}
		updated = proposal
		return appendProposalEvent(ctx, tx, uc.IDGen, eventProposalVoteCast, proposal.ProposalID, now, map[string]any{
			"voter":     caller,
			"vote":      string(cmd.Vote),
			"yay_votes": proposal.YayVotes,
			"nay_votes": proposal.NayVotes,
		})
	})
	if err != nil {
		uc.failed(logger, "vote_on_proposal", err, "caller", caller, "proposal_id", cmd.ProposalID)
		return entities.Proposal{}, err
	}

	if uc.Telemetry != nil {
		uc.Telemetry.VoteCast(cmd.Vote)
	}
	logger.Info("proposal vote recorded",
		"event", "dao_proposal_vote_recorded",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"proposal_id", updated.ProposalID,
		"caller", caller,
		"vote", string(cmd.Vote),
		"yay_votes", updated.YayVotes,
		"nay_votes", updated.NayVotes,
	)
	return updated, nil
}

// ExecuteProposal settles a proposal whose voting window has closed. A
// passed proposal buys its asset with treasury funds; a rejected one is only
// marked executed. ErrInsufficientFunds leaves the proposal unexecuted so the
// caller can retry after a deposit.
func (uc ProposalUseCase) ExecuteProposal(ctx context.Context, cmd ExecuteProposalCommand) (ExecuteProposalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	logger.Info("proposal execute processing started",
		"event", "dao_proposal_execute_started",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"caller", caller,
		"proposal_id", cmd.ProposalID,
	)

	var result ExecuteProposalResult
	err := uc.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		now := uc.now()
		if err := uc.requireMember(ctx, caller); err != nil {
			return err
		}
		proposal, err := tx.GetProposal(ctx, cmd.ProposalID)
		if err != nil {
			return err
		}
		if !proposal.Executable(now) {
			return domainerrors.ErrVotingStillOpen
		}
		if proposal.Executed {
			return domainerrors.ErrAlreadyExecuted
		}
		treasury, err := tx.GetTreasury(ctx)
		if err != nil {
			return err
		}

		executedAt := now
		proposal.Executed = true
		proposal.ExecutedBy = caller
		proposal.ExecutedAt = &executedAt
		if !proposal.Passed() {
			proposal.Outcome = entities.OutcomeRejected
			if err := tx.UpdateProposal(ctx, proposal); err != nil {
				return err
			}
			result = ExecuteProposalResult{Proposal: proposal, Treasury: treasury}
			return appendProposalEvent(ctx, tx, uc.IDGen, eventProposalExecuted, proposal.ProposalID, now, map[string]any{
				"outcome":     string(proposal.Outcome),
				"executed_by": caller,
				"yay_votes":   proposal.YayVotes,
				"nay_votes":   proposal.NayVotes,
			})
		}

		price, err := uc.Marketplace.PriceOf(ctx, proposal.AssetID)
		if err != nil {
			return err
		}
		if !treasury.CanSpend(price) {
			return domainerrors.ErrInsufficientFunds
		}
		treasury.Balance = treasury.Balance.Sub(price)
		treasury.UpdatedAt = now
		if err := tx.SaveTreasury(ctx, treasury); err != nil {
			return err
		}
		entryID, err := uc.newID(ctx)
		if err != nil {
			return err
		}
		proposalID := proposal.ProposalID
		if err := tx.AppendTreasuryEntry(ctx, entities.TreasuryEntry{
			EntryID:      entryID,
			Kind:         entities.EntryPurchase,
			Amount:       price,
			Principal:    treasury.Identity,
			ProposalID:   &proposalID,
			BalanceAfter: treasury.Balance,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		proposal.Outcome = entities.OutcomePassed
		proposal.PurchasePrice = price
		if err := tx.UpdateProposal(ctx, proposal); err != nil {
			return err
		}
		if err := appendProposalEvent(ctx, tx, uc.IDGen, eventProposalExecuted, proposal.ProposalID, now, map[string]any{
			"outcome":        string(proposal.Outcome),
			"executed_by":    caller,
			"asset_id":       proposal.AssetID,
			"purchase_price": price.String(),
			"buyer":          treasury.Identity,
			"yay_votes":      proposal.YayVotes,
			"nay_votes":      proposal.NayVotes,
		}); err != nil {
			return err
		}

		// The purchase is the only effect outside the ledger, so it runs last:
		// a rejection still rolls back the debit and the executed flag.
		if err := uc.Marketplace.Purchase(ctx, proposal.AssetID, price, treasury.Identity); err != nil {
			if errors.Is(err, domainerrors.ErrAssetNotForSale) || errors.Is(err, domainerrors.ErrPurchaseRejected) {
				return err
			}
			return fmt.Errorf("%w: %v", domainerrors.ErrPurchaseRejected, err)
		}
		result = ExecuteProposalResult{Proposal: proposal, Treasury: treasury}
		return nil
	})
	if err != nil {
		uc.failed(logger, "execute_proposal", err, "caller", caller, "proposal_id", cmd.ProposalID)
		return ExecuteProposalResult{}, err
	}

	if uc.Telemetry != nil {
		uc.Telemetry.ProposalExecuted(result.Proposal.Outcome)
		uc.Telemetry.TreasuryBalance(result.Treasury.Balance)
	}
	logger.Info("proposal executed",
		"event", "dao_proposal_executed",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"proposal_id", result.Proposal.ProposalID,
		"outcome", string(result.Proposal.Outcome),
		"caller", caller,
		"treasury_balance", result.Treasury.Balance.String(),
	)
	return result, nil
}

func (uc ProposalUseCase) requireMember(ctx context.Context, principal string) error {
	if principal == "" {
		return domainerrors.ErrNotAMember
	}
	units, err := uc.Membership.UnitsHeldBy(ctx, principal)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return domainerrors.ErrNotAMember
	}
	return nil
}

func (uc ProposalUseCase) logReplay(logger *slog.Logger, proposal entities.Proposal, caller string) {
	logger.Info("proposal create replayed",
		"event", "dao_proposal_create_replayed",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"caller", caller,
	)
}

func (uc ProposalUseCase) failed(logger *slog.Logger, operation string, err error, attrs ...any) {
	if uc.Telemetry != nil {
		uc.Telemetry.OperationFailed(operation, err)
	}
	fields := make([]any, 0, len(attrs)+10)
	fields = append(fields,
		"event", "dao_"+operation+"_failed",
		"module", "dao-governance/proposal-voting",
		"layer", "application",
		"operation", operation,
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	logger.Warn("governance command rejected", fields...)
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ProposalUseCase) newID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return strconv.FormatInt(uc.now().UnixNano(), 10), nil
	}
	return uc.IDGen.NewID(ctx)
}

func (uc ProposalUseCase) resolveVotingWindow() time.Duration {
	if uc.VotingWindow <= 0 {
		return DefaultVotingWindow
	}
	return uc.VotingWindow
}

func (uc ProposalUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func replayedProposalID(record ports.IdempotencyRecord, requestHash string) (int64, error) {
	if record.RequestHash != requestHash {
		return 0, domainerrors.ErrIdempotencyConflict
	}
	proposalID, err := strconv.ParseInt(record.ResourceID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode replayed proposal id: %w", err)
	}
	return proposalID, nil
}

func hashCreateProposalCommand(cmd CreateProposalCommand) string {
	payload := map[string]string{
		"caller":   strings.TrimSpace(cmd.Caller),
		"asset_id": strconv.FormatInt(cmd.AssetID, 10),
		"op":       "create_proposal",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
