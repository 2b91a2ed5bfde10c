package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TreasuryConfig struct {
	Identity       string
	Owner          string
	InitialBalance decimal.Decimal
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
	sequence  int64
}

// Store keeps proposals, ballots and the treasury behind one lock. It also
// serves as the clock and id generator for in-memory deployments; tests move
// time with SetNow and Advance.
type Store struct {
	mu sync.RWMutex

	proposals      map[int64]entities.Proposal
	ballots        map[int64]map[string]entities.Ballot
	nextProposalID int64
	treasury       entities.Treasury
	entries        []entities.TreasuryEntry
	payouts        []entities.Payout
	idempotency    map[string]ports.IdempotencyRecord
	outbox         map[string]outboxRecord
	outboxSeq      int64

	clockMu sync.RWMutex
	now     time.Time
}

func NewStore(cfg TreasuryConfig) *Store {
	return &Store{
		proposals: make(map[int64]entities.Proposal),
		ballots:   make(map[int64]map[string]entities.Ballot),
		treasury: entities.Treasury{
			Identity:  strings.TrimSpace(cfg.Identity),
			Owner:     strings.TrimSpace(cfg.Owner),
			Balance:   cfg.InitialBalance,
			UpdatedAt: time.Now().UTC(),
		},
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &ledgerTx{
		store:     s,
		proposals: make(map[int64]entities.Proposal),
		keys:      make(map[string]ports.IdempotencyRecord),
		nextID:    s.nextProposalID,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID int64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) ListProposals(_ context.Context) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}

func (s *Store) ListBallots(_ context.Context, proposalID int64) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.proposals[proposalID]; !ok {
		return nil, domainerrors.ErrProposalNotFound
	}
	items := make([]entities.Ballot, 0, len(s.ballots[proposalID]))
	for _, ballot := range s.ballots[proposalID] {
		items = append(items, ballot)
	}
	return items, nil
}

func (s *Store) GetTreasury(_ context.Context) (entities.Treasury, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury, nil
}

func (s *Store) ListTreasuryEntries(_ context.Context, limit int) ([]entities.TreasuryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.TreasuryEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		items = append(items, s.entries[i])
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) ListPayouts(_ context.Context) ([]entities.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Payout(nil), s.payouts...), nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if idempotencyExpired(record, now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	if existing, ok := s.idempotency[key]; ok {
		if existing.RequestHash != record.RequestHash || existing.ResourceID != record.ResourceID {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	record.Key = key
	record.ExpiresAt = record.ExpiresAt.UTC()
	s.idempotency[key] = record
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if !row.published {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].sequence < rows[j].sequence
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID = strings.TrimSpace(outboxID)
	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	s.clockMu.RLock()
	defer s.clockMu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

// SetNow pins the store clock. A zero value returns it to wall time.
func (s *Store) SetNow(now time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Advance(d time.Duration) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	if s.now.IsZero() {
		s.now = time.Now().UTC()
	}
	s.now = s.now.Add(d)
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// ledgerTx stages writes against a locked Store. Nothing reaches the store
// unless the transaction function returns nil.
type ledgerTx struct {
	store     *Store
	proposals map[int64]entities.Proposal
	ballots   []entities.Ballot
	treasury  *entities.Treasury
	entries   []entities.TreasuryEntry
	payouts   []entities.Payout
	outbox    []outboxRecord
	keys      map[string]ports.IdempotencyRecord
	nextID    int64
}

func (tx *ledgerTx) NextProposalID(_ context.Context) (int64, error) {
	id := tx.nextID
	tx.nextID++
	return id, nil
}

func (tx *ledgerTx) InsertProposal(_ context.Context, proposal entities.Proposal) error {
	if _, ok := tx.store.proposals[proposal.ProposalID]; ok {
		return domainerrors.ErrConflict
	}
	if _, ok := tx.proposals[proposal.ProposalID]; ok {
		return domainerrors.ErrConflict
	}
	tx.proposals[proposal.ProposalID] = proposal
	return nil
}

func (tx *ledgerTx) GetProposal(_ context.Context, proposalID int64) (entities.Proposal, error) {
	if proposal, ok := tx.proposals[proposalID]; ok {
		return proposal, nil
	}
	proposal, ok := tx.store.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (tx *ledgerTx) UpdateProposal(ctx context.Context, proposal entities.Proposal) error {
	if _, err := tx.GetProposal(ctx, proposal.ProposalID); err != nil {
		return err
	}
	tx.proposals[proposal.ProposalID] = proposal
	return nil
}

func (tx *ledgerTx) HasVoted(_ context.Context, proposalID int64, voter string) (bool, error) {
	voter = strings.TrimSpace(voter)
	if _, ok := tx.store.ballots[proposalID][voter]; ok {
		return true, nil
	}
	for _, ballot := range tx.ballots {
		if ballot.ProposalID == proposalID && ballot.Voter == voter {
			return true, nil
		}
	}
	return false, nil
}

func (tx *ledgerTx) InsertBallot(ctx context.Context, ballot entities.Ballot) error {
	ballot.Voter = strings.TrimSpace(ballot.Voter)
	voted, err := tx.HasVoted(ctx, ballot.ProposalID, ballot.Voter)
	if err != nil {
		return err
	}
	if voted {
		return domainerrors.ErrAlreadyVoted
	}
	tx.ballots = append(tx.ballots, ballot)
	return nil
}

func (tx *ledgerTx) GetTreasury(_ context.Context) (entities.Treasury, error) {
	if tx.treasury != nil {
		return *tx.treasury, nil
	}
	return tx.store.treasury, nil
}

func (tx *ledgerTx) SaveTreasury(_ context.Context, treasury entities.Treasury) error {
	if treasury.Balance.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	tx.treasury = &treasury
	return nil
}

func (tx *ledgerTx) AppendTreasuryEntry(_ context.Context, entry entities.TreasuryEntry) error {
	tx.entries = append(tx.entries, entry)
	return nil
}

func (tx *ledgerTx) RecordPayout(_ context.Context, payout entities.Payout) error {
	tx.payouts = append(tx.payouts, payout)
	return nil
}

func (tx *ledgerTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, ok := tx.store.outbox[outboxID]; ok {
		return domainerrors.ErrConflict
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tx.outbox = append(tx.outbox, outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	})
	return nil
}

func (tx *ledgerTx) GetIdempotency(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	key = strings.TrimSpace(key)
	if record, ok := tx.keys[key]; ok {
		return record, true, nil
	}
	record, ok := tx.store.idempotency[key]
	if !ok || idempotencyExpired(record, now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

// PutIdempotency stages a record. A live record for the same key with a
// different request is a conflict; an expired one is replaced on commit.
func (tx *ledgerTx) PutIdempotency(_ context.Context, record ports.IdempotencyRecord) error {
	key := strings.TrimSpace(record.Key)
	existing, ok := tx.keys[key]
	if !ok {
		existing, ok = tx.store.idempotency[key]
		ok = ok && !idempotencyExpired(existing, tx.store.Now())
	}
	if ok && (existing.RequestHash != record.RequestHash || existing.ResourceID != record.ResourceID) {
		return domainerrors.ErrIdempotencyConflict
	}
	record.Key = key
	record.ExpiresAt = record.ExpiresAt.UTC()
	tx.keys[key] = record
	return nil
}

func (tx *ledgerTx) commit() {
	s := tx.store
	for id, proposal := range tx.proposals {
		s.proposals[id] = proposal
	}
	for _, ballot := range tx.ballots {
		byVoter, ok := s.ballots[ballot.ProposalID]
		if !ok {
			byVoter = make(map[string]entities.Ballot)
			s.ballots[ballot.ProposalID] = byVoter
		}
		byVoter[ballot.Voter] = ballot
	}
	if tx.treasury != nil {
		s.treasury = *tx.treasury
	}
	s.entries = append(s.entries, tx.entries...)
	s.payouts = append(s.payouts, tx.payouts...)
	for _, row := range tx.outbox {
		s.outboxSeq++
		row.sequence = s.outboxSeq
		s.outbox[row.message.OutboxID] = row
	}
	for key, record := range tx.keys {
		s.idempotency[key] = record
	}
	s.nextProposalID = tx.nextID
}

func idempotencyExpired(record ports.IdempotencyRecord, now time.Time) bool {
	return !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC())
}

// Wallets is an in-memory payout gateway that credits external balances.
type Wallets struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewWallets() *Wallets {
	return &Wallets{balances: make(map[string]decimal.Decimal)}
}

func (w *Wallets) Transfer(_ context.Context, payout entities.Payout) error {
	recipient := strings.TrimSpace(payout.Recipient)
	if recipient == "" || payout.Amount.IsNegative() {
		return domainerrors.ErrPayoutTransferRejected
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[recipient] = w.balances[recipient].Add(payout.Amount)
	return nil
}

func (w *Wallets) BalanceOf(principal string) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[strings.TrimSpace(principal)]
}
