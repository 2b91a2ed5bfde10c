package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	treasuryRowID = "dao"
)

type TreasuryConfig struct {
	Identity       string
	Owner          string
	InitialBalance decimal.Decimal
}

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the governance tables when they do not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&proposalModel{},
		&ballotModel{},
		&treasuryModel{},
		&treasuryEntryModel{},
		&payoutModel{},
		&idempotencyModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("dao_repo_migrate_failed", err)
	}
	return nil
}

// EnsureTreasury inserts the treasury row on first start. An existing row
// keeps its balance; configuration only seeds it.
func (r *Repository) EnsureTreasury(ctx context.Context, cfg TreasuryConfig) error {
	row := treasuryModel{
		TreasuryID: treasuryRowID,
		Identity:   strings.TrimSpace(cfg.Identity),
		Owner:      strings.TrimSpace(cfg.Owner),
		Balance:    cfg.InitialBalance,
		UpdatedAt:  time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "treasury_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dao_repo_ensure_treasury_failed", create.Error)
	}
	return nil
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		// Every ledger write starts by locking the treasury row, which
		// serializes governance commands across API replicas.
		var row treasuryModel
		if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("treasury_id = ?", treasuryRowID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTreasuryNotFound
			}
			return r.logError("dao_repo_lock_treasury_failed", err)
		}
		return fn(ctx, &ledgerTx{db: db, repo: r, treasury: row.toEntity()})
	})
}

func (r *Repository) GetProposal(ctx context.Context, proposalID int64) (entities.Proposal, error) {
	return getProposal(ctx, r.db, r, proposalID)
}

func (r *Repository) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Order("proposal_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("dao_repo_list_proposals_failed", err)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListBallots(ctx context.Context, proposalID int64) ([]entities.Ballot, error) {
	if _, err := r.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("dao_repo_list_ballots_failed", err, "proposal_id", proposalID)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetTreasury(ctx context.Context) (entities.Treasury, error) {
	var row treasuryModel
	err := r.db.WithContext(ctx).
		Where("treasury_id = ?", treasuryRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Treasury{}, domainerrors.ErrTreasuryNotFound
		}
		return entities.Treasury{}, r.logError("dao_repo_get_treasury_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListTreasuryEntries(ctx context.Context, limit int) ([]entities.TreasuryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []treasuryEntryModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dao_repo_list_treasury_entries_failed", err, "limit", limit)
	}
	items := make([]entities.TreasuryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	return getIdempotency(ctx, r.db, r, key, now)
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	return putIdempotency(ctx, r.db, r, record)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("sequence ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dao_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("dao_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "dao-governance/proposal-voting",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

// ledgerTx runs inside the gorm transaction opened by WithinTx. The treasury
// row is already locked, so it is kept in memory and written back on save.
type ledgerTx struct {
	db       *gorm.DB
	repo     *Repository
	treasury entities.Treasury
}

func (tx *ledgerTx) NextProposalID(ctx context.Context) (int64, error) {
	var next int64
	if err := tx.db.WithContext(ctx).
		Model(&proposalModel{}).
		Select("COALESCE(MAX(proposal_id), -1) + 1").
		Scan(&next).Error; err != nil {
		return 0, tx.repo.logError("dao_repo_next_proposal_id_failed", err)
	}
	return next, nil
}

func (tx *ledgerTx) InsertProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return tx.repo.logError("dao_repo_insert_proposal_failed", err, "proposal_id", proposal.ProposalID)
	}
	return nil
}

func (tx *ledgerTx) GetProposal(ctx context.Context, proposalID int64) (entities.Proposal, error) {
	return getProposal(ctx, tx.db, tx.repo, proposalID)
}

func (tx *ledgerTx) UpdateProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	result := tx.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", proposal.ProposalID).
		Updates(map[string]any{
			"yay_votes":      row.YayVotes,
			"nay_votes":      row.NayVotes,
			"executed":       row.Executed,
			"outcome":        row.Outcome,
			"purchase_price": row.PurchasePrice,
			"executed_by":    row.ExecutedBy,
			"executed_at":    row.ExecutedAt,
		})
	if result.Error != nil {
		return tx.repo.logError("dao_repo_update_proposal_failed", result.Error, "proposal_id", proposal.ProposalID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (tx *ledgerTx) HasVoted(ctx context.Context, proposalID int64, voter string) (bool, error) {
	var count int64
	if err := tx.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		Count(&count).Error; err != nil {
		return false, tx.repo.logError("dao_repo_has_voted_failed", err, "proposal_id", proposalID)
	}
	return count > 0, nil
}

func (tx *ledgerTx) InsertBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModel{
		ProposalID: ballot.ProposalID,
		Voter:      strings.TrimSpace(ballot.Voter),
		Choice:     string(ballot.Choice),
		CastAt:     ballot.CastAt.UTC(),
	}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return tx.repo.logError("dao_repo_insert_ballot_failed", err,
			"proposal_id", ballot.ProposalID,
			"voter", row.Voter,
		)
	}
	return nil
}

func (tx *ledgerTx) GetTreasury(_ context.Context) (entities.Treasury, error) {
	return tx.treasury, nil
}

func (tx *ledgerTx) SaveTreasury(ctx context.Context, treasury entities.Treasury) error {
	if treasury.Balance.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	if err := tx.db.WithContext(ctx).
		Model(&treasuryModel{}).
		Where("treasury_id = ?", treasuryRowID).
		Updates(map[string]any{
			"balance":    treasury.Balance,
			"updated_at": treasury.UpdatedAt.UTC(),
		}).Error; err != nil {
		return tx.repo.logError("dao_repo_save_treasury_failed", err)
	}
	tx.treasury = treasury
	return nil
}

func (tx *ledgerTx) AppendTreasuryEntry(ctx context.Context, entry entities.TreasuryEntry) error {
	row := treasuryEntryModel{
		EntryID:      strings.TrimSpace(entry.EntryID),
		Kind:         string(entry.Kind),
		Amount:       entry.Amount,
		Principal:    strings.TrimSpace(entry.Principal),
		ProposalID:   entry.ProposalID,
		BalanceAfter: entry.BalanceAfter,
		CreatedAt:    entry.CreatedAt.UTC(),
	}
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		return tx.repo.logError("dao_repo_append_treasury_entry_failed", err, "entry_id", row.EntryID)
	}
	return nil
}

func (tx *ledgerTx) RecordPayout(ctx context.Context, payout entities.Payout) error {
	row := payoutModel{
		PayoutID:  strings.TrimSpace(payout.PayoutID),
		Recipient: strings.TrimSpace(payout.Recipient),
		Amount:    payout.Amount,
		CreatedAt: payout.CreatedAt.UTC(),
	}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return tx.repo.logError("dao_repo_record_payout_failed", err, "payout_id", row.PayoutID)
	}
	return nil
}

func (tx *ledgerTx) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return tx.repo.logError("dao_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return tx.repo.logError("dao_repo_append_outbox_insert_failed", err, "outbox_id", row.OutboxID)
	}
	return nil
}

func (tx *ledgerTx) GetIdempotency(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	return getIdempotency(ctx, tx.db, tx.repo, key, now)
}

// PutIdempotency writes the key in the ledger transaction; the treasury row
// lock taken by WithinTx serializes concurrent requests for the same key.
func (tx *ledgerTx) PutIdempotency(ctx context.Context, record ports.IdempotencyRecord) error {
	return putIdempotency(ctx, tx.db, tx.repo, record)
}

func getIdempotency(
	ctx context.Context,
	db *gorm.DB,
	repo *Repository,
	key string,
	now time.Time,
) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, repo.logError("dao_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := db.WithContext(ctx).
			Where("key = ?", row.Key).
			Delete(&idempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, repo.logError("dao_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", row.Key,
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		ResourceID:  row.ResourceID,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func putIdempotency(ctx context.Context, db *gorm.DB, repo *Repository, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResourceID:  strings.TrimSpace(record.ResourceID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return repo.logError("dao_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return repo.logError("dao_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash || existing.ResourceID != row.ResourceID {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func getProposal(ctx context.Context, db *gorm.DB, repo *Repository, proposalID int64) (entities.Proposal, error) {
	var row proposalModel
	err := db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		if isUndefinedTable(err) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, repo.logError("dao_repo_get_proposal_failed", err, "proposal_id", proposalID)
	}
	return row.toEntity(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.Ledger = (*Repository)(nil)
var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
