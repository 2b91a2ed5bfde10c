package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/membership-registry/domain/errors"
	"cryptodao/contexts/dao-governance/membership-registry/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&unitModel{}); err != nil {
		return r.logError("membership_repo_migrate_failed", err)
	}
	return nil
}

// MintUnit lets the bigserial key assign ids, so the first unit is 1.
func (r *Repository) MintUnit(ctx context.Context, owner string, mintedAt time.Time) (entities.Unit, error) {
	row := unitModel{
		Owner:     strings.TrimSpace(owner),
		MintedAt:  mintedAt.UTC(),
		UpdatedAt: mintedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Unit{}, domainerrors.ErrConflict
		}
		return entities.Unit{}, r.logError("membership_repo_mint_unit_failed", err, "owner", row.Owner)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUnit(ctx context.Context, unitID int64) (entities.Unit, error) {
	var row unitModel
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Unit{}, domainerrors.ErrUnitNotFound
		}
		return entities.Unit{}, r.logError("membership_repo_get_unit_failed", err, "unit_id", unitID)
	}
	return row.toEntity(), nil
}

func (r *Repository) TransferUnit(ctx context.Context, unitID int64, from string, to string, at time.Time) (entities.Unit, error) {
	var updated entities.Unit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row unitModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("unit_id = ?", unitID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUnitNotFound
			}
			return err
		}
		if row.Owner != strings.TrimSpace(from) {
			return domainerrors.ErrNotUnitOwner
		}
		row.Owner = strings.TrimSpace(to)
		row.UpdatedAt = at.UTC()
		if err := tx.Model(&unitModel{}).
			Where("unit_id = ?", unitID).
			Updates(map[string]any{
				"owner":      row.Owner,
				"updated_at": row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		updated = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnitNotFound) || errors.Is(err, domainerrors.ErrNotUnitOwner) {
			return entities.Unit{}, err
		}
		return entities.Unit{}, r.logError("membership_repo_transfer_unit_failed", err, "unit_id", unitID)
	}
	return updated, nil
}

func (r *Repository) ListUnitsByOwner(ctx context.Context, owner string) ([]entities.Unit, error) {
	var rows []unitModel
	if err := r.db.WithContext(ctx).
		Where("owner = ?", strings.TrimSpace(owner)).
		Order("unit_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("membership_repo_list_units_failed", err, "owner", strings.TrimSpace(owner))
	}
	items := make([]entities.Unit, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "dao-governance/membership-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("membership repository operation failed", fields...)
	return err
}

type unitModel struct {
	UnitID    int64     `gorm:"column:unit_id;primaryKey;autoIncrement"`
	Owner     string    `gorm:"column:owner;index"`
	MintedAt  time.Time `gorm:"column:minted_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (unitModel) TableName() string {
	return "membership_units"
}

func (m unitModel) toEntity() entities.Unit {
	return entities.Unit{
		UnitID:    m.UnitID,
		Owner:     m.Owner,
		MintedAt:  m.MintedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UnitRepository = (*Repository)(nil)
