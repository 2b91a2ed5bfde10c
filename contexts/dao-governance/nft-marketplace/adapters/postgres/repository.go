package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	"cryptodao/contexts/dao-governance/nft-marketplace/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
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
	if err := r.db.WithContext(ctx).AutoMigrate(&saleModel{}); err != nil {
		return r.logError("marketplace_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) GetSale(ctx context.Context, assetID int64) (entities.Sale, bool, error) {
	var row saleModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Sale{}, false, nil
		}
		return entities.Sale{}, false, r.logError("marketplace_repo_get_sale_failed", err, "asset_id", assetID)
	}
	return row.toEntity(), true, nil
}

// RecordSale relies on the primary key: a second buyer hits a unique
// violation instead of overwriting the first.
func (r *Repository) RecordSale(ctx context.Context, sale entities.Sale) error {
	row := saleModel{
		AssetID:     sale.AssetID,
		Buyer:       strings.TrimSpace(sale.Buyer),
		Payment:     sale.Payment,
		PurchasedAt: sale.PurchasedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrNotAvailable
		}
		return r.logError("marketplace_repo_record_sale_failed", err,
			"asset_id", sale.AssetID,
			"buyer", row.Buyer,
		)
	}
	return nil
}

func (r *Repository) ListSales(ctx context.Context) ([]entities.Sale, error) {
	var rows []saleModel
	if err := r.db.WithContext(ctx).
		Order("asset_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("marketplace_repo_list_sales_failed", err)
	}
	items := make([]entities.Sale, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "dao-governance/nft-marketplace",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("marketplace repository operation failed", fields...)
	return err
}

type saleModel struct {
	AssetID     int64           `gorm:"column:asset_id;primaryKey;autoIncrement:false"`
	Buyer       string          `gorm:"column:buyer;index"`
	Payment     decimal.Decimal `gorm:"column:payment;type:numeric(38,18)"`
	PurchasedAt time.Time       `gorm:"column:purchased_at"`
}

func (saleModel) TableName() string {
	return "marketplace_sales"
}

func (m saleModel) toEntity() entities.Sale {
	return entities.Sale{
		AssetID:     m.AssetID,
		Buyer:       m.Buyer,
		Payment:     m.Payment,
		PurchasedAt: m.PurchasedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.AssetRepository = (*Repository)(nil)
