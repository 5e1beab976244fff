package infrastructure

import (
	"context"
	"errors"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warehouse/internal/service/inventory/domain"
)

const mysqlDuplicateEntry = 1062

// isDuplicateKey detects a unique-constraint violation from the MySQL driver.
func isDuplicateKey(err error) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// GormItemRepository implements domain.ItemRepository on GORM.
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	model := toItemModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrItemExists
		}
		return pkgerrors.Wrap(err, "create inventory item")
	}
	item.ID = model.ID
	return nil
}

func (r *GormItemRepository) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return r.getOne(ctx, r.db.WithContext(ctx), "sku = ?", sku)
}

// GetBySKUForUpdate takes a SELECT ... FOR UPDATE row lock. Meaningful only
// when r.db is a transaction handle from the unit of work.
func (r *GormItemRepository) GetBySKUForUpdate(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getOne(ctx, tx, "sku = ?", sku)
}

func (r *GormItemRepository) GetByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	return r.getOne(ctx, r.db.WithContext(ctx), "product_id = ?", productID)
}

func (r *GormItemRepository) getOne(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (*domain.InventoryItem, error) {
	var model InventoryItemModel
	if err := tx.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, pkgerrors.Wrap(err, "query inventory item")
	}
	return toDomainItem(&model), nil
}

func (r *GormItemRepository) GetManyBySKUs(ctx context.Context, skus []string) ([]*domain.InventoryItem, error) {
	var models []InventoryItemModel
	if err := r.db.WithContext(ctx).Where("sku IN ?", skus).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "query inventory items")
	}
	items := make([]*domain.InventoryItem, 0, len(models))
	for i := range models {
		items = append(items, toDomainItem(&models[i]))
	}
	return items, nil
}

func (r *GormItemRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	model := toItemModel(item)
	res := r.db.WithContext(ctx).Model(&InventoryItemModel{}).Where("sku = ?", item.SKU).Updates(map[string]interface{}{
		"quantity_available": model.QuantityAvailable,
		"quantity_reserved":  model.QuantityReserved,
		"reorder_level":      model.ReorderLevel,
		"max_stock":          model.MaxStock,
		"cost_per_unit":      model.CostPerUnit,
		"is_active":          model.IsActive,
		"last_restocked":     model.LastRestocked,
		"updated_at":         model.UpdatedAt,
	})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "save inventory item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *GormItemRepository) Delete(ctx context.Context, sku string) error {
	res := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&InventoryItemModel{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete inventory item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *GormItemRepository) ListLowStock(ctx context.Context) ([]*domain.InventoryItem, error) {
	var models []InventoryItemModel
	err := r.db.WithContext(ctx).
		Where("quantity_available <= reorder_level AND is_active = ?", true).
		Order("quantity_available ASC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query low stock items")
	}
	items := make([]*domain.InventoryItem, 0, len(models))
	for i := range models {
		items = append(items, toDomainItem(&models[i]))
	}
	return items, nil
}

// GormMovementRepository implements domain.MovementRepository on GORM.
type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) Append(ctx context.Context, m *domain.StockMovement) error {
	model := toMovementModel(m)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "append stock movement")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormMovementRepository) ListBySKU(ctx context.Context, sku string, limit int) ([]*domain.StockMovement, error) {
	var models []StockMovementModel
	err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query stock movements")
	}
	movements := make([]*domain.StockMovement, 0, len(models))
	for i := range models {
		movements = append(movements, toDomainMovement(&models[i]))
	}
	return movements, nil
}

// GormReservationRepository implements domain.ReservationRepository on GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if err := r.db.WithContext(ctx).Create(toReservationModel(res)).Error; err != nil {
		return pkgerrors.Wrap(err, "create reservation")
	}
	return nil
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, pkgerrors.Wrap(err, "query reservation")
	}
	return toDomainReservation(&model), nil
}

func (r *GormReservationRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "query reservations by order")
	}
	out := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		out = append(out, toDomainReservation(&models[i]))
	}
	return out, nil
}

// TransitionStatus is the CAS at the heart of the lifecycle: the UPDATE only
// matches when the row still holds the expected status, so exactly one of
// any set of racing transitions wins.
func (r *GormReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "transition reservation status")
	}
	return res.RowsAffected == 1, nil
}

func (r *GormReservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(domain.StatusPending), now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query expired reservations")
	}
	out := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		out = append(out, toDomainReservation(&models[i]))
	}
	return out, nil
}

func (r *GormReservationRepository) PurgeTerminal(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status <> ? AND updated_at < ?", string(domain.StatusPending), olderThan).
		Delete(&ReservationModel{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(res.Error, "purge terminal reservations")
	}
	return res.RowsAffected, nil
}
