package infrastructure

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"warehouse/internal/service/inventory/domain"
)

// NewDB opens the MySQL connection and migrates the inventory schema.
func NewDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open mysql connection")
	}
	if err := db.AutoMigrate(&InventoryItemModel{}, &StockMovementModel{}, &ReservationModel{}); err != nil {
		return nil, pkgerrors.Wrap(err, "migrate inventory schema")
	}
	return db, nil
}

// GormUnitOfWork implements domain.UnitOfWork on a GORM transaction. The
// repositories handed to fn all share the same *gorm.DB transaction handle,
// so FOR UPDATE locks taken through them hold until commit or rollback.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(r domain.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(domain.Repositories{
			Items:        NewGormItemRepository(tx),
			Movements:    NewGormMovementRepository(tx),
			Reservations: NewGormReservationRepository(tx),
		})
	})
}
