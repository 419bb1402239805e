package repository

import (
	"context"

	"gorm.io/gorm"

	"foodorder-api/internal/domain/stores"
)

const (
	msgStoreNotFound = "store not found"
	msgHourNotFound  = "opening hour not found"
)

type Stores struct {
	db *gorm.DB
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{db: db}
}

func (r *Stores) UpdateIsOpen(ctx context.Context, storeID uint, open bool) error {
	return r.update(ctx, storeID, map[string]any{"is_open": open})
}

func (r *Stores) Create(ctx context.Context, store *stores.Store) error {
	err := r.db.WithContext(ctx).Create(store).Error
	return translate(err, msgStoreNotFound, "subdomain already taken")
}

// Delete removes the store and its opening hours in one transaction.
func (r *Stores) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&stores.OpeningHour{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&stores.Store{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, msgStoreNotFound, "")
		}
		return nil
	})
}

func (r *Stores) FindByID(ctx context.Context, id uint) (*stores.Store, error) {
	var store stores.Store
	err := r.db.WithContext(ctx).
		Preload("OpeningHours", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&store, id).Error
	if err != nil {
		return nil, translate(err, msgStoreNotFound, "")
	}
	return &store, nil
}

func (r *Stores) FindBySubdomain(ctx context.Context, subdomain string) (*stores.Store, error) {
	var store stores.Store
	err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&store).Error
	if err != nil {
		return nil, translate(err, msgStoreNotFound, "")
	}
	return &store, nil
}

func (r *Stores) ListAuto(ctx context.Context) ([]stores.Store, error) {
	var list []stores.Store
	err := r.db.WithContext(ctx).
		Preload("OpeningHours").
		Where("mode = ?", stores.ModeAuto).
		Order("id").
		Find(&list).Error
	return list, err
}

func (r *Stores) SetMode(ctx context.Context, storeID uint, mode stores.Mode, open bool) error {
	return r.update(ctx, storeID, map[string]any{"mode": mode, "is_open": open})
}

func (r *Stores) SetSuspended(ctx context.Context, storeID uint, suspended bool) error {
	return r.update(ctx, storeID, map[string]any{"is_suspended": suspended})
}

func (r *Stores) FindHour(ctx context.Context, id uint) (*stores.OpeningHour, error) {
	var hour stores.OpeningHour
	if err := r.db.WithContext(ctx).First(&hour, id).Error; err != nil {
		return nil, translate(err, msgHourNotFound, "")
	}
	return &hour, nil
}

func (r *Stores) CreateHour(ctx context.Context, hour *stores.OpeningHour) error {
	err := r.db.WithContext(ctx).Create(hour).Error
	return translate(err, msgStoreNotFound, "store already has opening hours for this day")
}

func (r *Stores) SaveHour(ctx context.Context, hour *stores.OpeningHour) error {
	err := r.db.WithContext(ctx).Save(hour).Error
	return translate(err, msgHourNotFound, "store already has opening hours for this day")
}

func (r *Stores) DeleteHour(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&stores.OpeningHour{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, msgHourNotFound, "")
	}
	return nil
}

func (r *Stores) update(ctx context.Context, storeID uint, values map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&stores.Store{}).
		Where("id = ?", storeID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, msgStoreNotFound, "")
	}
	return nil
}
