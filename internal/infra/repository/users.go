package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"foodorder-api/internal/domain/orders"
	"foodorder-api/internal/domain/users"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, u *users.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	return translate(err, "user not found", "email already registered")
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var u users.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &u, nil
}

func (r *Users) FindByID(ctx context.Context, id uint) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &u, nil
}

func (r *Users) UpdatePassword(ctx context.Context, id uint, hash string) error {
	result := r.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user not found", "")
	}
	return nil
}

// Delete removes a user whose registration could not be completed.
func (r *Users) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&users.User{}, id).Error
}

type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

func (r *Orders) FindByID(ctx context.Context, id uint) (*orders.Order, error) {
	var o orders.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err, "order not found", "")
	}
	return &o, nil
}
