package users

import "time"

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleCustomer   = "customer"
)

type User struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Email    string `gorm:"not null;uniqueIndex:idx_users_email"`
	Password string `json:"-"`
	Role     string `gorm:"type:varchar(20);not null;default:'customer'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
