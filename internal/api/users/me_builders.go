package users

import (
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/domain/users"
)

func BuildUserDTO(u *users.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func BuildSubscriptionDTO(s *subscriptions.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		Status:    string(s.Status),
		ExpiresAt: s.ExpiresAt,
		StartedAt: s.CreatedAt,
	}
}
