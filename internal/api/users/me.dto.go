package users

import "time"

type MeResponse struct {
	User         UserDTO          `json:"user"`
	Subscription *SubscriptionDTO `json:"subscription"`
	Access       AccessDTO        `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

/* ---------- BILLING ---------- */

type SubscriptionDTO struct {
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	StartedAt time.Time `json:"started_at"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string   `json:"state"` // trial|full|locked
	Capabilities []string `json:"capabilities"`
	DaysLeft     *int     `json:"days_left"`
}
