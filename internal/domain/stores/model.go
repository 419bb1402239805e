package stores

import "time"

// Mode says who controls Store.IsOpen. In ModeAuto the availability engine
// derives it from the weekly schedule; in ModeManual only an explicit
// administrative action changes it.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

type Store struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Subdomain string `gorm:"not null;uniqueIndex:idx_stores_subdomain"`
	Timezone  string `gorm:"type:varchar(64)"`

	IsOpen      bool `gorm:"not null;default:false"`
	Mode        Mode `gorm:"type:varchar(10);not null;default:'auto'"`
	IsSuspended bool `gorm:"not null;default:false"`

	OpeningHours []OpeningHour `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) Manual() bool {
	return s.Mode == ModeManual
}

// AcceptingOrders is what customers see: open and not suspended.
func (s *Store) AcceptingOrders() bool {
	return s.IsOpen && !s.IsSuspended
}

type OpeningHour struct {
	ID       uint   `gorm:"primaryKey"`
	StoreID  uint   `gorm:"not null;uniqueIndex:idx_opening_hours_store_day"`
	Day      Day    `gorm:"type:varchar(10);not null;uniqueIndex:idx_opening_hours_store_day"`
	OpensAt  string `gorm:"type:varchar(5);not null"`
	ClosesAt string `gorm:"type:varchar(5);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
