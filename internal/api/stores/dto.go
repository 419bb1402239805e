package storesapi

import "foodorder-api/internal/domain/stores"

type HourDTO struct {
	ID       uint       `json:"id"`
	Day      stores.Day `json:"day"`
	OpensAt  string     `json:"opens_at"`
	ClosesAt string     `json:"closes_at"`
}

type StatusDTO struct {
	ID              uint        `json:"id"`
	Name            string      `json:"name"`
	Subdomain       string      `json:"subdomain"`
	URL             string      `json:"url"`
	Timezone        string      `json:"timezone,omitempty"`
	IsOpen          bool        `json:"is_open"`
	Mode            stores.Mode `json:"mode"`
	IsSuspended     bool        `json:"is_suspended"`
	AcceptingOrders bool        `json:"accepting_orders"`
	OpeningHours    []HourDTO   `json:"opening_hours"`
}

func toHourDTO(h stores.OpeningHour) HourDTO {
	return HourDTO{ID: h.ID, Day: h.Day, OpensAt: h.OpensAt, ClosesAt: h.ClosesAt}
}

func (h *Handler) statusOf(s *stores.Store) StatusDTO {
	hours := make([]HourDTO, 0, len(s.OpeningHours))
	for _, oh := range s.OpeningHours {
		hours = append(hours, toHourDTO(oh))
	}
	return StatusDTO{
		ID:              s.ID,
		Name:            s.Name,
		Subdomain:       s.Subdomain,
		URL:             stores.PublicURL(s.Subdomain, h.baseDomain),
		Timezone:        s.Timezone,
		IsOpen:          s.IsOpen,
		Mode:            s.Mode,
		IsSuspended:     s.IsSuspended,
		AcceptingOrders: s.AcceptingOrders(),
		OpeningHours:    hours,
	}
}
