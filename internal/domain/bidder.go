package domain

import "time"

type NotificationChannel string

const (
	NotifyByEmail    NotificationChannel = "email"
	NotifyBySMS      NotificationChannel = "sms"
	NotifyByWhatsApp NotificationChannel = "whatsapp"
)

// Bidder is read-only from the engine's perspective; identity issuance and
// contact management live elsewhere.
type Bidder struct {
	ID        uint                `json:"id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Phone     string              `json:"phone"`
	Role      string              `json:"role"`
	NotifyVia NotificationChannel `json:"notify_via"`
	CreatedAt time.Time           `json:"created_at"`
}
