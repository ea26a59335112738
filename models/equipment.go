package models

import "time"

// Equipment is one entry of the built-in gym equipment catalog. The catalog is
// seeded at startup and uses stable string identifiers like "eq-dumbbell".
type Equipment struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Category    string    `gorm:"size:32;not null" json:"category"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserEquipment marks equipment a user owns or has access to.
type UserEquipment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uk_user_equipment" json:"user_id"`
	EquipmentID string    `gorm:"size:64;not null;uniqueIndex:uk_user_equipment" json:"equipment_id"`
	AcquiredAt  time.Time `json:"acquired_at"`
}
