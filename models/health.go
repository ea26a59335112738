package models

import "time"

// HealthRecord stores one day's body metrics. All measurements are optional;
// pointers distinguish "not recorded" from zero values.
type HealthRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	RecordDate time.Time `gorm:"type:date;not null" json:"record_date"`
	Weight     *float64  `json:"weight"`
	Systolic   *int      `json:"systolic"`
	Diastolic  *int      `json:"diastolic"`
	Steps      *int      `json:"steps"`
	CreatedAt  time.Time `json:"created_at"`
}

// HealthThreshold holds per-user target ranges used by the health dashboard.
// One row per user.
type HealthThreshold struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	UserID       uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	WeightMin    *float64 `json:"weight_min"`
	WeightMax    *float64 `json:"weight_max"`
	SystolicMin  int      `gorm:"default:90" json:"systolic_min"`
	SystolicMax  int      `gorm:"default:140" json:"systolic_max"`
	DiastolicMin int      `gorm:"default:60" json:"diastolic_min"`
	DiastolicMax int      `gorm:"default:90" json:"diastolic_max"`
	StepsGoal    int      `gorm:"default:10000" json:"steps_goal"`
}
