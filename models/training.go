package models

import "time"

// TrainingPlan is a user-defined workout program. At most one plan per user is
// active at a time; activation is enforced by the controller, not the schema.
type TrainingPlan struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Description string     `gorm:"size:512" json:"description"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []PlanItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// PlanItem is one exercise slot inside a plan.
type PlanItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	PlanID       uint    `gorm:"index;not null" json:"plan_id"`
	EquipmentID  *string `gorm:"size:64" json:"equipment_id"`
	ExerciseName string  `gorm:"size:128;not null" json:"exercise_name"`
	Sets         *int    `json:"sets"`
	Reps         *int    `json:"reps"`
	Weight       *float64 `json:"weight"`
	Duration     *int    `json:"duration"`
	DayOfWeek    *int    `json:"day_of_week"`
	SortOrder    int     `gorm:"default:0" json:"sort_order"`
}

// TrainingLog records a completed workout session.
type TrainingLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	PlanID    *uint     `gorm:"index" json:"plan_id"`
	LogDate   time.Time `gorm:"index;not null" json:"log_date"`
	Duration  *int      `json:"duration"`
	Notes     string    `gorm:"size:512" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	Items     []LogItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// LogItem is one exercise actually performed during a session.
type LogItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	LogID        uint    `gorm:"index;not null" json:"log_id"`
	EquipmentID  *string `gorm:"size:64" json:"equipment_id"`
	ExerciseName string  `gorm:"size:128;not null" json:"exercise_name"`
	Sets         *int    `json:"sets"`
	Reps         *int    `json:"reps"`
	Weight       *float64 `json:"weight"`
	Duration     *int    `json:"duration"`
}
