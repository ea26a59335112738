package models

import "time"

// Partner status values.
const (
	PartnerPending  = "pending"
	PartnerAccepted = "accepted"
	PartnerRejected = "rejected"
)

// Partner links two users as workout partners. UserID is the requesting side.
// A user participates in at most one accepted partnership at a time; the
// unique pair index prevents duplicate requests between the same two users.
type Partner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_partners_pair" json:"user_id"`
	PartnerID uint      `gorm:"not null;uniqueIndex:uk_partners_pair" json:"partner_id"`
	Status    string    `gorm:"size:16;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FitnessGroup is a small check-in group. InviteCode is shared out of band and
// is the only way to discover a group.
type FitnessGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatorID   uint      `gorm:"index;not null" json:"creator_id"`
	InviteCode  string    `gorm:"size:36;uniqueIndex;not null" json:"invite_code"`
	MaxMembers  int       `gorm:"default:4" json:"max_members"`
	CreatedAt   time.Time `json:"created_at"`
}

// Group member roles.
const (
	GroupRoleCreator = "creator"
	GroupRoleMember  = "member"
)

// GroupMember is a user's membership in a fitness group; one group per user.
type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:uk_group_members" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:uk_group_members" json:"user_id"`
	Role     string    `gorm:"size:16;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
