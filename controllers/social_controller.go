package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/config"
	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/utils"
)

// SocialController handles workout partner and fitness group endpoints.
type SocialController struct {
	db *gorm.DB
}

// NewSocialController creates a new controller instance.
func NewSocialController(db *gorm.DB) *SocialController {
	return &SocialController{db: db}
}

// acceptedPartnership returns the accepted partnership a user participates in,
// on either side of the pair.
func (s *SocialController) acceptedPartnership(userID uint) (*models.Partner, error) {
	var p models.Partner
	err := s.db.Where("(user_id = ? OR partner_id = ?) AND status = ?",
		userID, userID, models.PartnerAccepted).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RequestPartner sends a partnership request to another user.
func (s *SocialController) RequestPartner(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid request payload")
		return
	}

	var target models.User
	if err := s.db.Where("username = ?", req.Username).First(&target).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	if target.ID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40121, "cannot partner with yourself")
		return
	}

	for _, id := range []uint{userID, target.ID} {
		p, err := s.acceptedPartnership(id)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50120, "failed to check partnerships")
			return
		}
		if p != nil {
			utils.Error(ctx, http.StatusConflict, 40920, "a partnership already exists")
			return
		}
	}

	var existing models.Partner
	if err := s.db.Where(
		"((user_id = ? AND partner_id = ?) OR (user_id = ? AND partner_id = ?)) AND status = ?",
		userID, target.ID, target.ID, userID, models.PartnerPending).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40921, "a pending request already exists")
		return
	}

	partner := models.Partner{
		UserID:    userID,
		PartnerID: target.ID,
		Status:    models.PartnerPending,
	}
	if err := s.db.Create(&partner).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50121, "failed to create request")
		return
	}

	utils.Success(ctx, partner)
}

// GetPartner returns the current partnership state: the accepted partner if
// any, plus incoming and outgoing pending requests.
func (s *SocialController) GetPartner(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	accepted, err := s.acceptedPartnership(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50122, "failed to load partnership")
		return
	}

	payload := gin.H{"partner": nil}
	if accepted != nil {
		otherID := accepted.UserID
		if otherID == userID {
			otherID = accepted.PartnerID
		}
		var other models.User
		if err := s.db.First(&other, otherID).Error; err == nil {
			payload["partner"] = gin.H{
				"partnership_id": accepted.ID,
				"user":           sanitizeUserResponse(other),
				"since":          accepted.CreatedAt,
			}
		}
	}

	var incoming []models.Partner
	s.db.Where("partner_id = ? AND status = ?", userID, models.PartnerPending).Find(&incoming)
	var outgoing []models.Partner
	s.db.Where("user_id = ? AND status = ?", userID, models.PartnerPending).Find(&outgoing)
	payload["incoming_requests"] = incoming
	payload["outgoing_requests"] = outgoing

	utils.Success(ctx, payload)
}

// AcceptPartner accepts an incoming request. Only the requested side may accept.
func (s *SocialController) AcceptPartner(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var request models.Partner
	if err := s.db.Where("id = ? AND partner_id = ? AND status = ?",
		ctx.Param("id"), userID, models.PartnerPending).First(&request).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "pending request not found")
		return
	}

	for _, id := range []uint{request.UserID, request.PartnerID} {
		p, err := s.acceptedPartnership(id)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50123, "failed to check partnerships")
			return
		}
		if p != nil {
			utils.Error(ctx, http.StatusConflict, 40920, "a partnership already exists")
			return
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("status", models.PartnerAccepted).Error; err != nil {
			return err
		}
		// Drop other pending requests involving either side.
		return tx.Where(
			"id != ? AND status = ? AND (user_id IN ? OR partner_id IN ?)",
			request.ID, models.PartnerPending,
			[]uint{request.UserID, request.PartnerID},
			[]uint{request.UserID, request.PartnerID},
		).Delete(&models.Partner{}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50124, "failed to accept request")
		return
	}

	utils.Success(ctx, gin.H{"message": "partner request accepted"})
}

// RejectPartner declines an incoming request.
func (s *SocialController) RejectPartner(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var request models.Partner
	if err := s.db.Where("id = ? AND partner_id = ? AND status = ?",
		ctx.Param("id"), userID, models.PartnerPending).First(&request).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "pending request not found")
		return
	}

	if err := s.db.Model(&request).Update("status", models.PartnerRejected).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50125, "failed to reject request")
		return
	}

	utils.Success(ctx, gin.H{"message": "partner request rejected"})
}

// CancelPartnerRequest withdraws an outgoing pending request.
func (s *SocialController) CancelPartnerRequest(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := s.db.Where("id = ? AND user_id = ? AND status = ?",
		ctx.Param("id"), userID, models.PartnerPending).Delete(&models.Partner{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50126, "failed to cancel request")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "pending request not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "partner request cancelled"})
}

// DissolvePartner ends the accepted partnership. Either side may dissolve.
func (s *SocialController) DissolvePartner(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	accepted, err := s.acceptedPartnership(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50127, "failed to load partnership")
		return
	}
	if accepted == nil {
		utils.Error(ctx, http.StatusNotFound, 40421, "no active partnership")
		return
	}

	if err := s.db.Delete(accepted).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50127, "failed to dissolve partnership")
		return
	}

	utils.Success(ctx, gin.H{"message": "partnership dissolved"})
}

// PartnerCheckIns returns the accepted partner's recent check-ins.
func (s *SocialController) PartnerCheckIns(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	accepted, err := s.acceptedPartnership(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50128, "failed to load partnership")
		return
	}
	if accepted == nil {
		utils.Error(ctx, http.StatusNotFound, 40421, "no active partnership")
		return
	}

	otherID := accepted.UserID
	if otherID == userID {
		otherID = accepted.PartnerID
	}

	days := 7
	if v, err := strconv.Atoi(ctx.Query("days")); err == nil && v > 0 && v <= 30 {
		days = v
	}
	from := time.Now().AddDate(0, 0, -days)

	var records []models.CheckIn
	if err := s.db.Where("user_id = ? AND check_date >= ?", otherID, from).
		Order("check_date DESC, created_at DESC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50128, "failed to load partner check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"partner_id": otherID,
		"days":       days,
		"checkins":   records,
	})
}

func (s *SocialController) membershipOf(userID uint) (*models.GroupMember, error) {
	var m models.GroupMember
	err := s.db.Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateGroup creates a fitness group; the creator joins automatically and an
// invite code is generated for sharing.
func (s *SocialController) CreateGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,max=64"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40130, "invalid request payload")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50130, "failed to check membership")
		return
	}
	if membership != nil {
		utils.Error(ctx, http.StatusConflict, 40922, "already in a group")
		return
	}

	group := models.FitnessGroup{
		Name:        utils.Sanitize(req.Name),
		Description: utils.Sanitize(req.Description),
		CreatorID:   userID,
		InviteCode:  uuid.NewString(),
		MaxMembers:  config.Get().GroupMaxMembers,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID:  group.ID,
			UserID:   userID,
			Role:     models.GroupRoleCreator,
			JoinedAt: time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50131, "failed to create group")
		return
	}

	utils.Success(ctx, group)
}

// GetGroup returns the caller's group, or the group matching an invite code
// when the code query parameter is present.
func (s *SocialController) GetGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if code := ctx.Query("code"); code != "" {
		var group models.FitnessGroup
		if err := s.db.Where("invite_code = ?", code).First(&group).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40430, "group not found")
			return
		}
		var memberCount int64
		s.db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount)
		utils.Success(ctx, gin.H{"group": group, "member_count": memberCount})
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50132, "failed to check membership")
		return
	}
	if membership == nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "not in a group")
		return
	}

	var group models.FitnessGroup
	if err := s.db.First(&group, membership.GroupID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50132, "failed to load group")
		return
	}
	var memberCount int64
	s.db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount)

	utils.Success(ctx, gin.H{"group": group, "member_count": memberCount, "role": membership.Role})
}

// JoinGroup joins a group by invite code, subject to capacity.
func (s *SocialController) JoinGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40131, "invalid request payload")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50133, "failed to check membership")
		return
	}
	if membership != nil {
		utils.Error(ctx, http.StatusConflict, 40922, "already in a group")
		return
	}

	var group models.FitnessGroup
	if err := s.db.Where("invite_code = ?", req.InviteCode).First(&group).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "group not found")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ?", group.ID).Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= group.MaxMembers {
			return errGroupFull
		}
		member := models.GroupMember{
			GroupID:  group.ID,
			UserID:   userID,
			Role:     models.GroupRoleMember,
			JoinedAt: time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		if errors.Is(err, errGroupFull) {
			utils.Error(ctx, http.StatusConflict, 40923, "group is full")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50133, "failed to join group")
		return
	}

	utils.Success(ctx, gin.H{"message": "joined group", "group": group})
}

var errGroupFull = errors.New("group is full")

// LeaveGroup removes the caller from their group. The creator may only leave
// when nobody else remains, which dissolves the group.
func (s *SocialController) LeaveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50134, "failed to check membership")
		return
	}
	if membership == nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "not in a group")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if membership.Role == models.GroupRoleCreator {
			var others int64
			if err := tx.Model(&models.GroupMember{}).
				Where("group_id = ? AND user_id != ?", membership.GroupID, userID).
				Count(&others).Error; err != nil {
				return err
			}
			if others > 0 {
				return errCreatorMustBeLast
			}
			if err := tx.Delete(&models.GroupMember{}, membership.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&models.FitnessGroup{}, membership.GroupID).Error
		}
		return tx.Delete(&models.GroupMember{}, membership.ID).Error
	})
	if err != nil {
		if errors.Is(err, errCreatorMustBeLast) {
			utils.Error(ctx, http.StatusBadRequest, 40132, "creator must dissolve the group or wait for members to leave")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50134, "failed to leave group")
		return
	}

	utils.Success(ctx, gin.H{"message": "left group"})
}

var errCreatorMustBeLast = errors.New("creator must be the last member")

// DissolveGroup deletes the group and all memberships. Creator only.
func (s *SocialController) DissolveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50135, "failed to check membership")
		return
	}
	if membership == nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "not in a group")
		return
	}
	if membership.Role != models.GroupRoleCreator {
		utils.Error(ctx, http.StatusForbidden, 40310, "only the creator may dissolve the group")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", membership.GroupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FitnessGroup{}, membership.GroupID).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50135, "failed to dissolve group")
		return
	}

	utils.Success(ctx, gin.H{"message": "group dissolved"})
}

// GroupMembers lists the members of the caller's group with public profiles.
func (s *SocialController) GroupMembers(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50136, "failed to check membership")
		return
	}
	if membership == nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "not in a group")
		return
	}

	var members []models.GroupMember
	if err := s.db.Where("group_id = ?", membership.GroupID).
		Order("joined_at ASC").Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50136, "failed to load members")
		return
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	var users []models.User
	if err := s.db.Where("id IN ?", utils.UniqueUint(ids)).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50136, "failed to load member profiles")
		return
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	items := make([]gin.H, 0, len(members))
	for _, m := range members {
		entry := gin.H{
			"role":      m.Role,
			"joined_at": m.JoinedAt,
		}
		if u, ok := usersByID[m.UserID]; ok {
			entry["user"] = sanitizeUserResponse(u)
		}
		items = append(items, entry)
	}

	utils.Success(ctx, items)
}

// GroupCheckIns returns the group's check-in feed over the last N days.
func (s *SocialController) GroupCheckIns(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	membership, err := s.membershipOf(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50137, "failed to check membership")
		return
	}
	if membership == nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "not in a group")
		return
	}

	days := 7
	if v, err := strconv.Atoi(ctx.Query("days")); err == nil && v > 0 && v <= 30 {
		days = v
	}
	from := time.Now().AddDate(0, 0, -days)

	var memberIDs []uint
	if err := s.db.Model(&models.GroupMember{}).Where("group_id = ?", membership.GroupID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50137, "failed to load members")
		return
	}

	var records []models.CheckIn
	if err := s.db.Where("user_id IN ? AND check_date >= ?", memberIDs, from).
		Order("check_date DESC, created_at DESC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50137, "failed to load group check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"group_id": membership.GroupID,
		"days":     days,
		"checkins": records,
	})
}
