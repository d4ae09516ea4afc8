package users

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/utils"
)

// GET /v1/partner/dashboard/{telegram_id}
//
// The dashboard read path is also where expired activations are retired: an
// is_active profile past its expires_at gets deactivated here with a history
// row, so the bot always shows the real state.
func PartnerDashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	profile, err := engine.GetOrCreateProfile(ctx, user.ID, models.ProgramDirect)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load partner profile"})
		return
	}

	if profile.IsActive && !profile.ActiveNow(time.Now()) {
		if err := engine.DeactivatePartner(ctx, user.ID, "Срок активации истёк", nil); err != nil {
			log.Printf("[PARTNER] expiry deactivation for user %d: %v", user.ID, err)
		} else {
			profile.IsActive = false
		}
	}

	stats, err := engine.ComputeHierarchyStats(ctx, user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to compute team stats"})
		return
	}

	var transactions []models.PartnerTransaction
	database.DB.Where("profile_id = ?", profile.ID).
		Order("created_at DESC").Limit(10).Find(&transactions)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"profile":      profile,
			"stats":        stats,
			"link":         partner.ProfileLink(botUsername, profile),
			"transactions": transactions,
		},
	})
}

type LinkRequest struct {
	TelegramID  int64  `json:"telegram_id"`
	ProgramType string `json:"program_type"`
}

// POST /v1/partner/link
//
// Generates (or returns) the referral link and records the generation event
// as an edge with no referred user yet. The track is fixed at enrollment:
// an existing profile cannot request a link for the other program.
func PartnerLinkHandler(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.ProgramType != models.ProgramDirect && req.ProgramType != models.ProgramMultiLevel {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid program_type"})
		return
	}

	var user models.User
	if err := database.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	ctx := r.Context()
	profile, err := engine.GetOrCreateProfile(ctx, user.ID, req.ProgramType)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load partner profile"})
		return
	}
	if profile.ProgramType != req.ProgramType {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Partner is enrolled in a different program"})
		return
	}

	edge := models.PartnerReferral{
		ProfileID:    profile.ID,
		Level:        1,
		ReferralType: profile.ProgramType,
	}
	if err := database.DB.Create(&edge).Error; err != nil {
		log.Printf("[PARTNER] link event for profile %d: %v", profile.ID, err)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"referral_code": profile.ReferralCode,
			"link":          partner.ProfileLink(botUsername, profile),
		},
	})
}
