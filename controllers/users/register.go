package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type RegisterRequest struct {
	TelegramID   int64   `json:"telegram_id"`
	Username     *string `json:"username"`
	FirstName    string  `json:"first_name"`
	ReferralCode string  `json:"referral_code"`
}

// normalizeReferralCode strips the deep-link payload prefixes the bot passes
// through verbatim ("ref_direct_PW1A2B3C" and "ref_multi_PW1A2B3C").
func normalizeReferralCode(raw string) string {
	code := strings.TrimSpace(raw)
	code = strings.TrimPrefix(code, "ref_direct_")
	code = strings.TrimPrefix(code, "ref_multi_")
	return strings.ToUpper(code)
}

// POST /v1/register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.TelegramID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "telegram_id is required"})
		return
	}

	db := database.DB

	if setting, err := models.GetSetting(db); err == nil && setting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Registration is closed"})
		return
	}

	var user models.User
	created := false
	err := db.Where("telegram_id = ?", req.TelegramID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			TelegramID: req.TelegramID,
			Username:   req.Username,
			FirstName:  req.FirstName,
		}
		if err := db.Create(&user).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create user"})
			return
		}
		created = true
	case err != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	default:
		// Keep the telegram identity fresh on repeat /start
		updates := map[string]interface{}{"first_name": req.FirstName}
		if req.Username != nil {
			updates["username"] = *req.Username
		}
		db.Model(&user).Updates(updates)
	}

	// The referral edge attaches only on first contact; an existing edge is
	// never replaced via the bot.
	if code := normalizeReferralCode(req.ReferralCode); code != "" {
		if err := engine.RegisterReferral(r.Context(), code, user.ID); err != nil {
			log.Printf("[REGISTER] referral %s for user %d: %v", code, user.ID, err)
		}
	}

	msg := "User already registered"
	if created {
		msg = "User registered"
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: msg,
		Data: map[string]interface{}{
			"user": user,
			"new":  created,
		},
	})
}

// GET /v1/users/{telegram_id}
func GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromPath(w, r)
	if !ok {
		return
	}

	var profile *models.PartnerProfile
	var p models.PartnerProfile
	if err := database.DB.Where("user_id = ?", user.ID).First(&p).Error; err == nil {
		profile = &p
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":    user,
			"partner": profile,
		},
	})
}
