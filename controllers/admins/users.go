package admins

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/middleware"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/utils"
)

func pathID(r *http.Request) (uint, error) {
	id64, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id64 == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id64), nil
}

// GET /v1/admin/users
func GetUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(username) LIKE ? OR CAST(telegram_id AS CHAR) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users": users,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GET /v1/admin/users/{id}
func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	var profile *models.PartnerProfile
	var p models.PartnerProfile
	if err := db.Where("user_id = ?", id).First(&p).Error; err == nil {
		profile = &p
	}

	// Current inviter, if any
	var inviter *models.User
	var edge models.PartnerReferral
	if err := db.Where("referred_id = ? AND level = 1", id).
		Order("created_at ASC").First(&edge).Error; err == nil {
		var inviterProfile models.PartnerProfile
		if err := db.First(&inviterProfile, edge.ProfileID).Error; err == nil {
			var u models.User
			if err := db.First(&u, inviterProfile.UserID).Error; err == nil {
				inviter = &u
			}
		}
	}

	stats, err := engine.ComputeHierarchyStats(r.Context(), id)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to compute stats"})
		return
	}

	var history []models.UserHistory
	db.Where("user_id = ?", id).Order("created_at DESC").Limit(50).Find(&history)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":    user,
			"partner": profile,
			"inviter": inviter,
			"stats":   stats,
			"history": history,
		},
	})
}

// PUT /v1/admin/users/{id}
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		Address   *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update user"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User updated"})
}

// PUT /v1/admin/users/{id}/balance
//
// Manual adjustment: atomic increment on the user row, a signed ledger entry
// against the partner profile when one exists (so reconciliation still
// balances), and an audit history row. Amount may be negative.
func AdjustUserBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.Amount == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount must be non-zero"})
		return
	}
	amount := utils.RoundFloat(req.Amount, 2)
	adminID := middleware.AdminIDFromContext(r.Context())

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return partner.ErrNotFound
		}
		if amount < 0 && user.Balance+amount < 0 {
			return partner.ErrInsufficientFunds
		}

		if err := tx.Model(&models.User{}).Where("id = ?", id).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		var profile models.PartnerProfile
		if err := tx.Where("user_id = ?", id).First(&profile).Error; err == nil {
			txType := models.TxCredit
			if amount < 0 {
				txType = models.TxDebit
			}
			entry := models.PartnerTransaction{
				ProfileID:   profile.ID,
				Type:        txType,
				Amount:      utils.RoundFloat(abs(amount), 2),
				Description: fmt.Sprintf("Корректировка баланса администратором: %s", req.Reason),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.PartnerProfile{}).Where("id = ?", profile.ID).
				Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
				return err
			}
		}

		hist, err := models.NewUserHistory(id, models.HistoryBalanceAdjust, models.BalanceAdjustPayload{
			Amount:  amount,
			Reason:  req.Reason,
			AdminID: adminID,
		})
		if err != nil {
			return err
		}
		return tx.Create(hist).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, partner.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		case errors.Is(err, partner.ErrInsufficientFunds):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Balance cannot go negative"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to adjust balance"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Balance adjusted"})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// POST /v1/admin/users/{id}/change-inviter
func ChangeInviter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req struct {
		InviterUserID uint `json:"inviter_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviterUserID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "inviter_user_id is required"})
		return
	}
	if req.InviterUserID == id {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "User cannot invite themselves"})
		return
	}

	if err := engine.ReassignInviter(r.Context(), id, req.InviterUserID); err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User or inviter not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to change inviter"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Inviter changed"})
}

// DELETE /v1/admin/users/{id}
//
// Orders survive with a nulled owner; referral edges in both directions go
// away so team counts stay consistent (they are always recomputed from
// edges).
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return partner.ErrNotFound
		}

		if err := tx.Model(&models.Order{}).Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("referred_id = ?", id).
			Delete(&models.PartnerReferral{}).Error; err != nil {
			return err
		}

		var profile models.PartnerProfile
		if err := tx.Where("user_id = ?", id).First(&profile).Error; err == nil {
			if err := tx.Where("profile_id = ?", profile.ID).
				Delete(&models.PartnerReferral{}).Error; err != nil {
				return err
			}
			if err := tx.Where("profile_id = ?", profile.ID).
				Delete(&models.PartnerTransaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("profile_id = ?", profile.ID).
				Delete(&models.PartnerActivation{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to delete user"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User deleted"})
}
