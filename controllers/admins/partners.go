package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/middleware"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/utils"
)

// GET /v1/admin/partners
func GetPartners(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	program := r.URL.Query().Get("program")
	active := r.URL.Query().Get("active")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.PartnerProfile{}).Preload("User")
	if program == models.ProgramDirect || program == models.ProgramMultiLevel {
		query = query.Where("program_type = ?", program)
	}
	if active == "true" {
		query = query.Where("is_active = ?", true)
	} else if active == "false" {
		query = query.Where("is_active = ?", false)
	}

	var total int64
	query.Count(&total)

	var profiles []models.PartnerProfile
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&profiles).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"partners": profiles,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

func profileFromPath(w http.ResponseWriter, r *http.Request) (*models.PartnerProfile, bool) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid partner id"})
		return nil, false
	}
	var profile models.PartnerProfile
	if err := database.DB.Preload("User").First(&profile, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Partner not found"})
		return nil, false
	}
	return &profile, true
}

// GET /v1/admin/partners/{id}
func GetPartnerDetail(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	stats, err := engine.ComputeHierarchyStats(r.Context(), profile.UserID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to compute stats"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"partner": profile,
			"stats":   stats,
		},
	})
}

// POST /v1/admin/partners/{id}/activate
func ActivatePartner(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Months int    `json:"months"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.Months < 1 {
		req.Months = 1
	}

	adminID := middleware.AdminIDFromContext(r.Context())
	if err := engine.ActivatePartner(r.Context(), profile.UserID, req.Months, req.Reason, &adminID); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to activate partner"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Partner activated"})
}

// POST /v1/admin/partners/{id}/deactivate
func DeactivatePartner(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}

	adminID := middleware.AdminIDFromContext(r.Context())
	if err := engine.DeactivatePartner(r.Context(), profile.UserID, req.Reason, &adminID); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to deactivate partner"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Partner deactivated"})
}

// POST /v1/admin/partners/{id}/recalculate
//
// Folds the ledger and overwrites the stored balances. Safe to run any
// number of times.
func RecalculatePartner(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	total, err := engine.RecalculateBonuses(r.Context(), profile.ID)
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Partner not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Recalculation failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Balances recalculated",
		Data: map[string]interface{}{
			"balance": total,
		},
	})
}

// POST /v1/admin/partners/{id}/cleanup-duplicates
func CleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	removed, err := engine.CleanupDuplicateBonuses(r.Context(), profile.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Cleanup failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Duplicates removed",
		Data: map[string]interface{}{
			"removed": removed,
		},
	})
}

// GET /v1/admin/partners/{id}/transactions
func GetPartnerTransactions(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	var transactions []models.PartnerTransaction
	if err := database.DB.Where("profile_id = ?", profile.ID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"transactions": transactions,
		},
	})
}

// GET /v1/admin/partners/{id}/activations
func GetPartnerActivations(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}

	var history []models.PartnerActivation
	if err := database.DB.Where("profile_id = ?", profile.ID).
		Order("created_at DESC").Find(&history).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"activations": history,
		},
	})
}
