package admins

import (
	"encoding/json"
	"net/http"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type SettingRequest struct {
	ShopName       string `json:"shop_name"`
	Maintenance    bool   `json:"maintenance"`
	ClosedRegister bool   `json:"closed_register"`
	LinkSupport    string `json:"link_support"`
	LinkChannel    string `json:"link_channel"`
}

// GET /v1/admin/settings
func GetSettings(w http.ResponseWriter, r *http.Request) {
	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load settings",
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    setting,
	})
}

// PUT /v1/admin/settings
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	db := database.DB
	setting, err := models.GetSetting(db)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load settings",
		})
		return
	}

	setting.ShopName = req.ShopName
	setting.Maintenance = req.Maintenance
	setting.ClosedRegister = req.ClosedRegister
	setting.LinkSupport = req.LinkSupport
	setting.LinkChannel = req.LinkChannel

	if err := db.Save(setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update settings",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Settings updated",
		Data:    setting,
	})
}
