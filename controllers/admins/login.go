package admins

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/middleware"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /v1/admin/login
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid JSON body",
		})
		return
	}

	admin, err := models.GetAdminByUsername(database.DB, req.Username)
	if err != nil || !admin.ValidatePassword(req.Password) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to issue token",
		})
		return
	}

	refresh, err := utils.GenerateRefreshToken(admin.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to issue refresh token",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Logged in",
		Data: map[string]interface{}{
			"token":         token,
			"refresh_token": refresh,
			"admin":         admin,
		},
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /v1/admin/refresh
//
// Refresh tokens rotate: the presented token is revoked and a new pair is
// issued.
func Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}

	rt, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	var admin models.Admin
	if err := database.DB.First(&admin, rt.AdminID).Error; err != nil || !admin.IsActive {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Admin not found"})
		return
	}

	database.DB.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to issue token"})
		return
	}
	refresh, err := utils.GenerateRefreshToken(admin.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to issue refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Token refreshed",
		Data: map[string]interface{}{
			"token":         token,
			"refresh_token": refresh,
		},
	})
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /v1/admin/logout
func Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	// Revoke the access token's jti until it would have expired anyway.
	if tokenStr, err := utils.ExtractBearerToken(r); err == nil {
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			jti, _ := claims["jti"].(string)
			ttl := time.Hour
			if exp, ok := claims["exp"].(float64); ok {
				if left := time.Until(time.Unix(int64(exp), 0)); left > 0 {
					ttl = left
				}
			}
			if jti != "" {
				_ = utils.RevokeJTI(jti, ttl)
			}
		}
	}

	if req.RefreshToken != "" {
		database.DB.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// GET /v1/admin/profile
func GetAdminProfile(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.AdminIDFromContext(r.Context())

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Admin not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: admin})
}

// PUT /v1/admin/profile
func UpdateAdminProfile(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.AdminIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Name is required"})
		return
	}

	if err := database.DB.Model(&models.Admin{}).Where("id = ?", adminID).Update("name", req.Name).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update profile"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated"})
}

// PUT /v1/admin/password
func UpdateAdminPassword(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.AdminIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if len(req.NewPassword) < 8 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Password must be at least 8 characters"})
		return
	}

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Admin not found"})
		return
	}
	if !admin.ValidatePassword(req.CurrentPassword) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Current password is incorrect"})
		return
	}

	admin.Password = req.NewPassword
	if err := admin.HashPassword(); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update password"})
		return
	}
	if err := database.DB.Model(&models.Admin{}).Where("id = ?", adminID).Update("password", admin.Password).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update password"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Password updated"})
}
