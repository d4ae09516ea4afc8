package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

// userFromPath resolves the {telegram_id} path variable to a user row,
// writing the error response itself when resolution fails.
func userFromPath(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	vars := mux.Vars(r)
	tid, err := strconv.ParseInt(vars["telegram_id"], 10, 64)
	if err != nil || tid == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid telegram_id"})
		return nil, false
	}

	var user models.User
	if err := database.DB.Where("telegram_id = ?", tid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return nil, false
	}
	return &user, true
}
