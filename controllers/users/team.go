package users

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type TeamMember struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	IsPartner bool   `json:"is_partner"`
	JoinedAt  string `json:"joined_at"`
}

func loadMembers(userIDs []uint) ([]TeamMember, error) {
	members := make([]TeamMember, 0, len(userIDs))
	if len(userIDs) == 0 {
		return members, nil
	}
	var rows []models.User
	if err := database.DB.Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	var partnerIDs []uint
	database.DB.Model(&models.PartnerProfile{}).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Pluck("user_id", &partnerIDs)
	active := make(map[uint]bool, len(partnerIDs))
	for _, id := range partnerIDs {
		active[id] = true
	}

	for _, u := range rows {
		members = append(members, TeamMember{
			ID:        u.ID,
			Name:      u.DisplayName(),
			Username:  utils.StringValue(u.Username),
			IsPartner: active[u.ID],
			JoinedAt:  u.CreatedAt.Format("2006-01-02"),
		})
	}
	return members, nil
}

// GET /v1/partner/team/{telegram_id} and /v1/partner/team/{telegram_id}/{level}
func TeamHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	vars := mux.Vars(r)
	if levelStr, hasLevel := vars["level"]; hasLevel {
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 || level > 3 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid level"})
			return
		}
		ids, err := engine.TeamUserIDs(ctx, user.ID, level)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load team"})
			return
		}
		members, err := loadMembers(ids)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load team"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Successfully",
			Data: map[string]interface{}{
				"level":   level,
				"count":   len(members),
				"members": members,
			},
		})
		return
	}

	stats, err := engine.ComputeHierarchyStats(ctx, user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to compute team stats"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
