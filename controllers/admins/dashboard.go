package admins

import (
	"net/http"
	"time"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type DailyGrowth struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type RecentBonus struct {
	UserName  string    `json:"user_name"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalUsers     int64         `json:"total_users"`
	TotalPartners  int64         `json:"total_partners"`
	ActivePartners int64         `json:"active_partners"`
	GrowthUsers    []DailyGrowth `json:"growth_users"`
	TotalOrders    int64         `json:"total_orders"`
	NewOrders      int64         `json:"new_orders"`
	PaidRevenue    float64       `json:"paid_revenue"`
	TotalBonusPaid float64       `json:"total_bonus_paid"`
	RecentBonuses  []RecentBonus `json:"recent_bonuses"`
	TotalUserFunds float64       `json:"total_user_funds"`
	ActiveProducts int64         `json:"active_products"`
}

// GET /v1/admin/dashboard
func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	var stats DashboardStats
	stats.GrowthUsers = make([]DailyGrowth, 0)
	stats.RecentBonuses = make([]RecentBonus, 0)

	db.Model(&models.User{}).Count(&stats.TotalUsers)
	db.Model(&models.PartnerProfile{}).Count(&stats.TotalPartners)
	db.Model(&models.PartnerProfile{}).Where("is_active = ?", true).Count(&stats.ActivePartners)
	db.Model(&models.Order{}).Count(&stats.TotalOrders)
	db.Model(&models.Order{}).Where("status = ?", models.OrderNew).Count(&stats.NewOrders)
	db.Model(&models.Product{}).Where("status = ?", "Active").Count(&stats.ActiveProducts)

	var totalFunds *float64
	db.Model(&models.User{}).Select("SUM(balance)").Scan(&totalFunds)
	if totalFunds != nil {
		stats.TotalUserFunds = utils.RoundFloat(*totalFunds, 2)
	}

	var bonusPaid *float64
	db.Model(&models.PartnerTransaction{}).
		Where("type = ?", models.TxCredit).
		Select("SUM(amount)").Scan(&bonusPaid)
	if bonusPaid != nil {
		stats.TotalBonusPaid = utils.RoundFloat(*bonusPaid, 2)
	}

	// Revenue is derived from the serialized line items, so it is summed in
	// Go over paid orders rather than in SQL.
	var paidOrders []models.Order
	db.Where("status IN ?", []string{models.OrderProcessing, models.OrderCompleted}).Find(&paidOrders)
	for i := range paidOrders {
		stats.PaidRevenue += paidOrders[i].Total()
	}
	stats.PaidRevenue = utils.RoundFloat(stats.PaidRevenue, 2)

	rows, err := db.Model(&models.User{}).
		Select("DATE(created_at) as day, COUNT(*) as count").
		Where("created_at >= NOW() - INTERVAL 7 DAY").
		Group("DATE(created_at)").
		Order("day ASC").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var g DailyGrowth
			if err := rows.Scan(&g.Day, &g.Count); err == nil {
				stats.GrowthUsers = append(stats.GrowthUsers, g)
			}
		}
	}

	bonusRows, err := db.Table("partner_transactions").
		Select("users.first_name, partner_transactions.amount, partner_transactions.type, partner_transactions.created_at").
		Joins("JOIN partner_profiles ON partner_profiles.id = partner_transactions.profile_id").
		Joins("JOIN users ON users.id = partner_profiles.user_id").
		Order("partner_transactions.created_at DESC").
		Limit(10).Rows()
	if err == nil {
		defer bonusRows.Close()
		for bonusRows.Next() {
			var b RecentBonus
			if err := bonusRows.Scan(&b.UserName, &b.Amount, &b.Type, &b.CreatedAt); err == nil {
				stats.RecentBonuses = append(stats.RecentBonuses, b)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
