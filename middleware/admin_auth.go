package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type contextKey string

const AdminIDKey = contextKey("adminID")

// AdminIDFromContext returns the authenticated admin ID, 0 when absent.
func AdminIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(AdminIDKey).(int64); ok {
		return v
	}
	return 0
}

// AdminAuthMiddleware verifies that the request carries a valid admin token.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: No token provided",
			})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		// Centralized validation checks signature, exp/nbf and revocation.
		_, claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if strings.Contains(err.Error(), "expired") {
				msg = "Unauthorized: Token expired"
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: msg,
			})
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Admin access required",
			})
			return
		}

		// JSON numbers arrive as float64
		var adminID int64
		if rawID, ok := claims["id"]; ok {
			switch v := rawID.(type) {
			case float64:
				adminID = int64(v)
			case int:
				adminID = int64(v)
			case int64:
				adminID = v
			case string:
				var n int64
				_, _ = fmt.Sscanf(v, "%d", &n)
				adminID = n
			}
		}

		var admin models.Admin
		if err := database.DB.First(&admin, adminID).Error; err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: Admin not found",
			})
			return
		}
		if !admin.IsActive {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden",
			})
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, admin.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
