package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/shop"
	"github.com/mag8888/vital-sub000/utils"
)

type CreateOrderRequest struct {
	TelegramID int64              `json:"telegram_id"`
	Items      []shop.ItemRequest `json:"items"`
	Contact    string             `json:"contact"`
	Comment    *string            `json:"comment"`
}

// POST /v1/orders
//
// Prices and titles come from the catalogue at order time, never from the
// client.
func CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	db := database.DB
	var user models.User
	if err := db.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	items, err := shop.PriceItems(db, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrEmptyOrder):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Order must have at least one item"})
		case errors.Is(err, shop.ErrBadQuantity):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Item quantity must be at least 1"})
		case errors.Is(err, shop.ErrProductNotForSale):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Product not available"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to price order"})
		}
		return
	}

	order := models.Order{
		UserID:    &user.ID,
		Reference: utils.GenerateOrderReference(user.ID),
		Status:    models.OrderNew,
		Contact:   req.Contact,
		Comment:   req.Comment,
	}
	if err := order.SetItems(items); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if err := db.Create(&order).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create order"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Order created",
		Data: map[string]interface{}{
			"reference": order.Reference,
			"total":     order.Total(),
			"items":     items,
		},
	})
}

// POST /v1/orders/{reference}/pay
func PayOrderHandler(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	result, err := shop.PayOrderFromBalance(r.Context(), database.DB, engine, reference)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrOrderNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Order not found"})
		case errors.Is(err, shop.ErrAlreadyPaid):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Order is not payable"})
		case errors.Is(err, shop.ErrNoOwner):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Order has no owner"})
		case errors.Is(err, partner.ErrInsufficientFunds):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Payment failed"})
		}
		return
	}

	bonusStatus := "ok"
	if result.BonusErr != nil {
		bonusStatus = "failed"
	} else if len(result.Awards) == 0 {
		bonusStatus = "none"
	}
	activationStatus := "ok"
	if result.ActivationErr != nil {
		activationStatus = "failed"
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Order paid",
		Data: map[string]interface{}{
			"reference":  result.Order.Reference,
			"status":     result.Order.Status,
			"amount":     result.Amount,
			"bonus":      bonusStatus,
			"activation": activationStatus,
		},
	})
}
