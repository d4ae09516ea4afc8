package admins

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/shop"
	"github.com/mag8888/vital-sub000/utils"
)

type OrderView struct {
	ID        uint               `json:"id"`
	Reference string             `json:"reference"`
	UserID    *uint              `json:"user_id,omitempty"`
	Status    string             `json:"status"`
	Items     []models.OrderItem `json:"items"`
	Total     float64            `json:"total"`
	Contact   string             `json:"contact"`
	Comment   *string            `json:"comment,omitempty"`
	CreatedAt string             `json:"created_at"`
}

func orderView(o *models.Order) OrderView {
	items, _ := o.GetItems()
	return OrderView{
		ID:        o.ID,
		Reference: o.Reference,
		UserID:    o.UserID,
		Status:    o.Status,
		Items:     items,
		Total:     o.Total(),
		Contact:   o.Contact,
		Comment:   o.Comment,
		CreatedAt: o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

type CreateOrderRequest struct {
	UserID  *uint              `json:"user_id"`
	Items   []shop.ItemRequest `json:"items"`
	Contact string             `json:"contact"`
	Comment *string            `json:"comment"`
}

// POST /v1/admin/orders
//
// Manual order entry; an owner is optional but ownerless orders can only be
// settled outside the balance flow.
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}

	db := database.DB
	var refOwner uint
	if req.UserID != nil {
		var user models.User
		if err := db.First(&user, *req.UserID).Error; err != nil {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		refOwner = user.ID
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
		UserID:    req.UserID,
		Reference: utils.GenerateOrderReference(refOwner),
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
		Data:    orderView(&order),
	})
}

// GET /v1/admin/orders
func GetOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"orders": views,
			"total":  total,
			"page":   page,
			"limit":  limit,
		},
	})
}

func orderFromPath(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid order id"})
		return nil, false
	}
	var order models.Order
	if err := database.DB.First(&order, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Order not found"})
		return nil, false
	}
	return &order, true
}

// GET /v1/admin/orders/{id}
func GetOrderDetail(w http.ResponseWriter, r *http.Request) {
	order, ok := orderFromPath(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    orderView(order),
	})
}

// PUT /v1/admin/orders/{id}/status
//
// Flipping an order to Completed distributes referral bonuses and runs the
// qualifying-purchase activation check, same as the balance payment path.
// The ledger's per-order idempotency key makes a repeated flip harmless.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	order, ok := orderFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	switch req.Status {
	case models.OrderNew, models.OrderProcessing, models.OrderCompleted, models.OrderCancelled:
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid status"})
		return
	}

	previous := order.Status
	if err := database.DB.Model(order).Update("status", req.Status).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update status"})
		return
	}

	data := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderCompleted && previous != models.OrderCompleted && order.UserID != nil {
		amount := utils.RoundFloat(order.Total(), 2)
		if amount > 0 {
			ctx := r.Context()
			awards, err := engine.DistributeOrderBonuses(ctx, *order.UserID, amount, order.Reference)
			if err != nil {
				log.Printf("[ADMIN] bonus distribution for order %s: %v", order.Reference, err)
				data["bonus"] = "failed"
			} else if len(awards) == 0 {
				data["bonus"] = "none"
			} else {
				data["bonus"] = "ok"
			}
			if err := engine.ActivateOnQualifyingPurchase(ctx, *order.UserID, amount); err != nil {
				log.Printf("[ADMIN] qualifying activation for order %s: %v", order.Reference, err)
			}
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status updated", Data: data})
}

// POST /v1/admin/orders/{id}/pay
//
// Same payment path the bot uses, triggered by an operator. The response
// reports the payment, bonus and activation outcomes separately.
func PayOrderFromBalance(w http.ResponseWriter, r *http.Request) {
	order, ok := orderFromPath(w, r)
	if !ok {
		return
	}

	result, err := shop.PayOrderFromBalance(r.Context(), database.DB, engine, order.Reference)
	if err != nil {
		switch {
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

// DELETE /v1/admin/orders/{id}
func DeleteOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := orderFromPath(w, r)
	if !ok {
		return
	}
	if err := database.DB.Delete(order).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to delete order"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Order deleted"})
}

// GET /v1/admin/orders/by-reference/{reference}
func GetOrderByReference(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	var order models.Order
	if err := database.DB.Where("reference = ?", reference).First(&order).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Order not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    orderView(&order),
	})
}
