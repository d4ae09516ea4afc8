package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mag8888/vital-sub000/controllers/admins"
	"github.com/mag8888/vital-sub000/middleware"
)

func AdminRoutes(api *mux.Router) {
	// 5 login attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)
	api.Handle("/admin/refresh", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Refresh))).Methods(http.MethodPost)

	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	adminRouter.Handle("/logout", http.HandlerFunc(admins.Logout)).Methods(http.MethodPost)

	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	adminRouter.Handle("/profile", http.HandlerFunc(admins.GetAdminProfile)).Methods(http.MethodGet)
	adminRouter.Handle("/profile", http.HandlerFunc(admins.UpdateAdminProfile)).Methods(http.MethodPut)
	adminRouter.Handle("/password", http.HandlerFunc(admins.UpdateAdminPassword)).Methods(http.MethodPut)

	// User management
	adminRouter.Handle("/users", http.HandlerFunc(admins.GetUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.GetUserDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.UpdateUser)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.DeleteUser)).Methods(http.MethodDelete)
	adminRouter.Handle("/users/{id:[0-9]+}/balance", http.HandlerFunc(admins.AdjustUserBalance)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}/change-inviter", http.HandlerFunc(admins.ChangeInviter)).Methods(http.MethodPost)

	// Partner management
	adminRouter.Handle("/partners", http.HandlerFunc(admins.GetPartners)).Methods(http.MethodGet)
	adminRouter.Handle("/partners/{id:[0-9]+}", http.HandlerFunc(admins.GetPartnerDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/partners/{id:[0-9]+}/activate", http.HandlerFunc(admins.ActivatePartner)).Methods(http.MethodPost)
	adminRouter.Handle("/partners/{id:[0-9]+}/deactivate", http.HandlerFunc(admins.DeactivatePartner)).Methods(http.MethodPost)
	adminRouter.Handle("/partners/{id:[0-9]+}/recalculate", http.HandlerFunc(admins.RecalculatePartner)).Methods(http.MethodPost)
	adminRouter.Handle("/partners/{id:[0-9]+}/cleanup-duplicates", http.HandlerFunc(admins.CleanupDuplicates)).Methods(http.MethodPost)
	adminRouter.Handle("/partners/{id:[0-9]+}/transactions", http.HandlerFunc(admins.GetPartnerTransactions)).Methods(http.MethodGet)
	adminRouter.Handle("/partners/{id:[0-9]+}/activations", http.HandlerFunc(admins.GetPartnerActivations)).Methods(http.MethodGet)

	// Order management
	adminRouter.Handle("/orders", http.HandlerFunc(admins.GetOrders)).Methods(http.MethodGet)
	adminRouter.Handle("/orders", http.HandlerFunc(admins.CreateOrder)).Methods(http.MethodPost)
	adminRouter.Handle("/orders/{id:[0-9]+}", http.HandlerFunc(admins.GetOrderDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/orders/{id:[0-9]+}", http.HandlerFunc(admins.DeleteOrder)).Methods(http.MethodDelete)
	adminRouter.Handle("/orders/{id:[0-9]+}/status", http.HandlerFunc(admins.UpdateOrderStatus)).Methods(http.MethodPut)
	adminRouter.Handle("/orders/{id:[0-9]+}/pay", http.HandlerFunc(admins.PayOrderFromBalance)).Methods(http.MethodPost)
	adminRouter.Handle("/orders/by-reference/{reference}", http.HandlerFunc(admins.GetOrderByReference)).Methods(http.MethodGet)

	// Product management
	adminRouter.Handle("/products", http.HandlerFunc(admins.ListProducts)).Methods(http.MethodGet)
	adminRouter.Handle("/products", http.HandlerFunc(admins.CreateProduct)).Methods(http.MethodPost)
	adminRouter.Handle("/products/{id:[0-9]+}", http.HandlerFunc(admins.GetProduct)).Methods(http.MethodGet)
	adminRouter.Handle("/products/{id:[0-9]+}", http.HandlerFunc(admins.UpdateProduct)).Methods(http.MethodPut)
	adminRouter.Handle("/products/{id:[0-9]+}", http.HandlerFunc(admins.DeleteProduct)).Methods(http.MethodDelete)

	// Settings
	adminRouter.Handle("/settings", http.HandlerFunc(admins.GetSettings)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(admins.UpdateSettings)).Methods(http.MethodPut)
}
