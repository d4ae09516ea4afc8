package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mag8888/vital-sub000/controllers/users"
	"github.com/mag8888/vital-sub000/middleware"
)

// BotRoutes wires the bot-facing API. The only trusted caller is the bot
// process itself, so everything sits behind the shared X-BOT-KEY secret plus
// a generous rate limit against a leaked key.
func BotRoutes(api *mux.Router) {
	botLimiter := middleware.NewIPRateLimiter(600, time.Minute)

	bot := api.NewRoute().Subrouter()
	bot.Use(middleware.BotKeyMiddleware)
	bot.Use(botLimiter.Middleware)

	bot.Handle("/register", http.HandlerFunc(users.RegisterHandler)).Methods(http.MethodPost)
	bot.Handle("/users/{telegram_id:[0-9]+}", http.HandlerFunc(users.GetUserHandler)).Methods(http.MethodGet)

	bot.Handle("/partner/dashboard/{telegram_id:[0-9]+}", http.HandlerFunc(users.PartnerDashboardHandler)).Methods(http.MethodGet)
	bot.Handle("/partner/link", http.HandlerFunc(users.PartnerLinkHandler)).Methods(http.MethodPost)
	bot.Handle("/partner/team/{telegram_id:[0-9]+}", http.HandlerFunc(users.TeamHandler)).Methods(http.MethodGet)
	bot.Handle("/partner/team/{telegram_id:[0-9]+}/{level:[1-3]}", http.HandlerFunc(users.TeamHandler)).Methods(http.MethodGet)

	bot.Handle("/orders", http.HandlerFunc(users.CreateOrderHandler)).Methods(http.MethodPost)
	bot.Handle("/orders/{reference}/pay", http.HandlerFunc(users.PayOrderHandler)).Methods(http.MethodPost)
}
