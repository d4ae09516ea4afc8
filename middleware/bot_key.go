package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/mag8888/vital-sub000/utils"
)

// BotKeyMiddleware protects the bot-facing API with a shared secret. The bot
// process sends X-BOT-KEY on every request; no per-user tokens are involved.
func BotKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("BOT_API_KEY")
		key := r.Header.Get("X-BOT-KEY")
		if secret == "" || key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
