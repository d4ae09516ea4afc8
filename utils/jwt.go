package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
)

// RedisClient is an optional shared Redis client used for token revocation.
// It is nil when REDIS_ADDR is not configured; revocation then falls back to
// the revoked_tokens table.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		return
	}
	RedisClient = rc
}

const accessTokenTTL = 6 * time.Hour

// GenerateAdminToken issues a short-lived HS256 access token for an admin.
func GenerateAdminToken(adminID int64, username string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"id":       adminID,
		"username": username,
		"role":     "admin",
		"exp":      now.Add(accessTokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      jti,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken parses the token, enforces HS256 and checks the jti
// against the revocation store.
func ValidateAccessToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if err != nil && strings.Contains(err.Error(), "expired") {
			return nil, nil, errors.New("token expired")
		}
		return nil, nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return token, nil, errors.New("invalid claims")
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" {
		if revoked(jti) {
			return token, nil, errors.New("token revoked")
		}
	}
	return token, claims, nil
}

func revoked(jti string) bool {
	if RedisClient != nil {
		res, err := RedisClient.Get(context.Background(), "jwt:blacklist:"+jti).Result()
		// redis outages never fail auth
		return err == nil && res == "1"
	}
	if database.DB != nil {
		var rec struct {
			ID string `gorm:"primaryKey"`
		}
		err := database.DB.Table("revoked_tokens").Where("id = ?", jti).First(&rec).Error
		if err == nil {
			return true
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false
		}
	}
	return false
}

// RevokeJTI inserts a jti into the revocation store.
func RevokeJTI(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient != nil {
		return RedisClient.Set(context.Background(), "jwt:blacklist:"+jti, "1", ttl).Err()
	}
	if database.DB != nil {
		res := database.DB.Exec(
			"INSERT INTO revoked_tokens (id, revoked_at) VALUES (?, ?) ON DUPLICATE KEY UPDATE revoked_at = VALUES(revoked_at)",
			jti, time.Now())
		return res.Error
	}
	return errors.New("no revocation store configured")
}

// GenerateRefreshToken creates a DB-backed refresh token and returns its
// opaque id.
func GenerateRefreshToken(adminID int64) (string, error) {
	if database.DB == nil {
		return "", errors.New("database not initialized")
	}
	rt, err := models.NewRefreshToken(adminID, 7)
	if err != nil {
		return "", err
	}
	if err := database.DB.Create(rt).Error; err != nil {
		return "", err
	}
	return rt.ID, nil
}

// ValidateRefreshToken checks that a refresh token exists, is not revoked
// and has not expired.
func ValidateRefreshToken(id string) (*models.RefreshToken, error) {
	if database.DB == nil {
		return nil, errors.New("database not initialized")
	}
	var rt models.RefreshToken
	if err := database.DB.Where("id = ?", id).First(&rt).Error; err != nil {
		return nil, err
	}
	if rt.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, errors.New("refresh token expired")
	}
	return &rt, nil
}

// ExtractBearerToken pulls the raw token out of the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", errors.New("missing or invalid Authorization header")
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")), nil
}

func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}
