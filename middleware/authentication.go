package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/env"
)

// Authenticator resolves the caller from the access token (Authorization
// bearer header or the accessToken cookie) and loads the user plus the
// session matching the calling device into the request context. Everything
// downstream trusts only this identity — never a client-supplied id.
func Authenticator(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if c, err := r.Cookie("accessToken"); err == nil {
					raw = c.Value
				}
			}
			if raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			t, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return env.HS256_SECRET, nil
			})
			if err != nil || !t.Valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, ok := t.Claims.(jwt.MapClaims)
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			sub, _ := claims["sub"].(string)

			var u model.User
			if err := db.GetDB(r.Context()).Preload("Sessions").First(&u, "id = ?", sub).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					w.WriteHeader(http.StatusForbidden)
				} else {
					logger.WithError(err).Error("load user")
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			ip, _ := r.Context().Value("deviceIP").(string)
			var s *model.Session
			for i := range u.Sessions {
				if u.Sessions[i].IP == ip {
					s = &u.Sessions[i]
					break
				}
			}
			if s == nil {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("session does not exist"))
				return
			}
			ctx := context.WithValue(context.WithValue(r.Context(), "user", &u), "session", s)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
