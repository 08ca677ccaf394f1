package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerToken reads the token from "Authorization: Bearer ..." or the apikey header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(r.Header.Get("apikey"))
}

// MasterToken guards a handler with a static token. An empty master token disables the check.
func MasterToken(master string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if master == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(master)) != 1 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
