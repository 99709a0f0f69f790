package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// identityFromRequest reads the profile id a websocket client claims to be.
// A signed token wins when a secret is configured; otherwise the X-User-Id
// header and then the userId query parameter are used. The hint is trusted
// as given.
func identityFromRequest(r *http.Request, secret []byte) string {
	if len(secret) > 0 {
		if tok := bearerToken(r); tok != "" {
			if id, ok := parseUserIDFromJWT(tok, secret); ok {
				return id
			}
		}
	}
	if id := strings.TrimSpace(r.Header.Get("X-User-Id")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}

// bearerToken returns the token from the Authorization header, falling back
// to the token query parameter since browsers cannot set websocket headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return r.URL.Query().Get("token")
}

func parseUserIDFromJWT(tokenStr string, secret []byte) (string, bool) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	// jwt.MapClaims stores numbers as float64 by default
	switch v := claims["user_id"].(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}
