package types

import "time"

const (
	ContextUserKey = "user"

	// TokenCookieName is the cookie the login handler sets and the auth
	// middleware falls back to when no Authorization header is present.
	TokenCookieName = "token"
	TokenQueryParam = "token"
	TokenCookieAge  = 7 * 24 * time.Hour
)
