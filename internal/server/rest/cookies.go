package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
)

type cookieSettings struct {
	secure bool
	ttl    time.Duration
}

func (c cookieSettings) set(w http.ResponseWriter, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
