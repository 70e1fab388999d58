package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	TokenCookieName = "access_token"
	tokenCookieAge  = 2 * time.Hour
)

// SetTokenCookie stores the token as "Bearer <token>" so browser clients can
// authenticate without managing the Authorization header.
func SetTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "Bearer " + token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(tokenCookieAge.Seconds()),
	})
}

// ClearTokenCookie expires the access token cookie.
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}
